package domain

import "time"

// GoodFirstIssue is a beginner-friendly issue the agent attached to a repository.
type GoodFirstIssue struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Repository is a single recommendation returned by the backend.
type Repository struct {
	Name            string           `json:"name" yaml:"name"`
	URL             string           `json:"url" yaml:"url"`
	Description     string           `json:"description" yaml:"description"`
	Language        string           `json:"language" yaml:"language"`
	Stars           int              `json:"stars" yaml:"stars"`
	Difficulty      string           `json:"difficulty" yaml:"difficulty"`
	GoodFirstIssues []GoodFirstIssue `json:"good_first_issues" yaml:"good_first_issues"`
}

// QueryResponse is the query-agent payload, decoded as-is.
type QueryResponse struct {
	Recommendations []Repository `json:"recommendations" yaml:"recommendations"`
	Message         string       `json:"message" yaml:"message"`
	AgentID         string       `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
}

// HistoryEntry records a query that was answered by the backend.
type HistoryEntry struct {
	Query        string    `json:"query" yaml:"query"`
	AgentID      string    `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
	Message      string    `json:"message" yaml:"message"`
	Repositories []string  `json:"repositories" yaml:"repositories"`
	AskedAt      time.Time `json:"asked_at" yaml:"asked_at"`
	ExpiresAt    time.Time `json:"expires_at" yaml:"-"`
}

// NewHistoryEntry summarizes a response for the local history.
func NewHistoryEntry(query string, resp QueryResponse, askedAt time.Time) HistoryEntry {
	names := make([]string, 0, len(resp.Recommendations))
	for _, r := range resp.Recommendations {
		names = append(names, r.Name)
	}
	return HistoryEntry{
		Query:        query,
		AgentID:      resp.AgentID,
		Message:      resp.Message,
		Repositories: names,
		AskedAt:      askedAt.UTC(),
	}
}
