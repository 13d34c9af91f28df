package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xolak-dev/xolak-cli/internal/domain"
)

// Event represents the payload published downstream after a successful query.
type Event struct {
	Query           string              `json:"query"`
	AgentID         string              `json:"agent_id,omitempty"`
	Message         string              `json:"message"`
	Recommendations []domain.Repository `json:"recommendations"`
	ReceivedAt      time.Time           `json:"received_at"`
}

// NewEvent constructs an Event for the given query and backend response.
func NewEvent(query string, resp domain.QueryResponse) Event {
	return Event{
		Query:           query,
		AgentID:         resp.AgentID,
		Message:         resp.Message,
		Recommendations: resp.Recommendations,
		ReceivedAt:      time.Now().UTC(),
	}
}

// attributes are attached as message metadata by queue-style publishers.
// The free-text query only travels in the body: Pub/Sub caps attribute
// values at 1024 bytes and SNS/SQS count attributes against the message size.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{}
	if e.AgentID != "" {
		attrs["agent_id"] = e.AgentID
	}
	return attrs
}

// encode renders the event as the JSON body queue-style publishers send.
func (e Event) encode() (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(payload), nil
}
