package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xolak-dev/xolak-cli/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type healthStatus struct {
	Healthy bool `json:"healthy" yaml:"healthy"`
}

func render(w io.Writer, format string, v any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		return renderText(w, v)
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

func renderText(w io.Writer, v any) error {
	switch val := v.(type) {
	case *domain.QueryResponse:
		return renderQueryResponse(w, val)
	case []domain.HistoryEntry:
		return renderHistory(w, val)
	case healthStatus:
		status := "unhealthy"
		if val.Healthy {
			status = "healthy"
		}
		_, err := fmt.Fprintf(w, "backend %s\n", status)
		return err
	default:
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	}
}

func renderQueryResponse(w io.Writer, resp *domain.QueryResponse) error {
	if resp == nil {
		return nil
	}
	if resp.Message != "" {
		fmt.Fprintln(w, resp.Message)
	}
	if len(resp.Recommendations) == 0 {
		_, err := fmt.Fprintln(w, "no recommendations")
		return err
	}
	for i, repo := range resp.Recommendations {
		fmt.Fprintf(w, "\n%d. %s (%s, %d stars, %s)\n", i+1, repo.Name, repo.Language, repo.Stars, repo.Difficulty)
		fmt.Fprintf(w, "   %s\n", repo.URL)
		if repo.Description != "" {
			fmt.Fprintf(w, "   %s\n", repo.Description)
		}
		for _, issue := range repo.GoodFirstIssues {
			fmt.Fprintf(w, "   - %s <%s>\n", issue.Title, issue.URL)
		}
	}
	return nil
}

func renderHistory(w io.Writer, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no history")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ASKED AT\tQUERY\tRESULTS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.AskedAt.Local().Format("2006-01-02 15:04"), e.Query, strings.Join(e.Repositories, ", "))
	}
	return tw.Flush()
}
