// Package cli provides output formatting for the jai command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/legalbot/jai/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAskResult writes an answered question to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAskResult(w io.Writer, response *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		fmt.Fprintf(w, "%s\n", response.Answer)
		fmt.Fprintf(w, "\n(matched %q, score %.4f)\n", response.MatchedQuestion, response.Score)
		return nil
	}
}

// WriteNoAnswer writes the no-match notice for a question that cleared no
// answer in the corpus.
func WriteNoAnswer(w io.Writer, question string) {
	fmt.Fprintf(w, "No answer found for %q.\n", question)
}

// WriteStatus writes service status to w in the given format.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		fmt.Fprintf(w, "Status:     %s\n", status.Status)
		fmt.Fprintf(w, "Version:    %s\n", status.Version)
		fmt.Fprintf(w, "Answers:    %d\n", status.Answers)
		fmt.Fprintf(w, "Users:      %d\n", status.Users)
		fmt.Fprintf(w, "Provider:   %s (%d dimensions)\n", status.Provider, status.Dimensions)
		if !status.CorpusLoadedAt.IsZero() {
			fmt.Fprintf(w, "Loaded at:  %s\n", status.CorpusLoadedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "Disk usage: %s\n", humanBytes(status.DiskUsageBytes))
		return nil
	}
}

// WriteHistory writes a session's conversation turns to w in the given format.
func WriteHistory(w io.Writer, history *models.HistoryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	default:
		if len(history.Turns) == 0 {
			fmt.Fprintln(w, "No conversation history.")
			return nil
		}
		for i, turn := range history.Turns {
			fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, turn.AskedAt.Format("2006-01-02 15:04"), turn.Question)
			fmt.Fprintf(w, "    %s\n", turn.Answer)
		}
		return nil
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for x := n / unit; x >= unit; x /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
