// Package history exports the visible transcript of a chat session.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/geminichat/internal/models"
)

// ExportFormat represents the format for exporting a transcript
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how a transcript is exported
type ExportOptions struct {
	Format ExportFormat
	Title  string
	Model  string
	// IncludePending keeps a placeholder line for a reply still in flight
	IncludePending bool
	// Now is stamped into the export header; zero means time.Now
	Now time.Time
}

// DefaultExportOptions returns the defaults used by /export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format: ExportFormatMarkdown,
		Title:  "Gemini Chat",
	}
}

// FormatForPath picks JSON for a .json file and Markdown otherwise
func FormatForPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// Export renders turns in the requested format
func Export(turns []models.Turn, opts ExportOptions) ([]byte, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	switch opts.Format {
	case ExportFormatJSON:
		return exportJSON(turns, opts)
	case ExportFormatMarkdown, "":
		return []byte(exportMarkdown(turns, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", opts.Format)
	}
}

// WriteFile exports turns to path, choosing the format from its extension
func WriteFile(path string, turns []models.Turn, opts ExportOptions) error {
	opts.Format = FormatForPath(path)
	data, err := Export(turns, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func visibleTurns(turns []models.Turn, includePending bool) []models.Turn {
	out := make([]models.Turn, 0, len(turns))
	for _, t := range turns {
		if t.IsPending() && !includePending {
			continue
		}
		out = append(out, t)
	}
	return out
}

func exportMarkdown(turns []models.Turn, opts ExportOptions) string {
	turns = visibleTurns(turns, opts.IncludePending)

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")

	if opts.Model != "" {
		sb.WriteString("**Model:** ")
		sb.WriteString(opts.Model)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(opts.Now.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(turns)))
	sb.WriteString("\n\n---\n\n")

	for i, turn := range turns {
		role := "User"
		if !turn.IsUser() {
			role = "Gemini"
		}
		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")

		if turn.IsPending() {
			sb.WriteString("_waiting for response_")
		} else {
			sb.WriteString(turn.Text)
		}
		sb.WriteString("\n")

		if i < len(turns)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

func exportJSON(turns []models.Turn, opts ExportOptions) ([]byte, error) {
	type exportTranscript struct {
		Title      string        `json:"title"`
		Model      string        `json:"model,omitempty"`
		ExportedAt time.Time     `json:"exported_at"`
		Turns      []models.Turn `json:"turns"`
	}

	return json.MarshalIndent(exportTranscript{
		Title:      opts.Title,
		Model:      opts.Model,
		ExportedAt: opts.Now,
		Turns:      visibleTurns(turns, opts.IncludePending),
	}, "", "  ")
}
