package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(s)
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// ParseResult is the output of the parse command
type ParseResult struct {
	ParsedAt time.Time          `json:"parsed_at"`
	Attempts []*attempt.Attempt `json:"attempts"`
	Count    int                `json:"count"`
}

// RunResult is the output of the run command
type RunResult struct {
	CheckedAt time.Time `json:"checked_at"`
	AuthorID  string    `json:"author_id"`
	Posted    int       `json:"posted"`
}

// WriteParseResult writes parsed attempts in the specified format
func WriteParseResult(w io.Writer, result *ParseResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeAttemptsText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteRunResult writes the outcome of one cycle
func WriteRunResult(w io.Writer, result *RunResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		if result.Posted == 0 {
			_, err := fmt.Fprintln(w, "No new attempts found.")
			return err
		}
		_, err := fmt.Fprintf(w, "Posted %d new attempts for author %s\n", result.Posted, result.AuthorID)
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outcome is the verdict column shown in text output
func outcome(a *attempt.Attempt) string {
	if verdict := a.Get(attempt.FieldVerdict); verdict != "" {
		return verdict
	}
	if a.IsAccepted() {
		return "Accepted"
	}
	return "?"
}

// writeAttemptsText outputs attempts as human-readable text
func writeAttemptsText(w io.Writer, result *ParseResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintln(w, "No attempts found.")
		return nil
	}

	for _, a := range result.Attempts {
		fmt.Fprintf(w, "%s: %s – %s %s (%s)\n",
			a.ID(),
			a.Get(attempt.FieldCoder),
			a.Get(attempt.FieldProblem),
			a.Get(attempt.FieldProblemName),
			outcome(a),
		)
		if verbose {
			if date := a.Get(attempt.FieldDate); date != "" {
				fmt.Fprintf(w, "     Date: %s\n", attempt.FormatDate(date))
			}
			for _, field := range []struct{ label, name string }{
				{"Language", attempt.FieldLanguage},
				{"Test", attempt.FieldTest},
				{"Runtime", attempt.FieldRuntime},
				{"Memory", attempt.FieldMemory},
			} {
				if v := a.Get(field.name); v != "" {
					fmt.Fprintf(w, "     %s: %s\n", field.label, v)
				}
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d attempts\n", result.Count)

	return nil
}
