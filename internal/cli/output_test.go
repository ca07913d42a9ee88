package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

func TestWriteRunResult(t *testing.T) {
	tests := []struct {
		name   string
		result *RunResult
		format OutputFormat
		want   string
	}{
		{
			name:   "nothing new",
			result: &RunResult{AuthorID: "1"},
			format: FormatText,
			want:   "No new attempts found.\n",
		},
		{
			name:   "posted",
			result: &RunResult{AuthorID: "42", Posted: 2},
			format: FormatText,
			want:   "Posted 2 new attempts for author 42\n",
		},
		{
			name:   "json",
			result: &RunResult{CheckedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), AuthorID: "42", Posted: 1},
			format: FormatJSON,
			want:   "{\n  \"checked_at\": \"2024-01-15T00:00:00Z\",\n  \"author_id\": \"42\",\n  \"posted\": 1\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteRunResult(&buf, tt.result, tt.format); err != nil {
				t.Fatalf("WriteRunResult() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("WriteRunResult() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRunResult(&buf, &RunResult{}, "yaml"); err == nil {
		t.Error("WriteRunResult() should reject unknown formats")
	}
	if err := WriteParseResult(&buf, &ParseResult{}, "yaml", false); err == nil {
		t.Error("WriteParseResult() should reject unknown formats")
	}
}

func TestOutcome(t *testing.T) {
	accepted := attempt.New()
	accepted.SetAccepted(true)

	withVerdict := attempt.New()
	withVerdict.Set(attempt.FieldVerdict, "Time limit exceeded")

	tests := []struct {
		name string
		a    *attempt.Attempt
		want string
	}{
		{"verdict text wins", withVerdict, "Time limit exceeded"},
		{"accepted flag only", accepted, "Accepted"},
		{"nothing known", attempt.New(), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcome(tt.a); got != tt.want {
				t.Errorf("outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func dated(id, date string) *attempt.Attempt {
	a := attempt.New()
	a.Set(attempt.FieldID, id)
	if date != "" {
		a.Set(attempt.FieldDate, date)
	}
	return a
}

func TestSortAttempts(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	page := []*attempt.Attempt{
		dated("3", "08:00:00 02 янв 2024"),
		dated("9", ""),
		dated("1", "23:00:00 01 янв 2024"),
		dated("2", "07:00:00 02 янв 2024"),
	}

	ids := func(as []*attempt.Attempt) string {
		parts := make([]string, len(as))
		for i, a := range as {
			parts[i] = a.ID()
		}
		return strings.Join(parts, ",")
	}

	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortByPage, "3,9,1,2"},
		{SortChronological, "2,1,9,3"},
		{SortByDate, "1,2,3,9"},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			if got := ids(sortAttempts(page, tt.order, now)); got != tt.want {
				t.Errorf("sortAttempts(%s) = %s, want %s", tt.order, got, tt.want)
			}
		})
	}

	if ids(page) != "3,9,1,2" {
		t.Error("sortAttempts() modified its input")
	}
}

func TestParseSortOrder(t *testing.T) {
	if _, err := ParseSortOrder("date"); err != nil {
		t.Errorf("ParseSortOrder(date) error = %v", err)
	}
	if _, err := ParseSortOrder("random"); err == nil {
		t.Error("ParseSortOrder(random) should fail")
	}
}
