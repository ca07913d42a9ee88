package telegram

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

func newAttempt(fields map[string]string, accepted *bool) *attempt.Attempt {
	a := attempt.New()
	for k, v := range fields {
		a.Set(k, v)
	}
	if accepted != nil {
		a.SetAccepted(*accepted)
	}
	return a
}

func boolPtr(b bool) *bool { return &b }

func TestFormatAttempt(t *testing.T) {
	fields := map[string]string{
		attempt.FieldCoder:       "alice",
		attempt.FieldProblem:     "1001",
		attempt.FieldProblemName: "Sum",
		attempt.FieldVerdict:     "Wrong answer",
		attempt.FieldDate:        "12:34:56 15 янв 2024",
	}
	coderLink := `<a href="https://timus.online/status.aspx?author=42">alice</a>`
	problemLink := `<a href="https://timus.online/problem.aspx?num=1001">1001 – Sum</a>`

	tests := []struct {
		name        string
		accepted    *bool
		want        string
		contains    []string
		notContains []string
	}{
		{
			name:        "accepted",
			accepted:    boolPtr(true),
			want:        "🎉 Ура! " + coderLink + " решил " + problemLink + " в 10:34:56, 15 января 2024",
			contains:    []string{coderLink, problemLink},
			notContains: []string{"Wrong answer"},
		},
		{
			name:        "rejected",
			accepted:    boolPtr(false),
			want:        coderLink + " попытался решить " + problemLink + " в 10:34:56, 15 января 2024, но случился Wrong answer",
			contains:    []string{"Wrong answer", coderLink, problemLink},
			notContains: []string{"Ура"},
		},
		{
			name:        "accepted unset",
			accepted:    nil,
			contains:    []string{"но случился Wrong answer"},
			notContains: []string{"🎉"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAttempt(newAttempt(fields, tt.accepted), "42")

			if tt.want != "" && got != tt.want {
				t.Errorf("FormatAttempt() =\n%s\nwant\n%s", got, tt.want)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("FormatAttempt() missing %q in %q", s, got)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("FormatAttempt() should not contain %q: %q", s, got)
				}
			}
		})
	}
}

func TestFormatAttempt_EscapesMarkup(t *testing.T) {
	a := newAttempt(map[string]string{
		attempt.FieldCoder:       "<script>",
		attempt.FieldProblem:     "1000",
		attempt.FieldProblemName: "A & B",
		attempt.FieldVerdict:     "Compilation <error>",
	}, boolPtr(false))

	got := FormatAttempt(a, "1")

	for _, raw := range []string{"<script>", "A & B", "<error>"} {
		if strings.Contains(got, raw) {
			t.Errorf("FormatAttempt() left %q unescaped: %q", raw, got)
		}
	}
	for _, escaped := range []string{"&lt;script&gt;", "A &amp; B", "Compilation &lt;error&gt;"} {
		if !strings.Contains(got, escaped) {
			t.Errorf("FormatAttempt() missing %q: %q", escaped, got)
		}
	}
}

func TestFormatAttempt_UnparseableDate(t *testing.T) {
	a := newAttempt(map[string]string{
		attempt.FieldCoder: "bob",
		attempt.FieldDate:  "  вчера  ",
	}, boolPtr(true))

	got := FormatAttempt(a, "1")
	if !strings.HasSuffix(got, " в вчера") {
		t.Errorf("FormatAttempt() = %q, want raw date at the end", got)
	}
}

func TestProblemLink_MissingFields(t *testing.T) {
	got := ProblemLink(attempt.New())
	want := `<a href="https://timus.online/problem.aspx?num="> – </a>`
	if got != want {
		t.Errorf("ProblemLink() = %q, want %q", got, want)
	}
}
