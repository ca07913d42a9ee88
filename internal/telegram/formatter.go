package telegram

import (
	"fmt"
	"html"
	"net/url"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

const (
	problemURL = "https://timus.online/problem.aspx?num="
	authorURL  = "https://timus.online/status.aspx?author="
)

// ProblemLink renders "{problem} – {problem_name}" linked to the problem page
func ProblemLink(a *attempt.Attempt) string {
	problem := a.Get(attempt.FieldProblem)
	return fmt.Sprintf(`<a href="%s%s">%s – %s</a>`,
		problemURL,
		html.EscapeString(url.QueryEscape(problem)),
		html.EscapeString(problem),
		html.EscapeString(a.Get(attempt.FieldProblemName)),
	)
}

// CoderLink renders the coder's name linked to the author's status page
func CoderLink(a *attempt.Attempt, authorID string) string {
	return fmt.Sprintf(`<a href="%s%s">%s</a>`,
		authorURL,
		html.EscapeString(url.QueryEscape(authorID)),
		html.EscapeString(a.Get(attempt.FieldCoder)),
	)
}

// FormatAttempt formats a single submission as a Telegram HTML message.
// Accepted submissions get a celebration; anything else names the verdict.
func FormatAttempt(a *attempt.Attempt, authorID string) string {
	coder := CoderLink(a, authorID)
	problem := ProblemLink(a)
	when := html.EscapeString(attempt.FormatDate(a.Get(attempt.FieldDate)))

	if a.IsAccepted() {
		return fmt.Sprintf("🎉 Ура! %s решил %s в %s", coder, problem, when)
	}
	return fmt.Sprintf("%s попытался решить %s в %s, но случился %s",
		coder, problem, when, html.EscapeString(a.Get(attempt.FieldVerdict)))
}
