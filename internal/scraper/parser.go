package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

const (
	verdictClass  = "verdict"
	acceptedClass = "verdict_ac"
	rejectedClass = "verdict_rj"

	// problemNamePrefixLen covers the ". " the judge prints between the
	// problem number and its title.
	problemNamePrefixLen = 2
)

type rowPhase int

const (
	noActiveRow rowPhase = iota
	accumulatingRow
)

// tableState is the full state of the table state machine. Transitions take
// a state and return the next one; nothing else is mutated.
type tableState struct {
	phase    rowPhase
	current  *attempt.Attempt
	rows     []*attempt.Attempt
	field    string
	prevText string
}

func initialState() tableState {
	return tableState{phase: noActiveRow, current: attempt.New()}
}

// classify maps a cell class to the field its text belongs to. Any verdict_*
// class collapses to "verdict"; everything else is used verbatim.
func classify(class string) string {
	if strings.Contains(class, verdictClass) {
		return attempt.FieldVerdict
	}
	return class
}

// step applies one token to the state
func step(s tableState, tok Token) tableState {
	switch tok.Kind {
	case RowStart:
		return startRow(s)
	case CellStart:
		return startCell(s, tok)
	case Text:
		return addText(s, tok.Data)
	default:
		return s
	}
}

// startRow finalizes the open row, if any. A row only counts as open once a
// cell has been seen in it.
func startRow(s tableState) tableState {
	if s.phase == accumulatingRow {
		s.rows = append(s.rows, s.current)
		s.current = attempt.New()
		s.phase = noActiveRow
	}
	s.field = ""
	return s
}

func startCell(s tableState, tok Token) tableState {
	s.phase = accumulatingRow
	if !tok.HasClass {
		s.field = ""
		return s
	}

	s.field = classify(tok.Class)
	switch tok.Class {
	case rejectedClass:
		s.current.SetAccepted(false)
	case acceptedClass:
		s.current.SetAccepted(true)
	}
	return s
}

func normalizeText(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "\n", "")
}

func addText(s tableState, raw string) tableState {
	text := normalizeText(raw)

	// The same visible text can arrive more than once through nested markup.
	if text == s.prevText {
		return s
	}
	s.prevText = text

	if s.field == "" || text == "" {
		return s
	}

	switch {
	case s.field == attempt.FieldDate && !s.current.Has(attempt.FieldDate):
		// Trailing space lets the second date fragment append cleanly.
		s.current.Set(attempt.FieldDate, text+" ")
	case s.field == attempt.FieldProblem && s.current.Has(attempt.FieldProblem):
		s.current.Set(attempt.FieldProblemName, dropPrefix(text, problemNamePrefixLen))
	default:
		s.current.Append(s.field, text)
	}
	return s
}

func dropPrefix(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return ""
	}
	return string(r[n:])
}

// flush returns every completed row plus the trailing in-progress one. The
// last row on the page has no following row start to close it.
func flush(s tableState) []*attempt.Attempt {
	out := make([]*attempt.Attempt, 0, len(s.rows)+1)
	out = append(out, s.rows...)
	return append(out, s.current)
}

// TableParser accumulates status table rows from a token stream
type TableParser struct {
	state tableState
}

// NewTableParser creates a parser in the no-active-row state
func NewTableParser() *TableParser {
	return &TableParser{state: initialState()}
}

// Feed applies one token
func (p *TableParser) Feed(tok Token) {
	p.state = step(p.state, tok)
}

// Rows returns all rows seen so far in page order, including the row still
// being accumulated. Callers should skip empty rows.
func (p *TableParser) Rows() []*attempt.Attempt {
	return flush(p.state)
}

// ParseTokens runs a complete token sequence through a fresh parser
func ParseTokens(tokens []Token) []*attempt.Attempt {
	s := initialState()
	for _, tok := range tokens {
		s = step(s, tok)
	}
	return flush(s)
}

// Parse extracts status table rows from HTML, newest first as the page lists them
func Parse(r io.Reader) ([]*attempt.Attempt, error) {
	p := NewTableParser()
	if err := Tokenize(r, p.Feed); err != nil {
		return nil, err
	}
	return p.Rows(), nil
}

// ParseDocument extracts status table rows by walking a parsed goquery document
func ParseDocument(r io.Reader) ([]*attempt.Attempt, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	p := NewTableParser()
	DocumentTokens(doc, p.Feed)
	return p.Rows(), nil
}
