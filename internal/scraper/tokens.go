package scraper

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RowSelector matches the data rows of the status table. Header and
// navigation rows carry other classes.
const RowSelector = "tr.even, tr.odd"

var rowMatcher = cascadia.MustCompile(RowSelector)

// TokenKind identifies a structural event in the status table
type TokenKind int

const (
	RowStart TokenKind = iota
	CellStart
	Text
)

func (k TokenKind) String() string {
	switch k {
	case RowStart:
		return "row"
	case CellStart:
		return "cell"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one event fed to the TableParser
type Token struct {
	Kind TokenKind
	// Class and HasClass describe a CellStart; a cell without a class
	// attribute has HasClass false.
	Class    string
	HasClass bool
	// Data is the raw text of a Text token
	Data string
}

// RowToken returns a RowStart token
func RowToken() Token { return Token{Kind: RowStart} }

// CellToken returns a CellStart token for a cell with the given class
func CellToken(class string) Token { return Token{Kind: CellStart, Class: class, HasClass: true} }

// BareCellToken returns a CellStart token for a cell without a class attribute
func BareCellToken() Token { return Token{Kind: CellStart} }

// TextToken returns a Text token
func TextToken(data string) Token { return Token{Kind: Text, Data: data} }

// Tokenize streams r through the x/net/html tokenizer and emits table tokens in
// document order. Only rows matching RowSelector are reported, and text is
// reported only while inside a cell of such a row.
func Tokenize(r io.Reader, emit func(Token)) error {
	z := html.NewTokenizer(r)
	inRow, inCell := false, false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("tokenizing HTML: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Tr:
				inCell = false
				inRow = matchesRow(tok)
				if inRow {
					emit(RowToken())
				}
			case atom.Td:
				if !inRow {
					continue
				}
				inCell = tt == html.StartTagToken
				if class, ok := attr(tok.Attr, "class"); ok {
					emit(CellToken(class))
				} else {
					emit(BareCellToken())
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Td:
				inCell = false
			case atom.Tr, atom.Tbody, atom.Table:
				inRow, inCell = false, false
			}

		case html.TextToken:
			if inRow && inCell {
				emit(TextToken(string(z.Text())))
			}
		}
	}
}

// matchesRow runs the row selector against a detached node built from the start tag
func matchesRow(tok html.Token) bool {
	return rowMatcher.Match(&html.Node{
		Type:     html.ElementNode,
		DataAtom: tok.DataAtom,
		Data:     tok.Data,
		Attr:     tok.Attr,
	})
}

func attr(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// DocumentTokens walks an already parsed document and emits the same token
// sequence Tokenize produces for it.
func DocumentTokens(doc *goquery.Document, emit func(Token)) {
	doc.Find(RowSelector).Each(func(_ int, row *goquery.Selection) {
		emit(RowToken())
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			if class, ok := cell.Attr("class"); ok {
				emit(CellToken(class))
			} else {
				emit(BareCellToken())
			}
			for _, n := range cell.Nodes {
				emitText(n, emit)
			}
		})
	})
}

func emitText(n *html.Node, emit func(Token)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			emit(TextToken(c.Data))
		case html.ElementNode:
			emitText(c, emit)
		}
	}
}
