// Package scraper fetches the Timus Online Judge status page and extracts submission rows.
//
// The status table carries no schema beyond the CSS classes of its cells, so rows are
// recovered with a small state machine driven by a flat token stream: row starts, cell
// starts (with their class) and text. Tokens can come from the streaming x/net/html
// tokenizer or from a goquery document; both feed the same TableParser.
package scraper
