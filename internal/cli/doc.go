// Package cli implements the command-line interface for timus-feed.
//
// The cli package provides the Cobra-based CLI: a single scrape cycle (run),
// a scheduled loop with an optional metrics endpoint (watch), offline parsing
// of saved status pages (parse) and seen-set inspection (seen). It wires
// configuration, storage, notifiers and the cycle runner together.
package cli
