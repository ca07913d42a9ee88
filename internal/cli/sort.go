package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
)

// SortOrder represents the available orderings for parsed attempts
type SortOrder string

const (
	// SortByPage keeps the page order, newest first
	SortByPage SortOrder = "page"
	// SortChronological reverses the page, oldest first
	SortChronological SortOrder = "chronological"
	// SortByDate orders by the parsed submission time
	SortByDate SortOrder = "date"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(s); order {
	case SortByPage, SortChronological, SortByDate:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'page', 'chronological' or 'date')", s)
	}
}

// sortAttempts returns attempts in the requested order; the input is not modified
func sortAttempts(attempts []*attempt.Attempt, order SortOrder, now time.Time) []*attempt.Attempt {
	switch order {
	case SortChronological:
		return attempt.Chronological(attempts)
	case SortByDate:
		out := append([]*attempt.Attempt(nil), attempts...)
		sort.SliceStable(out, func(i, j int) bool {
			return compareByDate(out[i], out[j], now)
		})
		return out
	default:
		return attempts
	}
}

// compareByDate compares two attempts by their submission time
// Returns true if attempt i should come before attempt j
func compareByDate(i, j *attempt.Attempt, now time.Time) bool {
	dateI, okI := attempt.ParseDate(i.Get(attempt.FieldDate), now)
	dateJ, okJ := attempt.ParseDate(j.Get(attempt.FieldDate), now)

	// If both dates are valid, compare them
	if okI && okJ {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if okI {
		return true
	}
	if okJ {
		return false
	}

	// Neither has a date; fall back to the id
	return i.ID() < j.ID()
}
