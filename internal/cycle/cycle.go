package cycle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
	"github.com/pfrederiksen/timus-feed/internal/logger"
	"github.com/pfrederiksen/timus-feed/internal/metrics"
	"github.com/pfrederiksen/timus-feed/internal/notifier"
	"github.com/pfrederiksen/timus-feed/internal/storage"
	"github.com/pfrederiksen/timus-feed/internal/telegram"
)

// Policy decides when a submission is written to the seen-set
type Policy string

const (
	// AtMostOnce records a submission after the delivery attempt whatever its
	// outcome. A failed delivery is never retried.
	AtMostOnce Policy = "at-most-once"
	// AtLeastOnce records a submission only after the channel accepted it, so a
	// failed delivery is retried on the next cycle.
	AtLeastOnce Policy = "at-least-once"
)

// ParsePolicy accepts "at-most-once" or "at-least-once"; empty means AtMostOnce
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AtMostOnce:
		return AtMostOnce, nil
	case AtLeastOnce:
		return AtLeastOnce, nil
	default:
		return "", fmt.Errorf("unknown delivery policy %q", s)
	}
}

// Fetcher returns the submissions on the status page, newest first
type Fetcher interface {
	FetchAttempts(ctx context.Context) ([]*attempt.Attempt, error)
}

// Runner performs scrape cycles
type Runner struct {
	Fetcher  Fetcher
	Store    storage.Store
	Notifier notifier.Notifier
	AuthorID string
	Policy   Policy
	// Timeout bounds a whole cycle; zero means no bound beyond ctx
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *logger.Logger
	// Format renders one submission; defaults to telegram.FormatAttempt
	Format func(a *attempt.Attempt, authorID string) string
}

func (r *Runner) log() *logger.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logger.Default()
}

func (r *Runner) format(a *attempt.Attempt) string {
	if r.Format != nil {
		return r.Format(a, r.AuthorID)
	}
	return telegram.FormatAttempt(a, r.AuthorID)
}

// Run performs one cycle and returns how many submissions were announced
func (r *Runner) Run(ctx context.Context) (int, error) {
	start := time.Now()
	log := r.log().With(logger.Fields{"cycle_id": uuid.NewString()})

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	attempts, err := r.Fetcher.FetchAttempts(ctx)
	if err != nil {
		r.Metrics.ObserveCycle(metrics.ResultFetchError, time.Since(start))
		log.Error("Failed to fetch status page", nil, err)
		return 0, fmt.Errorf("fetching status page: %w", err)
	}
	r.Metrics.AddParsed(len(attempts))
	log.Debug("Parsed status page", logger.Fields{"attempts": len(attempts)})

	posted, err := r.announce(ctx, log, attempt.Chronological(attempts))
	if err != nil {
		r.Metrics.ObserveCycle(metrics.ResultStoreError, time.Since(start))
		log.Error("Cycle aborted", logger.Fields{"posted": posted}, err)
		return posted, err
	}

	r.Metrics.ObserveCycle(metrics.ResultSuccess, time.Since(start))
	log.Info(fmt.Sprintf("Posted %d messages", posted), logger.Fields{
		"posted":      posted,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return posted, nil
}

// Announce runs the novelty filter over attempts, which must already be in
// chronological order, and returns how many were announced
func (r *Runner) Announce(ctx context.Context, attempts []*attempt.Attempt) (int, error) {
	return r.announce(ctx, r.log(), attempts)
}

func (r *Runner) announce(ctx context.Context, log *logger.Logger, attempts []*attempt.Attempt) (int, error) {
	posted := 0
	for _, a := range attempts {
		// The trailing record of an empty table carries nothing
		if a.IsEmpty() {
			continue
		}

		id := a.ID()
		_, seen, err := r.Store.Get(ctx, id)
		if err != nil {
			return posted, fmt.Errorf("looking up attempt %q: %w", id, err)
		}
		if seen {
			continue
		}

		fields := logger.Fields{"attempt_id": id}
		if err := r.Notifier.Notify(ctx, r.format(a)); err != nil {
			r.Metrics.IncDeliveryFailure()
			log.Error("Error sending message", fields, err)
			if r.Policy == AtLeastOnce {
				continue
			}
		}

		snapshot, err := json.Marshal(a)
		if err != nil {
			return posted, fmt.Errorf("encoding attempt %q: %w", id, err)
		}
		if err := r.Store.Put(ctx, id, snapshot); err != nil {
			return posted, fmt.Errorf("recording attempt %q: %w", id, err)
		}

		posted++
		r.Metrics.IncPosted()
		log.Debug("Announced attempt", fields)
	}
	return posted, nil
}
