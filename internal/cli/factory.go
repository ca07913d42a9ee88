package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pfrederiksen/timus-feed/internal/config"
	"github.com/pfrederiksen/timus-feed/internal/cycle"
	"github.com/pfrederiksen/timus-feed/internal/logger"
	"github.com/pfrederiksen/timus-feed/internal/metrics"
	"github.com/pfrederiksen/timus-feed/internal/notifier"
	"github.com/pfrederiksen/timus-feed/internal/scraper"
	"github.com/pfrederiksen/timus-feed/internal/storage"
	"github.com/pfrederiksen/timus-feed/internal/telegram"
)

// newNotifier builds the configured delivery channel. Dry runs print to out.
func newNotifier(cfg *config.Config, out io.Writer) (notifier.Notifier, error) {
	switch cfg.NotifierName() {
	case config.NotifierTelegram:
		client, err := telegram.NewClient(cfg.BotToken, cfg.ChannelID)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.NotifierTwitter:
		tw, err := notifier.NewTwitterNotifier(cfg.TwitterCredentials())
		if err != nil {
			return nil, err
		}
		return tw, nil
	case config.NotifierDryRun:
		return notifier.NewDryRunNotifier(out), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

// newRunner wires a cycle runner from configuration. The caller closes the
// returned store.
func newRunner(ctx context.Context, cfg *config.Config, out io.Writer, m *metrics.Metrics) (*cycle.Runner, storage.Store, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}

	n, err := newNotifier(cfg, out)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing notifier: %w", err)
	}

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	runner := &cycle.Runner{
		Fetcher:  scraper.New(cfg.AuthorID).WithURL(cfg.StatusURL).WithCount(cfg.ResultCount),
		Store:    store,
		Notifier: n,
		AuthorID: cfg.AuthorID,
		Policy:   policy,
		Timeout:  cfg.CycleTimeout,
		Metrics:  m,
		Logger: logger.Default().With(logger.Fields{
			"author_id": cfg.AuthorID,
			"store":     cfg.Store,
			"notifier":  cfg.NotifierName(),
		}),
	}
	return runner, store, nil
}
