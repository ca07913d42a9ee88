package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/timus-feed/internal/config"
	"github.com/pfrederiksen/timus-feed/internal/cycle"
	"github.com/pfrederiksen/timus-feed/internal/logger"
	"github.com/pfrederiksen/timus-feed/internal/metrics"
	"github.com/pfrederiksen/timus-feed/internal/scraper"
	"github.com/pfrederiksen/timus-feed/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const metricsShutdownTimeout = 5 * time.Second

// globalOptions are flags shared by every command. Set flags override the
// environment.
type globalOptions struct {
	logLevel string
	author   string
	store    string
	dataDir  string
	notifier string
	logOut   io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "timus-feed",
		Short: "Announce new Timus Online Judge submissions",
		Long: `A worker that watches one author's submissions on the Timus Online Judge
status page and announces each new attempt to a chat channel.
Announced attempts are remembered so repeated runs never post twice.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logOut = cmd.ErrOrStderr()
			level := opts.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			logger.SetDefault(logger.New(logger.ParseLevel(level), opts.logOut))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	flags.StringVar(&opts.author, "author", "", "Timus author id (default from AUTHOR_ID)")
	flags.StringVar(&opts.store, "store", "", "Seen-set backend: file, memory, sqlite, postgres, redis, gist")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory for the file store")
	flags.StringVar(&opts.notifier, "notifier", "", "Delivery channel: telegram, twitter, dryrun")

	cmd.AddCommand(
		newRunCmd(opts),
		newWatchCmd(opts),
		newParseCmd(),
		newSeenCmd(opts),
	)

	return cmd
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.author != "" {
		cfg.AuthorID = opts.author
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.notifier != "" {
		cfg.Notifier = opts.notifier
	}

	// LOG_LEVEL may have come from a .env file
	if opts.logLevel == "" && opts.logOut != nil {
		logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), opts.logOut))
	}
	return cfg, nil
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scrape cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseOutputFormat(format)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if dryRun {
				// Previewed attempts must still be announced by the next real run
				cfg.Notifier = config.NotifierDryRun
				cfg.Store = storage.BackendMemory
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, store, err := newRunner(ctx, cfg, cmd.OutOrStdout(), nil)
			if err != nil {
				return err
			}
			defer store.Close()

			posted, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			return WriteRunResult(cmd.OutOrStdout(), &RunResult{
				CheckedAt: time.Now().UTC(),
				AuthorID:  cfg.AuthorID,
				Posted:    posted,
			}, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print messages instead of sending them; the seen-set is left untouched")

	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		schedule    string
		metricsAddr string
		runNow      bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run scrape cycles on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Schedule = schedule
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			runner, store, err := newRunner(ctx, cfg, cmd.OutOrStdout(), m)
			if err != nil {
				return err
			}
			defer store.Close()

			sched, err := cycle.NewScheduler(cfg.Schedule, runner, logger.Default())
			if err != nil {
				return err
			}

			if cfg.MetricsAddr != "" {
				shutdown := serveMetrics(cfg.MetricsAddr, m)
				defer shutdown()
			}

			if runNow {
				sched.RunOnce(ctx)
			}
			return sched.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (default from SCHEDULE)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run one cycle immediately at startup")

	return cmd
}

// serveMetrics exposes /metrics until the returned function is called
func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logger.Fields{"addr": addr}, err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func newParseCmd() *cobra.Command {
	var (
		format        string
		sortOrder     string
		dom           bool
		chronological bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a saved status page and print its submissions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseOutputFormat(format)
			if err != nil {
				return err
			}
			if chronological {
				sortOrder = string(SortChronological)
			}
			order, err := ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening page: %w", err)
				}
				defer f.Close()
				in = f
			}

			// Saved pages carry their encoding in a meta tag
			body, err := charset.NewReader(in, "")
			if err != nil {
				return fmt.Errorf("decoding page charset: %w", err)
			}

			parse := scraper.Parse
			if dom {
				parse = scraper.ParseDocument
			}
			parsed, err := parse(body)
			if err != nil {
				return fmt.Errorf("parsing page: %w", err)
			}

			attempts := parsed[:0:0]
			for _, a := range parsed {
				if !a.IsEmpty() {
					attempts = append(attempts, a)
				}
			}
			attempts = sortAttempts(attempts, order, time.Now())

			return WriteParseResult(cmd.OutOrStdout(), &ParseResult{
				ParsedAt: time.Now().UTC(),
				Attempts: attempts,
				Count:    len(attempts),
			}, outFormat, verbose)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&sortOrder, "sort", string(SortByPage), "Order: page, chronological or date")
	cmd.Flags().BoolVar(&chronological, "chronological", false, "Oldest first (same as --sort chronological)")
	cmd.Flags().BoolVar(&dom, "dom", false, "Parse with the goquery document walker instead of the streaming tokenizer")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show every column")

	return cmd
}

// ErrNotSeen is returned by the seen command for unknown ids
var ErrNotSeen = errors.New("attempt has not been announced")

func newSeenCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seen <id>",
		Short: "Print the stored snapshot of an announced attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			store, err := storage.Open(cmd.Context(), cfg.StorageOptions())
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			defer store.Close()

			value, found, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: %w", args[0], ErrNotSeen)
			}

			var snapshot interface{}
			if err := json.Unmarshal(value, &snapshot); err != nil {
				// Not JSON; show it as stored
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(value))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snapshot)
		},
	}
}

// Execute runs the CLI
func Execute(version string) {
	root := NewRootCmd()
	root.Version = version
	err := root.ExecuteContext(context.Background())
	_ = logger.Default().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
