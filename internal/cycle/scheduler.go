package cycle

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/pfrederiksen/timus-feed/internal/logger"
)

// DefaultSchedule runs a cycle every five minutes
const DefaultSchedule = "*/5 * * * *"

// Cycle is one scrape-diff-notify pass
type Cycle interface {
	Run(ctx context.Context) (int, error)
}

// cronLogger routes robfig/cron's internal logging to our logger
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Scheduler triggers cycles on a cron schedule. A tick that fires while the
// previous cycle is still running is skipped.
type Scheduler struct {
	cron  *cron.Cron
	cycle Cycle
	spec  string
	log   *logger.Logger
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@every 10m") and prepares a scheduler for c
func NewScheduler(spec string, c Cycle, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Default()
	}
	if spec == "" {
		spec = DefaultSchedule
	}

	cl := cronLogger{log: log}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		cycle: c,
		spec:  spec,
		log:   log,
	}, nil
}

// RunOnce performs a single cycle, logging its error instead of returning it
func (s *Scheduler) RunOnce(ctx context.Context) {
	if _, err := s.cycle.Run(ctx); err != nil {
		s.log.Error("Scheduled cycle failed", logger.Fields{"schedule": s.spec}, err)
	}
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running cycle to finish
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling cycle: %w", err)
	}

	s.log.Info("Scheduler started", logger.Fields{"schedule": s.spec})
	s.cron.Start()

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.log.Info("Scheduler stopped", nil)
	return nil
}
