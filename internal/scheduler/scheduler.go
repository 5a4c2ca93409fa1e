// Package scheduler runs periodic article generation on a cron schedule.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/services"
	"github.com/kimhsiao/blogai/internal/uuid"
)

// Runner generates one article per topic. *services.ArticleService satisfies it.
type Runner interface {
	GenerateBatch(ctx context.Context, topics []string) services.BatchReport
}

// Config holds scheduler configuration.
type Config struct {
	Schedule   string        // Standard 5-field cron expression or descriptor (default: "0 2 * * *")
	Topics     []string      // One article per topic per run
	RunTimeout time.Duration // Upper bound on one run (default: 10 minutes)
}

// DefaultSchedule generates once a day at 02:00 local time.
const DefaultSchedule = "0 2 * * *"

// DefaultTopics are generated on every scheduled run.
var DefaultTopics = []string{"Tecnologia", "Inteligência Artificial", "Desenvolvimento Web"}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Schedule:   DefaultSchedule,
		Topics:     DefaultTopics,
		RunTimeout: 10 * time.Minute,
	}
}

// Scheduler triggers Runner.GenerateBatch on a cron schedule.
type Scheduler struct {
	runner     Runner
	expr       string
	schedule   cron.Schedule
	topics     []string
	runTimeout time.Duration
	logger     *logging.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.RWMutex
	isRunning     bool
	runInProgress bool
	lastRunID     string
	lastRunTime   time.Time
	lastReport    *services.BatchReport
}

// New creates a Scheduler. An unparsable schedule is a configuration error.
func New(runner Runner, config *Config, logger *logging.Logger) (*Scheduler, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Get()
	}

	expr := config.Schedule
	if expr == "" {
		expr = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfiguration, "invalid generation schedule "+expr, err)
	}

	topics := config.Topics
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	timeout := config.RunTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().RunTimeout
	}

	return &Scheduler{
		runner:     runner,
		expr:       expr,
		schedule:   schedule,
		topics:     topics,
		runTimeout: timeout,
		logger:     logger,
	}, nil
}

// Start begins firing on the schedule. Runs use a context derived from ctx,
// so cancelling ctx aborts an in-progress run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{s.logger})))
	s.cron.Schedule(s.schedule, cron.FuncJob(s.tick))
	s.cron.Start()
	s.mu.Unlock()

	s.logger.Info("Generation scheduler started", map[string]interface{}{
		"schedule": s.expr,
		"topics":   s.topics,
	})
}

// Stop stops the scheduler and waits for an in-progress run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	done := c.Stop()
	cancel()
	<-done.Done()

	s.logger.Info("Generation scheduler stopped")
}

// tick is the cron job body.
func (s *Scheduler) tick() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	if _, ok := s.run(ctx, "schedule"); !ok {
		s.logger.Debug("Generation already in progress, skipping tick")
	}
}

// RunNow runs one batch immediately and waits for it. It returns false
// without running when another run is in progress.
func (s *Scheduler) RunNow(ctx context.Context) (services.BatchReport, bool) {
	return s.run(ctx, "manual")
}

func (s *Scheduler) run(ctx context.Context, trigger string) (services.BatchReport, bool) {
	s.mu.Lock()
	if s.runInProgress {
		s.mu.Unlock()
		return services.BatchReport{}, false
	}
	s.runInProgress = true
	runID := uuid.New()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.runInProgress = false
		s.mu.Unlock()
	}()

	s.logger.Info("Starting scheduled generation", map[string]interface{}{
		"run_id":  runID,
		"trigger": trigger,
		"topics":  len(s.topics),
	})

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	report := s.runner.GenerateBatch(runCtx, s.topics)

	s.mu.Lock()
	s.lastRunID = runID
	s.lastRunTime = report.Finished
	s.lastReport = &report
	s.mu.Unlock()

	s.logger.Info("Scheduled generation completed", map[string]interface{}{
		"run_id":    runID,
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"duration":  report.Finished.Sub(report.Started).String(),
	})
	return report, true
}

// Status is a snapshot of scheduler state.
type Status struct {
	IsRunning     bool                  `json:"isRunning"`
	RunInProgress bool                  `json:"runInProgress"`
	Schedule      string                `json:"schedule"`
	Topics        []string              `json:"topics"`
	NextRun       *time.Time            `json:"nextRun,omitempty"`
	LastRunID     string                `json:"lastRunId,omitempty"`
	LastRunTime   *time.Time            `json:"lastRunTime,omitempty"`
	LastReport    *services.BatchReport `json:"lastReport,omitempty"`
}

// Status returns the current state of the scheduler.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		IsRunning:     s.isRunning,
		RunInProgress: s.runInProgress,
		Schedule:      s.expr,
		Topics:        s.topics,
		LastRunID:     s.lastRunID,
		LastReport:    s.lastReport,
	}
	if s.isRunning {
		next := s.schedule.Next(time.Now())
		status.NextRun = &next
	}
	if !s.lastRunTime.IsZero() {
		last := s.lastRunTime
		status.LastRunTime = &last
	}
	return status
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvContext(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, err, kvContext(keysAndValues))
}

func kvContext(kv []interface{}) map[string]interface{} {
	if len(kv) == 0 {
		return nil
	}
	ctx := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			ctx[key] = kv[i+1]
		}
	}
	return ctx
}
