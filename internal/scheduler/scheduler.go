package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/crucial707/profiles-api/internal/logger"
	"github.com/crucial707/profiles-api/internal/metrics"
)

// Scheduler runs named background jobs on cron schedules.
type Scheduler struct {
	c *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New() *Scheduler {
	return &Scheduler{
		c:       cron.New(cron.WithChain(cron.Recover(cronLogger{}))),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers fn under name. Names are unique; spec is a standard cron expression
// or a descriptor such as "@every 10m".
func (s *Scheduler) Add(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; ok {
		return errors.Errorf("scheduler: job %q already registered", name)
	}
	id, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		fn()
		logger.Log.WithField("job", name).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("scheduled job finished")
	})
	if err != nil {
		return errors.Wrapf(err, "scheduler: invalid schedule %q for job %q", spec, name)
	}
	s.entries[name] = id
	logger.Log.WithField("job", name).WithField("schedule", spec).Info("scheduled job added")
	return nil
}

// Remove unregisters a job. Unknown names are ignored.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[name]; ok {
		s.c.Remove(id)
		delete(s.entries, name)
	}
}

// Next reports when the named job runs next. The zero time means not started or unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.c.Entry(id).Next
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pruner drops expired entries and reports how many went.
type Pruner interface {
	Prune(now time.Time) int
}

// PruneJob returns a job that prunes p and records the count.
func PruneJob(p Pruner, now func() time.Time) func() {
	return func() {
		n := p.Prune(now())
		metrics.AddRevokedTokensPruned(n)
		if n > 0 {
			logger.Log.WithField("pruned", n).Info("revoked tokens pruned")
		}
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.WithField("cron", keysAndValues).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.WithError(err).WithField("cron", keysAndValues).Error(msg)
}
