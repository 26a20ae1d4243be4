package antispam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSweepInterval = 30 * time.Second
	DefaultWindowMaxAge  = 60 * time.Second
)

// Sweeper periodically drops stale activity windows so that users who stop
// writing do not pin memory.
type Sweeper struct {
	windows  *WindowStore
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

func NewSweeper(windows *WindowStore, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultWindowMaxAge
	}
	return &Sweeper{
		windows:  windows,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (s *Sweeper) getLogEntry() *log.Entry {
	return log.WithField("object", "AntiSpamSweeper")
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	logger := cron.PrintfLogger(s.getLogEntry())
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.Sweep() }); err != nil {
		return errors.Wrap(err, "failed to schedule window sweep")
	}
	c.Start()

	s.cron = c
	s.started = true
	s.getLogEntry().WithField("interval", s.interval.String()).Debug("sweeper started")
	return nil
}

// Stop waits for a running sweep, bounded by ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	done := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep removes windows older than the configured max age.
func (s *Sweeper) Sweep() int {
	removed := s.windows.Sweep(s.now(), s.maxAge)
	if removed > 0 {
		s.getLogEntry().WithField("removed", removed).Trace("swept activity windows")
	}
	return removed
}
