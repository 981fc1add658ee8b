package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/srr_metrics/backend/internal/metrics"
)

const (
	TriggerTimer  = "timer"
	TriggerManual = "manual"
)

// Event tells subscribers the cached data was dropped and views should be
// rebuilt.
type Event struct {
	Trigger string    `json:"trigger"`
	At      time.Time `json:"at"`
}

type Status struct {
	LastRefresh    time.Time `json:"last_refresh"`
	NextRefresh    time.Time `json:"next_refresh"`
	SecondsToNext  int       `json:"seconds_to_next"`
	IntervalSecond int       `json:"interval_seconds"`
}

// Scheduler invalidates the dataset cache on a fixed interval and on demand.
// A manual refresh restarts the countdown.
type Scheduler struct {
	log        zerolog.Logger
	clock      clockwork.Clock
	interval   time.Duration
	invalidate func()
	// Warm reloads data after an invalidation. Errors are logged only.
	Warm func(ctx context.Context) error

	mu          sync.Mutex
	lastRefresh time.Time
	nextRefresh time.Time
	subs        map[chan Event]struct{}
	reset       chan struct{}
}

func NewScheduler(log zerolog.Logger, clock clockwork.Clock, interval time.Duration, invalidate func()) *Scheduler {
	now := clock.Now()
	return &Scheduler{
		log:         log,
		clock:       clock,
		interval:    interval,
		invalidate:  invalidate,
		lastRefresh: now,
		nextRefresh: now.Add(interval),
		subs:        make(map[chan Event]struct{}),
		reset:       make(chan struct{}, 1),
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.refresh(ctx, TriggerTimer)
		case <-s.reset:
			ticker.Reset(s.interval)
		}
	}
}

// Trigger refreshes immediately and restarts the interval.
func (s *Scheduler) Trigger(ctx context.Context) Event {
	ev := s.refresh(ctx, TriggerManual)
	select {
	case s.reset <- struct{}{}:
	default:
	}
	return ev
}

func (s *Scheduler) refresh(ctx context.Context, trigger string) Event {
	s.invalidate()
	metrics.RefreshesTotal.WithLabelValues(trigger).Inc()

	now := s.clock.Now()
	ev := Event{Trigger: trigger, At: now}
	s.mu.Lock()
	s.lastRefresh = now
	s.nextRefresh = now.Add(s.interval)
	s.mu.Unlock()

	s.log.Debug().Str("trigger", trigger).Msg("data cache invalidated")
	if s.Warm != nil {
		if err := s.Warm(ctx); err != nil {
			s.log.Warn().Err(err).Str("trigger", trigger).Msg("reload after refresh failed")
		}
	}
	s.broadcast(ev)
	return ev
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	left := s.nextRefresh.Sub(s.clock.Now())
	if left < 0 {
		left = 0
	}
	return Status{
		LastRefresh:    s.lastRefresh,
		NextRefresh:    s.nextRefresh,
		SecondsToNext:  int(left.Round(time.Second) / time.Second),
		IntervalSecond: int(s.interval / time.Second),
	}
}

// Subscribe returns a channel of refresh events and a func that releases it.
// Slow subscribers miss events rather than block the scheduler.
func (s *Scheduler) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Scheduler) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
