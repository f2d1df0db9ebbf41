package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/config"
	"github.com/vikrant82/elnet-dashboard/internal/db"
	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/metrics"
	"github.com/vikrant82/elnet-dashboard/internal/models"
	"github.com/vikrant82/elnet-dashboard/internal/notify"
	"github.com/vikrant82/elnet-dashboard/internal/summary"
)

// pollTimeout bounds one fetch including its retries.
const pollTimeout = 45 * time.Second

// Daily summary fire time, meter-local.
const (
	summaryHour   = 23
	summaryMinute = 59
)

// MeterClient is the slice of the metering API the service needs.
type MeterClient interface {
	FetchLive(ctx context.Context) (*models.Reading, error)
	FetchHome(ctx context.Context) (*models.HomeData, error)
}

// Service owns the session state and runs the polling pipeline:
// fetch, validate, transition detection, ledger, notification. A mutex
// serializes pipeline runs so a slow fetch can never interleave two
// transition evaluations.
type Service struct {
	client   MeterClient
	store    *db.DB
	engine   *Engine
	ledger   *Ledger
	notifier notify.Notifier

	symbol   string
	loc      *time.Location
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup

	now func() time.Time
}

// NewService wires the pipeline. The session state is created here and
// lives for the process lifetime.
func NewService(cfg *config.Config, client MeterClient, store *db.DB, notifier notify.Notifier) *Service {
	state := NewSessionState()
	return &Service{
		client:   client,
		store:    store,
		engine:   NewEngine(state, cfg.LowBalanceThreshold),
		ledger:   NewLedger(store),
		notifier: notifier,
		symbol:   cfg.CurrencySymbol,
		loc:      cfg.MeterLocation(),
		interval: cfg.FetchInterval,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the polling and daily-summary goroutines.
func (s *Service) Start() {
	s.wg.Add(2)
	go s.pollLoop()
	go s.summaryLoop()
}

// Close stops the background goroutines and waits for them.
func (s *Service) Close() {
	close(s.stopChan)
	s.wg.Wait()
}

// pollLoop drives the pipeline: an immediate first tick, then one per
// interval.
func (s *Service) pollLoop() {
	defer s.wg.Done()

	s.pollOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pollOnce()
		case <-s.stopChan:
			return
		}
	}
}

// pollOnce runs one pipeline pass under the mutex.
func (s *Service) pollOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	reading, err := s.client.FetchLive(ctx)
	if err != nil {
		// This tick is abandoned; the next one starts fresh.
		logger.Error("poll failed, no reading this tick", "error", err)
		metrics.PollsTotal.WithLabelValues("fetch_error").Inc()
		return
	}

	now := s.now().In(s.loc)
	if err := ValidateReading(reading, now); err != nil {
		switch {
		case errors.Is(err, ErrStaleReading):
			logger.Debug("dropping reading", "reason", err)
			metrics.ReadingsRejected.WithLabelValues("stale").Inc()
		case errors.Is(err, ErrDegenerateReading):
			logger.Debug("dropping reading", "reason", err)
			metrics.ReadingsRejected.WithLabelValues("degenerate").Inc()
		}
		metrics.PollsTotal.WithLabelValues("rejected").Inc()
		return
	}

	events := s.engine.Process(reading, now)

	// Session state has already moved; a storage fault is logged and the
	// tick continues without rolling it back.
	if ev, err := s.ledger.Record(reading); err != nil {
		logger.Error("failed to persist usage record", "error", err)
	} else if ev != nil {
		events = append(events, *ev)
	}

	s.dispatch(ctx, events)
	metrics.PollsTotal.WithLabelValues("ok").Inc()
}

// dispatch sends events to the notifier, best-effort.
func (s *Service) dispatch(ctx context.Context, events []models.Event) {
	for _, ev := range events {
		switch ev.Type {
		case models.EventGeneratorOn:
			metrics.Transitions.WithLabelValues("to_generator").Inc()
		case models.EventGridRestored:
			metrics.Transitions.WithLabelValues("to_grid").Inc()
		}

		metrics.NotificationsSent.Inc()
		if err := s.notifier.Send(ctx, ev.Text(s.symbol)); err != nil {
			logger.Error("failed to dispatch event", "error", err)
		}
	}
}

// summaryLoop fires the daily summary at 23:59 meter-local time.
func (s *Service) summaryLoop() {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(nextSummaryDelay(s.now().In(s.loc)))
		select {
		case <-timer.C:
			s.sendDailySummary()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// sendDailySummary fetches the live aggregate view and notifies it. It
// never touches session state; the ledger is only read for the sparkline.
func (s *Service) sendDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	home, err := s.client.FetchHome(ctx)
	if err != nil {
		logger.Error("failed to fetch daily summary data", "error", err)
		return
	}

	now := s.now().In(s.loc)
	hoursToday := int(now.Sub(midnight(now)).Hours()) + 1
	buckets, err := s.store.GetBucketedUsage(hoursToday, 30)
	if err != nil {
		logger.Error("failed to load usage buckets for summary", "error", err)
		buckets = nil
	}

	msg := summary.Build(home, buckets, s.symbol)
	metrics.NotificationsSent.Inc()
	if err := s.notifier.Send(ctx, msg); err != nil {
		logger.Error("failed to send daily summary", "error", err)
	}
}

// nextSummaryDelay returns the duration until the next 23:59 in now's
// location.
func nextSummaryDelay(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		summaryHour, summaryMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
