package tracker

import (
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

const (
	// Load-spike detection: need at least this many samples, current load
	// must exceed spikeFactor times the window mean and the absolute floor.
	spikeMinSamples = 6
	spikeFactor     = 3.0
	spikeFloor      = 2.0

	alertDayLayout = "2006-01-02"
)

// Engine detects power-source transitions, low-balance crossings and data
// anomalies from the validated reading stream. It is pure against the
// session state: no I/O, no retries; Process must be called sequentially.
type Engine struct {
	state               *SessionState
	lowBalanceThreshold float64
}

// NewEngine creates a transition engine over the given session state.
// threshold is the low-balance alert level; 0 disables the alert.
func NewEngine(state *SessionState, threshold float64) *Engine {
	return &Engine{
		state:               state,
		lowBalanceThreshold: threshold,
	}
}

// Process absorbs one accepted reading and returns the domain events it
// triggered. now must be in the meter's civil timezone; it drives the
// once-per-day low-balance dedup.
func (e *Engine) Process(r *models.Reading, now time.Time) []models.Event {
	var events []models.Event
	s := e.state

	// Low-balance alert, at most once per calendar day.
	if e.lowBalanceThreshold > 0 && r.Balance < e.lowBalanceThreshold {
		today := now.Format(alertDayLayout)
		if s.lastLowBalanceAlertDay != today {
			events = append(events, models.Event{Type: models.EventLowBalance, Balance: r.Balance})
			s.lastLowBalanceAlertDay = today
		}
	}

	// First reading: seed the baseline, nothing to compare against.
	if !s.hasBaseline() {
		e.storeBaseline(r)
		return events
	}

	// The API returned a cached copy of the previous sample; comparison
	// against it would be meaningless. Values are still refreshed so the
	// next fresh reading compares correctly.
	if r.UpdatedOn.Equal(s.lastUpdated) {
		e.storeBaseline(r)
		return events
	}

	balanceChanged := r.Balance != s.lastBalance
	dgChanged := r.DG != s.lastDG
	ebChanged := r.EB != s.lastEB

	switch {
	case !s.onGenerator && dgChanged && balanceChanged && !ebChanged:
		// Power switched to the generator.
		events = append(events, models.Event{Type: models.EventGeneratorOn, Balance: r.Balance})
		s.onGenerator = true
		s.switchedAt = now
		logger.Info("power source switched to generator", "balance", r.Balance)

	case s.onGenerator && ebChanged && balanceChanged && !dgChanged:
		// Power back on the grid.
		events = append(events, models.Event{Type: models.EventGridRestored, Balance: r.Balance})
		s.onGenerator = false
		s.switchedAt = now
		logger.Info("power source back on grid", "balance", r.Balance)

	case balanceChanged && !dgChanged && !ebChanged:
		// Usage was billed without counter movement.
		logger.Warn("inconsistent reading: balance moved without counter movement",
			"balance", r.Balance, "eb", r.EB, "dg", r.DG)
	}
	// A simultaneous change in both counters is ambiguous and is not
	// treated as a switch in either direction.

	if s.onGenerator && !dgChanged {
		s.dgStableCount++
		logger.Debug("dg counter stable while on generator", "count", s.dgStableCount)
	} else if dgChanged {
		s.dgStableCount = 0
	}

	e.checkLoadSpike(r.PresentLoad)
	e.storeBaseline(r)

	return events
}

// checkLoadSpike flags a present-load sample far above the rolling mean.
// The window is updated with the current sample unconditionally.
func (e *Engine) checkLoadSpike(load float64) {
	mean, n := e.state.loadMean()
	if n >= spikeMinSamples && load > spikeFactor*mean && load > spikeFloor {
		logger.Warn("present load spike detected",
			"load", load, "window_mean", mean, "samples", n)
	}
	e.state.pushLoad(load)
}

// storeBaseline refreshes the stored values from the reading. This runs
// for every accepted reading regardless of path; only the comparison
// logic is skipped on duplicates and the first reading.
func (e *Engine) storeBaseline(r *models.Reading) {
	s := e.state
	s.lastBalance = r.Balance
	s.lastEB = r.EB
	s.lastDG = r.DG
	s.lastUpdated = r.UpdatedOn
}
