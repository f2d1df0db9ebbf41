// Package tracker implements the polling pipeline: reading validation,
// power-source transition detection, and usage accounting.
package tracker

import (
	"time"
)

// loadWindowCap is the maximum number of present-load samples retained
// for spike detection.
const loadWindowCap = 10

// SessionState is the transition engine's memory of the previous reading
// and the current power source. There is exactly one instance per process,
// owned by the Service and mutated only by the Engine under the pipeline
// mutex. It is never persisted; a restart forgets the current power source
// and costs one bootstrap cycle.
type SessionState struct {
	lastBalance float64
	lastEB      float64
	lastDG      float64
	lastUpdated time.Time

	onGenerator bool
	switchedAt  time.Time

	// recentLoads holds up to loadWindowCap present-load samples,
	// oldest first.
	recentLoads []float64

	// lastLowBalanceAlertDay is the civil date (YYYY-MM-DD) of the most
	// recent low-balance alert; at most one alert fires per day.
	lastLowBalanceAlertDay string

	// dgStableCount counts consecutive readings with an unchanged DG
	// counter while on generator. Diagnostic only.
	dgStableCount int
}

// NewSessionState creates an empty session state awaiting its first reading.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// OnGenerator reports whether the last detected power source is the
// generator.
func (s *SessionState) OnGenerator() bool {
	return s.onGenerator
}

// SwitchedAt returns the instant of the last power-source switch, zero if
// no switch has been observed.
func (s *SessionState) SwitchedAt() time.Time {
	return s.switchedAt
}

// hasBaseline reports whether a first reading has been absorbed.
func (s *SessionState) hasBaseline() bool {
	return !s.lastUpdated.IsZero()
}

// pushLoad appends a present-load sample, evicting the oldest once the
// window is full.
func (s *SessionState) pushLoad(load float64) {
	s.recentLoads = append(s.recentLoads, load)
	if len(s.recentLoads) > loadWindowCap {
		s.recentLoads = s.recentLoads[1:]
	}
}

// loadMean returns the mean of the retained samples and their count.
func (s *SessionState) loadMean() (float64, int) {
	n := len(s.recentLoads)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range s.recentLoads {
		sum += v
	}
	return sum / float64(n), n
}
