// Package beat predicts the time until the next beat from a short
// history of observed beat instants, driving both auto-skip/auto-switch
// effects and the beat-consumer thread's sleep schedule.
package beat

import "time"

// Predictor is a two-tap interval estimator: it remembers at most the
// two most recent beat instants and extrapolates forward.
type Predictor struct {
	instants   []time.Time
	multiplier float64
}

// NewPredictor returns a Predictor with multiplier 1 (no speed-up or
// slow-down relative to the observed beat).
func NewPredictor() *Predictor {
	return &Predictor{multiplier: 1}
}

// SetMultiplier sets the beat-rate multiplier (e.g. 0.5^beat_multiplier
// from the control state).
func (p *Predictor) SetMultiplier(m float64) {
	p.multiplier = m
}

// Multiplier returns the current multiplier.
func (p *Predictor) Multiplier() float64 {
	return p.multiplier
}

// PutInputBeat records a beat observed at now, keeping at most the two
// most recent.
func (p *Predictor) PutInputBeat(now time.Time) {
	p.instants = append(p.instants, now)
	if len(p.instants) > 2 {
		p.instants = p.instants[len(p.instants)-2:]
	}
}

// DurationToNextBeat returns the time remaining until the next
// predicted beat, offset by `offset` (which may be negative), or
// false if fewer than two beats have been observed yet.
func (p *Predictor) DurationToNextBeat(now time.Time, offset time.Duration) (time.Duration, bool) {
	if len(p.instants) < 2 {
		return 0, false
	}
	period := p.instants[1].Sub(p.instants[0])
	if p.multiplier <= 0 {
		return 0, false
	}
	predictedPeriod := time.Duration(float64(period) / p.multiplier)
	if predictedPeriod <= 0 {
		return 0, false
	}
	elapsed := now.Add(offset).Sub(p.instants[1])
	mod := elapsed % predictedPeriod
	if mod < 0 {
		mod += predictedPeriod
	}
	return predictedPeriod - mod, true
}
