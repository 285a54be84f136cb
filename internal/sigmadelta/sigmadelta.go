// Package sigmadelta implements a first-order noise-shaping quantizer
// that turns a fractional frame-repeat factor into an integer repeat
// count per tick, with the running average converging to the input.
package sigmadelta

import "math"

// Quantizer is a stateful single-pole sigma-delta integrator.
type Quantizer struct {
	integrator float64
}

// New returns a Quantizer with a zero integrator.
func New() *Quantizer {
	return &Quantizer{}
}

// Put feeds x into the integrator and returns the integer count to
// emit this tick. The feedback term is the integer already emitted,
// so the running average of outputs converges to x.
func (q *Quantizer) Put(x float64) int {
	feedback := math.Floor(q.integrator)
	q.integrator += x - feedback
	return int(math.Floor(q.integrator))
}
