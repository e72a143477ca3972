package modem

import "math"

// cf32 is the complex sample type used throughout the modem core: a
// plain (re, im) pair of float32, chosen over Go's builtin complex64
// so the arithmetic below can be inlined without the runtime's
// complex-number call conventions getting in the way on the hot path.
type cf32 struct {
	re, im float32
}

func newCf32(re, im float32) cf32 {
	return cf32{re: re, im: im}
}

func (a cf32) add(b cf32) cf32 {
	return cf32{a.re + b.re, a.im + b.im}
}

func (a cf32) sub(b cf32) cf32 {
	return cf32{a.re - b.re, a.im - b.im}
}

func (a cf32) mul(b cf32) cf32 {
	return cf32{a.re*b.re - a.im*b.im, a.re*b.im + a.im*b.re}
}

func (a cf32) scale(s float32) cf32 {
	return cf32{a.re * s, a.im * s}
}

// conj returns the complex conjugate.
func (a cf32) conj() cf32 {
	return cf32{a.re, -a.im}
}

// norm returns |a|^2, the squared magnitude. Named to match the
// squared-magnitude "norm" used throughout the Schmidl-Cox power
// ratio M(n) = |P|^2 / R^2.
func (a cf32) norm() float32 {
	return a.re*a.re + a.im*a.im
}

func (a cf32) abs() float32 {
	return float32(math.Sqrt(float64(a.norm())))
}

// arg returns the phase angle in (-pi, pi].
func (a cf32) arg() float32 {
	return float32(math.Atan2(float64(a.im), float64(a.re)))
}

// polar builds a unit-or-scaled complex sample from magnitude and phase.
func polar(r, theta float32) cf32 {
	s, c := math.Sincos(float64(theta))
	return cf32{re: r * float32(c), im: r * float32(s)}
}

// rotate multiplies a by a unit phasor of angle theta, a common
// operation for CFO / NCO correction of a single sample.
func (a cf32) rotate(theta float32) cf32 {
	return a.mul(polar(1, theta))
}

// clampPhase folds an arbitrary angle in radians into (-pi, pi],
// used by the correlator to report a normalized cfo_rad.
func clampPhase(theta float32) float32 {
	const twoPi = 2 * math.Pi
	t := float64(theta)
	t = math.Mod(t+math.Pi, twoPi)
	if t <= 0 {
		t += twoPi
	}
	return float32(t - math.Pi)
}
