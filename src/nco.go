package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Phasor numerically-controlled oscillator: a unit-modulus
 *		complex state advanced each sample by multiplication
 *		with a fixed per-sample step, re-normalized every call
 *		to keep the repeated multiplication from drifting off
 *		the unit circle.
 *
 *----------------------------------------------------------------*/

type nco struct {
	phasor cf32
	step   cf32
}

func newNCO() *nco {
	return &nco{phasor: cf32{re: 1, im: 0}, step: cf32{re: 1, im: 0}}
}

// omega sets the per-sample phase step directly, in radians/sample.
func (o *nco) omega(v float32) {
	o.step = polar(1, v)
}

// freq sets the per-sample phase step in cycles/sample (i.e. v =
// frequency / sample-rate).
func (o *nco) freq(v float32) {
	o.omega(v * 2 * pi32)
}

// next advances the oscillator and returns the new phasor value.
func (o *nco) next() cf32 {
	o.phasor = o.phasor.mul(o.step)
	mag := o.phasor.abs()
	if mag > 0 {
		o.phasor = o.phasor.scale(1 / mag)
	}
	return o.phasor
}

// mix advances the oscillator and multiplies sample x by the new
// phasor value, the common "correct this sample for CFO" operation.
func (o *nco) mix(x cf32) cf32 {
	return x.mul(o.next())
}

const pi32 = 3.14159265358979323846
