package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Schmidl-Cox timing and coarse CFO synchronization over
 *		the half-symbol-repeated correlation preamble.
 *
 *		Streaming per-sample update:
 *		  term(n)  = conj(r(n-L/2)) * r(n)
 *		  P(n)     = sliding sum of term over the last L/2 samples
 *		  R(n)     = sliding sum of |r(n)|^2 over the last L/2
 *		  M(n)     = |P(n)|^2 / R(n)^2          (the plateau metric)
 *		  phase(n) = arg(P(n))
 *
 *		M(n) rides a plateau across the repeated half, which a
 *		Schmitt trigger (hysteresis, avoids chattering on noise)
 *		turns into a clean high interval; a falling-edge trigger
 *		on that interval marks the plateau's trailing edge, which
 *		sits one correlation length past the true symbol boundary.
 *		phase(n) at the edge gives the fractional CFO directly:
 *		since the repeated half accumulates a phase rotation of
 *		pi*epsilon radians per sample pair over the L/2 lag,
 *		epsilon_frac = phase(n) / pi (in units of subcarrier
 *		spacing).
 *
 *		Integer carrier offset resolves separately once a symbol
 *		boundary is known: correlate the received symbol's
 *		spectrum X against a known preamble reference spectrum K
 *		via IFFT(X .* conj(K)) and take the peak's bin position.
 *
 *		Grounded on the teacher's pll_dcd.go hysteresis-based
 *		carrier detect for the trigger/edge shape, composed here
 *		with the C5 DSP primitives (complexSMA/realSMA/schmittTrigger
 *		/fallingEdgeTrigger/complexDelayLine).
 *
 *----------------------------------------------------------------*/

// SchmidlCox tracks the running P/R/M statistics for one half-symbol
// window and reports plateau edges as they're detected.
type SchmidlCox struct {
	half     int
	delay    *complexDelayLine
	pSum     *complexSMA
	rSum     *realSMA
	matchLen int
	mFilter  *realSMA          // matched filter: moving average of M(n)
	pAlign   *complexDelayLine // delays P so phase(n) stays aligned with the filtered M(n)
	trig     *schmittTrigger
	edge     fallingEdgeTrigger
	lastP    cf32
	lastM    float32
}

// NewSchmidlCox builds a correlator for a half-symbol length of
// halfLen samples (Geometry.L / 2), with the given Schmitt trigger
// low/high thresholds on the normalized metric M(n) in [0,1].
// guardLen sets the matched-filter length (rounded up to odd, G | 1
// per spec); P is delayed by (matchLen-1)/2 samples so its phase
// still lines up with the matched-filtered M(n) it's reported beside.
func NewSchmidlCox(halfLen, guardLen int, low, high float32) *SchmidlCox {
	matchLen := guardLen | 1
	if matchLen < 1 {
		matchLen = 1
	}
	return &SchmidlCox{
		half:     halfLen,
		delay:    newComplexDelayLine(halfLen),
		pSum:     newComplexSMA(halfLen, false),
		rSum:     newRealSMA(halfLen, false),
		matchLen: matchLen,
		mFilter:  newRealSMA(matchLen, true),
		pAlign:   newComplexDelayLine((matchLen - 1) / 2),
		trig:     newSchmittTrigger(low, high),
	}
}

// SCSample is the per-sample correlator output.
type SCSample struct {
	M         float32
	Phase     float32
	Plateau   bool // Schmitt-trigger state: inside a candidate plateau
	EdgeFound bool // true exactly once, on the plateau's falling edge
}

const scEpsilon = 1e-12

// Process feeds one complex baseband sample and advances the
// correlator state by one step.
func (s *SchmidlCox) Process(x cf32) SCSample {
	delayed := s.delay.push(x)
	term := delayed.conj().mul(x)
	p := s.pSum.update(term)
	r := s.rSum.update(x.norm())

	denom := r*r + scEpsilon
	raw := p.norm() / denom
	if raw > 1 {
		raw = 1
	}
	m := s.mFilter.update(raw)
	pAligned := s.pAlign.push(p)

	plateau := s.trig.update(m)
	edge := s.edge.update(plateau)

	s.lastP, s.lastM = pAligned, m
	return SCSample{M: m, Phase: pAligned.arg(), Plateau: plateau, EdgeFound: edge}
}

// FractionalCFO converts the phase of P at a detected edge into a
// frequency offset normalized to one subcarrier spacing.
func FractionalCFO(phaseAtEdge float32) float32 {
	return phaseAtEdge / pi32
}

// IntegerCFOResult is the outcome of integer-carrier-bin acquisition:
// the bin offset itself, whether the peak was strong enough to trust,
// and a sub-sample symbol-position refinement derived from its phase.
type IntegerCFOResult struct {
	Bin       int
	Accepted  bool
	SubSample float32 // refinement, in samples, to add to the staged position
}

// IntegerCFOBin finds the integer carrier-bin offset between a
// received symbol's spectrum x and a known reference spectrum ref
// (same length), via the position of the peak magnitude in
// IFFT(x .* conj(ref)): the classic frequency cross-correlation.
// The bin is accepted only if its squared magnitude beats the
// runner-up's by 4x, per spec.md's acceptance test; the sub-sample
// position refinement is arg(peak)*L/(2*pi), unrounded (the caller
// rounds it).
func IntegerCFOBin(x, ref []cf32) IntegerCFOResult {
	n := len(x)
	prod := make([]cf32, n)
	for i := 0; i < n; i++ {
		prod[i] = x[i].mul(ref[i].conj())
	}
	corr := IFFT(prod)
	best, bestMag := 0, float32(-1)
	second := float32(-1)
	for i, c := range corr {
		mag := c.norm()
		if mag > bestMag {
			best, bestMag, second = i, mag, bestMag
		} else if mag > second {
			second = mag
		}
	}

	peak := corr[best]
	sub := peak.arg() * float32(n) / (2 * pi32)

	bin := best
	if bin > n/2 {
		bin -= n
	}
	accepted := second < 0 || bestMag > 4*second
	return IntegerCFOResult{Bin: bin, Accepted: accepted, SubSample: sub}
}

// correlationKernel rebuilds the known correlation-sequence reference
// spectrum (the same BPSK comb emitCorrelation writes, centered on
// carrierBin) for cross-correlation against a received symbol's FFT.
func correlationKernel(geo Geometry, carrierBin int) []cf32 {
	k := make([]cf32, geo.L)
	mls := NewMLS(correlationMLSPoly)
	for i := 0; i < correlationBits; i++ {
		bit := mls.Next()
		v := float32(1)
		if bit != 0 {
			v = -1
		}
		k[geo.bin(carrierBin+correlationOff+2*i)] = cf32{re: v, im: 0}
	}
	return k
}
