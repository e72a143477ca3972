package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repeatedHalfSignal builds a synthetic Schmidl-Cox preamble: a random
// half-length block b repeated twice (b, b), followed by a different
// random block c of the same length, also repeated twice (c, c), so the
// correlator sees a clean plateau across the repeat and a falling edge
// once c arrives.
func repeatedHalfSignal(half int, seed uint32) []cf32 {
	rng := NewXorshift32(seed)
	tone := func() cf32 {
		re := float32(rng.Next()%2000)/1000 - 1
		im := float32(rng.Next()%2000)/1000 - 1
		return cf32{re: re, im: im}
	}
	b := make([]cf32, half)
	for i := range b {
		b[i] = tone()
	}
	c := make([]cf32, half)
	for i := range c {
		c[i] = tone()
	}

	out := make([]cf32, 0, 4*half)
	out = append(out, b...)
	out = append(out, b...)
	out = append(out, c...)
	out = append(out, c...)
	return out
}

func TestSchmidlCoxFindsPlateauAndEdge(t *testing.T) {
	const half = 64
	const guard = 17

	sc := NewSchmidlCox(half, guard, scPlateauLow, scPlateauHigh)
	signal := repeatedHalfSignal(half, 42)

	var sawPlateau, sawEdge bool
	for _, x := range signal {
		sample := sc.Process(x)
		if sample.Plateau {
			sawPlateau = true
		}
		if sample.EdgeFound {
			sawEdge = true
		}
	}

	assert.True(t, sawPlateau, "a repeated half-symbol should drive M(n) into the plateau")
	assert.True(t, sawEdge, "leaving the repeat should trip the falling-edge trigger")
}

func TestSchmidlCoxNoiseNeverPlateaus(t *testing.T) {
	const half = 64
	const guard = 17

	sc := NewSchmidlCox(half, guard, scPlateauLow, scPlateauHigh)
	rng := NewXorshift32(7)
	for i := 0; i < 8*half; i++ {
		re := float32(rng.Next()%2000)/1000 - 1
		im := float32(rng.Next()%2000)/1000 - 1
		sample := sc.Process(cf32{re: re, im: im})
		assert.False(t, sample.Plateau, "uncorrelated noise should never cross into the plateau")
	}
}

func TestFractionalCFOScalesPhaseByPi(t *testing.T) {
	assert.InDelta(t, 0.5, float64(FractionalCFO(pi32/2)), 1e-6)
	assert.InDelta(t, -1.0, float64(FractionalCFO(-pi32)), 1e-6)
	assert.Equal(t, float32(0), FractionalCFO(0))
}

// IFFT(X . conj(Ref)) with Ref an all-ones spectrum (the spectrum of a
// time-domain impulse at 0) and X a pure linear phase ramp (the
// spectrum of a time-domain impulse at `shift`) produces a clean
// single-sample correlation peak at `shift`, independent of any
// preamble-specific structure — an easy, exact way to check the
// acceptance test and bin arithmetic without depending on FFT/IFFT
// behavior over the full comb kernel.
func TestIntegerCFOBinFindsShift(t *testing.T) {
	const n = 16
	const shift = 5

	ref := make([]cf32, n)
	x := make([]cf32, n)
	for k := 0; k < n; k++ {
		ref[k] = cf32{re: 1, im: 0}
		theta := -2 * math.Pi * float64(k) * float64(shift) / float64(n)
		s, c := math.Sincos(theta)
		x[k] = cf32{re: float32(c), im: float32(s)}
	}

	result := IntegerCFOBin(x, ref)
	require.True(t, result.Accepted)
	assert.Equal(t, shift, result.Bin)
	assert.InDelta(t, 0, float64(result.SubSample), 1e-2)
}

func TestIntegerCFOBinFoldsNegativeBins(t *testing.T) {
	const n = 16
	const shift = -3 // n-3 = 13 before folding

	ref := make([]cf32, n)
	x := make([]cf32, n)
	for k := 0; k < n; k++ {
		ref[k] = cf32{re: 1, im: 0}
		theta := -2 * math.Pi * float64(k) * float64((n+shift)%n) / float64(n)
		s, c := math.Sincos(theta)
		x[k] = cf32{re: float32(c), im: float32(s)}
	}

	result := IntegerCFOBin(x, ref)
	require.True(t, result.Accepted)
	assert.Equal(t, shift, result.Bin)
}

func TestCorrelationKernelMatchesEncoderComb(t *testing.T) {
	geo := NewGeometry(8000)
	kernel := correlationKernel(geo, 0)

	nonZero := 0
	for i, c := range kernel {
		if c.norm() == 0 {
			continue
		}
		nonZero++
		assert.InDelta(t, 1, c.norm(), 1e-6, "kernel bin %d should be unit BPSK magnitude", i)
	}
	assert.Equal(t, correlationBits, nonZero)
}
