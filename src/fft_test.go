package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSignal(n int, seed uint32) []cf32 {
	x := NewXorshift32(seed)
	out := make([]cf32, n)
	for i := range out {
		re := float32(x.Next()%2000)/1000 - 1
		im := float32(x.Next()%2000)/1000 - 1
		out[i] = cf32{re: re, im: im}
	}
	return out
}

func energy(x []cf32) float64 {
	var e float64
	for _, c := range x {
		e += float64(c.norm())
	}
	return e
}

func TestFFTRoundTrip(t *testing.T) {
	for _, n := range []int{128, 7680} {
		x := randomSignal(n, 12345)
		spec := FFT(x)
		back := IFFT(spec)
		require.Equal(t, n, len(back))
		for i := range x {
			assert.InDeltaf(t, float64(x[i].re), float64(back[i].re), 1e-3, "re mismatch at %d (n=%d)", i, n)
			assert.InDeltaf(t, float64(x[i].im), float64(back[i].im), 1e-3, "im mismatch at %d (n=%d)", i, n)
		}
	}
}

func TestFFTParseval(t *testing.T) {
	for _, n := range []int{128, 7680} {
		x := randomSignal(n, 999)
		spec := FFT(x)

		timeEnergy := energy(x)
		freqEnergy := energy(spec) / float64(n)

		rel := math.Abs(timeEnergy-freqEnergy) / timeEnergy
		assert.Lessf(t, rel, 0.01, "Parseval relative error too large at n=%d: %v vs %v", n, timeEnergy, freqEnergy)
	}
}

func TestFFTSingleTone(t *testing.T) {
	const n = 128
	const bin = 5
	x := make([]cf32, n)
	for i := range x {
		theta := 2 * math.Pi * float64(bin) * float64(i) / float64(n)
		s, c := math.Sincos(theta)
		x[i] = cf32{re: float32(c), im: float32(s)}
	}
	spec := FFT(x)
	for i, c := range spec {
		if i == bin {
			assert.InDelta(t, float64(n), float64(c.abs()), 1e-2)
		} else {
			assert.Less(t, float64(c.abs()), 1e-2)
		}
	}
}
