package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Kaiser-windowed Hilbert FIR, turning a real input stream
 *		into the analytic (complex) signal the correlator and
 *		FFT stages operate on.
 *
 *		taps ≡ 1 (mod 4), length (((33*Fs/8000) &^ 3) | 1).
 *		The imaginary branch is nonzero only at odd offsets k
 *		from the center tap, weighted by 2/(pi*k) * kaiser(.)
 *		(antisymmetric about the center). The real branch passes the
 *		center tap through a pure delay so re/im stay aligned.
 *
 *----------------------------------------------------------------*/

import "math"

const hilbertKaiserBeta = 6.0

type hilbertFilter struct {
	imTaps []float32
	delay  []float32 // ring buffer for the real (delay-only) branch
	center int
	pos    int
}

// hilbertTaps computes the odd-length FIR size for sample rate fs,
// per spec: (((33*fs/8000) &^ 3) | 1).
func hilbertTaps(fs int) int {
	n := 33 * fs / 8000
	n &^= 3
	n |= 1
	return n
}

func newHilbertFilter(fs int) *hilbertFilter {
	n := hilbertTaps(fs)
	center := n / 2
	imTaps := make([]float32, n)
	for i := 0; i < n; i++ {
		k := i - center
		if k%2 == 0 {
			imTaps[i] = 0
			continue
		}
		w := window(windowKaiser, n, i, hilbertKaiserBeta)
		imTaps[i] = float32(2.0 / (math.Pi * float64(k)) * w)
	}
	return &hilbertFilter{
		imTaps: imTaps,
		delay:  make([]float32, n),
		center: center,
	}
}

// process pushes one real sample through the filter and returns the
// analytic (complex) output sample, delayed by `center` samples.
func (h *hilbertFilter) process(x float32) cf32 {
	n := len(h.delay)
	h.delay[h.pos] = x
	var im float32
	for i, tap := range h.imTaps {
		if tap == 0 {
			continue
		}
		idx := (h.pos - i + n) % n
		im += tap * h.delay[idx]
	}
	reIdx := (h.pos - h.center + n) % n
	re := h.delay[reIdx]
	h.pos = (h.pos + 1) % n
	return cf32{re: re, im: im}
}

func (h *hilbertFilter) groupDelay() int {
	return h.center
}
