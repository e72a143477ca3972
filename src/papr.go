package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Peak-to-average power ratio reduction via a single
 *		clipping pass in an oversampled time domain, preserving the
 *		active subcarrier set on the way back out.
 *
 *		1. Zero-pad X to f*L bins, preserving wrap-around layout.
 *		2. Inverse transform, scale by 1/sqrt(f*L).
 *		3. Clip samples with |.| > 1 to unit magnitude.
 *		4. Forward transform, keep only the originally active
 *		   bins, zero the rest.
 *
 *		Composes C6 (FFT) and C1 (complex math); no direct
 *		analog exists in the teacher, which never had an OFDM
 *		PAPR stage.
 *
 *----------------------------------------------------------------*/

import "math"

// reducePAPR applies one pass of oversampled clip-and-restrict PAPR
// reduction to a frequency-domain symbol X of length L, where active
// reports whether bin i carries real content (everything else is
// assumed already zero and stays zero).
func reducePAPR(x []cf32, oversample int, active func(bin int) bool) []cf32 {
	l := len(x)
	if oversample <= 1 {
		oversample = 1
	}
	n := oversample * l
	padded := zeroPadWrap(x, l, n)

	// IFFT here already divides by n; spec's "scale by 1/sqrt(f*L)"
	// is defined against an unnormalized inverse sum, so the net
	// factor to apply on top of IFFT's built-in 1/n is sqrt(n).
	sqrtN := float32(math.Sqrt(float64(n)))
	td := IFFT(padded)
	for i := range td {
		td[i] = td[i].scale(sqrtN)
	}

	for i, s := range td {
		if mag := s.abs(); mag > 1 {
			td[i] = s.scale(1 / mag)
		}
	}

	// FFT is the matching unnormalized forward sum, so dividing by
	// the same sqrt(n) makes an unclipped round trip idempotent.
	fd := FFT(td)
	for i := range fd {
		fd[i] = fd[i].scale(1 / sqrtN)
	}

	out := make([]cf32, l)
	for i := 0; i < l; i++ {
		if active(i) {
			out[i] = fd[i]
		}
	}
	return out
}

// zeroPadWrap expands a length-l frequency vector to length n (n a
// multiple of l) preserving the wrap-around bin layout: bins
// [0, l/2) keep their position, bins [l/2, l) move to the matching
// high end of the padded spectrum, and everything newly introduced
// in between is zero.
func zeroPadWrap(x []cf32, l, n int) []cf32 {
	out := make([]cf32, n)
	half := l / 2
	for i := 0; i < half; i++ {
		out[i] = x[i]
	}
	for i := half; i < l; i++ {
		out[n-l+i] = x[i]
	}
	return out
}
