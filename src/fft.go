package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Mixed-radix forward/inverse DFT for sizes factored over
 *		small primes (the OFDM symbol length 7680 at 48 kHz
 *		factors as 2^9 * 3 * 5, which no power-of-two FFT can
 *		handle directly).
 *
 *		other_examples/playok-audio-modem__fft.go in the
 *		retrieval pack is the only FFT on hand, and it is
 *		strictly radix-2 / power-of-two-sized. This generalizes
 *		that reference's decimation shape (split, recurse,
 *		combine with twiddle factors) to the general Cooley-
 *		Tukey-Good decomposition for composite N: split N =
 *		p * m with p the smallest allowed prime factor, recurse
 *		on m, and combine the p sub-transforms with precomputed
 *		size-N twiddle factors. Sizes not reachable by the
 *		allowed primes fall back to a direct O(n^2) DFT for that
 *		residual factor, which in practice only ever fires on
 *		the leftover factor itself, not a whole re-derivation.
 *
 *----------------------------------------------------------------*/

import "math"

// smallPrimes is the factor set spec.md allows, tried smallest-first
// so composite sizes peel off as many small radices as possible.
var smallPrimes = [...]int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31}

// twiddleCache memoizes the size-N table of exp(-2*pi*i*k/N) for
// k=0..N-1 so repeated transforms of the same plan size (every OFDM
// symbol, in practice) do not re-derive trigonometry each call.
var twiddleCache = map[int][]cf32{}

func twiddleTable(n int) []cf32 {
	if t, ok := twiddleCache[n]; ok {
		return t
	}
	t := make([]cf32, n)
	for k := 0; k < n; k++ {
		theta := -2 * math.Pi * float64(k) / float64(n)
		s, c := math.Sincos(theta)
		t[k] = cf32{re: float32(c), im: float32(s)}
	}
	twiddleCache[n] = t
	return t
}

// smallestFactor returns the smallest factor of n drawn from
// smallPrimes, or n itself if no such factor divides it (n is then
// treated as a single radix handled by direct DFT).
func smallestFactor(n int) int {
	for _, p := range smallPrimes {
		if p > n {
			break
		}
		if n%p == 0 {
			return p
		}
	}
	return n
}

// FFT computes the forward mixed-radix DFT: X[k] = sum_n x[n] * exp(-2pi i k n / N).
func FFT(x []cf32) []cf32 {
	return mixedRadix(x, false)
}

// IFFT computes the inverse DFT, scaled by 1/N: x[n] = (1/N) sum_k X[k] * exp(+2pi i k n / N).
func IFFT(x []cf32) []cf32 {
	out := mixedRadix(x, true)
	scale := 1 / float32(len(x))
	for i := range out {
		out[i] = out[i].scale(scale)
	}
	return out
}

func mixedRadix(x []cf32, inverse bool) []cf32 {
	n := len(x)
	if n <= 1 {
		out := make([]cf32, n)
		copy(out, x)
		return out
	}

	p := smallestFactor(n)
	if p == n {
		return directDFT(x, inverse)
	}
	m := n / p

	subs := make([][]cf32, p)
	sub := make([]cf32, m)
	for r := 0; r < p; r++ {
		for k := 0; k < m; k++ {
			sub[k] = x[k*p+r]
		}
		tmp := make([]cf32, m)
		copy(tmp, sub)
		subs[r] = mixedRadix(tmp, inverse)
	}

	// the inverse transform uses the conjugate rotation; twiddleAt
	// negates the imaginary part on lookup rather than keeping a
	// second table.
	twiddle := twiddleTable(n)

	out := make([]cf32, n)
	for k := 0; k < n; k++ {
		var acc cf32
		for r := 0; r < p; r++ {
			w := twiddleAt(twiddle, (r*k)%n, inverse)
			acc = acc.add(subs[r][k%m].mul(w))
		}
		out[k] = acc
	}
	return out
}

func twiddleAt(table []cf32, idx int, inverse bool) cf32 {
	w := table[idx]
	if inverse {
		return cf32{re: w.re, im: -w.im}
	}
	return w
}

// directDFT is the O(n^2) fallback for a residual factor with no
// small-prime divisor (expected only for the terminal radix of a
// decomposition, not the whole transform).
func directDFT(x []cf32, inverse bool) []cf32 {
	n := len(x)
	out := make([]cf32, n)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for k := 0; k < n; k++ {
		var acc cf32
		for j := 0; j < n; j++ {
			theta := sign * 2 * math.Pi * float64(k) * float64(j) / float64(n)
			s, c := math.Sincos(theta)
			acc = acc.add(x[j].mul(cf32{re: float32(c), im: float32(s)}))
		}
		out[k] = acc
	}
	return out
}
