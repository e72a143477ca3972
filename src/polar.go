package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Polar (Arikan) encoder over GF(2) at N=2048, frozen set
 *		selected by FrozenTable per spec.md's three payload
 *		modes. Two encode entry points:
 *
 *		  PolarEncode           non-systematic, in-place
 *		                        butterfly recursion (the classic
 *		                        O(N log N) Arikan transform)
 *		  PolarEncodeSystematic double forward/backward pass so
 *		                        the information bits appear
 *		                        unmodified at their own positions
 *		                        in the encoded output (spec.md
 *		                        requires systematic framing so the
 *		                        differential-QPSK front end can
 *		                        carry soft information symmetric
 *		                        for both info and frozen bits)
 *
 *		No direct teacher analog; the pack's only file with
 *		"polar" in its name (Observe-l-RL-quic-Raptor's polar.go)
 *		is a GF(2) fountain code using Gaussian elimination, not
 *		Arikan polarization -- its row-reduction idiom was instead
 *		reused for C8's OSD. This is new code following spec.md's
 *		description of the transform directly.
 *
 *----------------------------------------------------------------*/

// polarTransform applies Arikan's G = F^(x)n kernel to bits in place,
// length must be a power of two.
func polarTransform(bits []byte) {
	n := len(bits)
	for step := 1; step < n; step *= 2 {
		for base := 0; base < n; base += step * 2 {
			for i := 0; i < step; i++ {
				bits[base+i] ^= bits[base+step+i]
			}
		}
	}
}

// PolarEncode maps `info` (len = number of 0-bits in frozen, i.e. the
// non-frozen positions of frozen) into a length-len(frozen) codeword:
// info bits placed at non-frozen positions, zero elsewhere, then
// polarTransform applied. Non-systematic: info bits do not appear
// unmodified in the output.
func PolarEncode(info []byte, frozen packedBitmap, n int) []byte {
	u := make([]byte, n)
	idx := 0
	for i := 0; i < n; i++ {
		if frozen.bit(i) == 0 {
			u[i] = info[idx]
			idx++
		}
	}
	polarTransform(u)
	return u
}

// PolarEncodeSystematic produces a systematic polar codeword: the
// bits at non-frozen positions of the *output* equal `info` exactly.
// Computed by Arikan's two-pass method: encode once, zero the frozen
// positions of the result, encode again.
func PolarEncodeSystematic(info []byte, frozen packedBitmap, n int) []byte {
	u := make([]byte, n)
	idx := 0
	for i := 0; i < n; i++ {
		if frozen.bit(i) == 0 {
			u[i] = info[idx]
			idx++
		}
	}
	polarTransform(u)
	for i := 0; i < n; i++ {
		if frozen.bit(i) != 0 {
			u[i] = 0
		}
	}
	polarTransform(u)
	return u
}
