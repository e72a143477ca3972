package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Saturating int8 arithmetic for the polar list decoder's
 *		lane-wide LLR and path-metric bookkeeping.
 *
 *		These bounds are part of the wire contract, not an
 *		implementation nicety: the decoder's soft demapper
 *		clamps demodulated LLRs to [-127,127] and every
 *		downstream min-sum / path-metric update assumes that
 *		range never overflows int8, matching the C reference's
 *		explicit clamp(..., -127, 127) rather than relying on
 *		any language's default wraparound behaviour.
 *
 *----------------------------------------------------------------*/

const (
	int8Min = -127
	int8Max = 127
)

func qclamp(v int) int8 {
	if v > int8Max {
		return int8Max
	}
	if v < int8Min {
		return int8Min
	}
	return int8(v)
}

// qadd is saturating addition, used to accumulate path metrics.
func qadd(a, b int8) int8 {
	return qclamp(int(a) + int(b))
}

func qabs(a int8) int8 {
	if a == int8Min {
		return int8Max
	}
	if a < 0 {
		return -a
	}
	return a
}

func qmin(a, b int8) int8 {
	if a < b {
		return a
	}
	return b
}

func qsign(a int8) int8 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

// prod implements the check-node min-sum rule used by the polar
// butterfly recursion: sign(a)*sign(b)*min(|a|,|b|), clamped.
func prod(a, b int8) int8 {
	return qclamp(int(qsign(a)) * int(qsign(b)) * int(qmin(qabs(a), qabs(b))))
}

// madd is a saturating multiply-accumulate: clamp(a*b + c).
func madd(a, b, c int8) int8 {
	return qclamp(int(a)*int(b) + int(c))
}
