package modem

import "sort"

/*------------------------------------------------------------------
 *
 * Purpose:	Successive-cancellation list decoder for the Arikan
 *		polar code, operating on int8-quantized channel LLRs
 *		via the saturating lane arithmetic in satmath.go (prod
 *		is the check-node min-sum rule, madd the variable-node
 *		update, qadd/qabs the path-metric bookkeeping).
 *
 *		Recursion mirrors PolarEncode's butterfly structure
 *		exactly, so leaf visitation order matches bit index 0..N-1
 *		one for one: each non-leaf node splits its segment in
 *		half, recurses left (check-node combine), then right
 *		(variable-node combine using the left half's now-decided
 *		bits), then XORs the two halves back together.
 *
 *		At a frozen leaf every surviving path decides 0 and pays
 *		a penalty if the LLR disagreed. At an information leaf
 *		every surviving path forks into a 0-branch and a
 *		1-branch, candidates are sorted by path metric, and only
 *		the best listWidth survive -- the fork/sort/prune cycle.
 *		Two fast-node short-circuits skip the per-bit recursion
 *		for subtrees that are entirely frozen (rate-0: decide all
 *		zero, accumulate the usual penalty) or entirely
 *		information (rate-1: hard-decide every bit from its LLR
 *		sign, no forking). The rate-0 case is an exact
 *		restatement of the general recursion's outcome for its
 *		subtree; the rate-1 case is an approximation that keeps
 *		one hard-decided continuation per path instead of
 *		forking (see rate1Node).
 *
 *		No teacher or pack analog (see polar.go); this follows
 *		spec.md's description of the SC-list algorithm directly.
 *
 *----------------------------------------------------------------*/

// DefaultListWidth is the number of surviving paths (W) carried
// through the decoder, one "lane" per concurrent hypothesis.
const DefaultListWidth = 16

// scPath is one surviving decode hypothesis: the u-sequence decided
// so far (length N, trailing entries undefined until reached) and its
// accumulated path metric (lower is better).
type scPath struct {
	bits []byte
	pm   int8
}

// PolarListDecode runs SC-list decoding of a length-n channel LLR
// vector against the given frozen set, returning up to listWidth
// surviving paths ordered best (lowest path metric) first.
func PolarListDecode(llr []int8, frozen packedBitmap, n, listWidth int) []*scPath {
	if listWidth <= 0 {
		listWidth = DefaultListWidth
	}
	paths := []*scPath{{bits: make([]byte, n), pm: 0}}
	llrs := [][]int8{append([]int8(nil), llr...)}
	paths, _, _ = scRecurse(paths, llrs, frozen, 0, n, listWidth)
	sort.Slice(paths, func(a, b int) bool { return paths[a].pm < paths[b].pm })
	return paths
}

// scRecurse decodes the segment [segStart, segStart+segLen) given,
// for each currently-active path, that path's LLR values over the
// segment. Returns the (possibly fork-expanded and pruned) path list,
// each path's decided bits over the segment, and an origin slice
// mapping each returned path back to its index in the input `paths`
// slice -- callers use this to realign their own same-level state
// (e.g. the sibling segment's LLRs) after a fork changed path count.
func scRecurse(paths []*scPath, llrs [][]int8, frozen packedBitmap, segStart, segLen, listWidth int) ([]*scPath, [][]byte, []int) {
	if allFrozenRange(frozen, segStart, segLen) {
		return rate0Node(paths, llrs, segStart, segLen)
	}
	if allInfoRange(frozen, segStart, segLen) {
		return rate1Node(paths, llrs, segStart, segLen)
	}
	if segLen == 1 {
		return scLeaf(paths, llrs, frozen, segStart, listWidth)
	}

	half := segLen / 2
	leftLLR := make([][]int8, len(llrs))
	for i, l := range llrs {
		ll := make([]int8, half)
		for k := 0; k < half; k++ {
			ll[k] = prod(l[k], l[k+half])
		}
		leftLLR[i] = ll
	}
	paths1, leftBits, origin1 := scRecurse(paths, leftLLR, frozen, segStart, half, listWidth)

	rightLLR := make([][]int8, len(paths1))
	for j := range paths1 {
		i := origin1[j]
		ll := make([]int8, half)
		for k := 0; k < half; k++ {
			sign := int8(1)
			if leftBits[j][k] != 0 {
				sign = -1
			}
			ll[k] = madd(llrs[i][k], sign, llrs[i][k+half])
		}
		rightLLR[j] = ll
	}
	paths2, rightBits, origin2 := scRecurse(paths1, rightLLR, frozen, segStart+half, half, listWidth)

	combined := make([][]byte, len(paths2))
	origin := make([]int, len(paths2))
	for j := range paths2 {
		i2 := origin2[j]
		lb := leftBits[i2]
		rb := rightBits[j]
		out := make([]byte, segLen)
		for k := 0; k < half; k++ {
			out[k] = lb[k] ^ rb[k]
			out[half+k] = rb[k]
		}
		combined[j] = out
		origin[j] = origin1[i2]
	}
	return paths2, combined, origin
}

func allFrozenRange(frozen packedBitmap, start, length int) bool {
	for i := start; i < start+length; i++ {
		if frozen.bit(i) == 0 {
			return false
		}
	}
	return true
}

func allInfoRange(frozen packedBitmap, start, length int) bool {
	for i := start; i < start+length; i++ {
		if frozen.bit(i) != 0 {
			return false
		}
	}
	return true
}

// rate0Node handles an all-frozen subtree: every path decides every
// bit 0, paying the usual per-bit penalty.
func rate0Node(paths []*scPath, llrs [][]int8, segStart, segLen int) ([]*scPath, [][]byte, []int) {
	bitsOut := make([][]byte, len(paths))
	origin := make([]int, len(paths))
	for i, p := range paths {
		out := make([]byte, segLen)
		for k := 0; k < segLen; k++ {
			if llrs[i][k] < 0 {
				p.pm = qadd(p.pm, qabs(llrs[i][k]))
			}
			p.bits[segStart+k] = 0
		}
		bitsOut[i] = out
		origin[i] = i
	}
	return paths, bitsOut, origin
}

// rate1Node handles an all-information subtree: every path takes the
// hard decision of each LLR's sign directly, no forking, no penalty
// (a standard fast-node approximation -- the full bit-by-bit
// recursion would fork and immediately re-collapse to the same
// maximum-likelihood hard decision for every bit in this case). The
// hard decisions are the subtree's codeword bits; the path's u-sequence
// for the segment is recovered from them by the (self-inverse) polar
// transform.
func rate1Node(paths []*scPath, llrs [][]int8, segStart, segLen int) ([]*scPath, [][]byte, []int) {
	bitsOut := make([][]byte, len(paths))
	origin := make([]int, len(paths))
	for i, p := range paths {
		out := make([]byte, segLen)
		for k := 0; k < segLen; k++ {
			var b byte
			if llrs[i][k] < 0 {
				b = 1
			}
			out[k] = b
		}
		u := append([]byte(nil), out...)
		polarTransform(u)
		copy(p.bits[segStart:segStart+segLen], u)
		bitsOut[i] = out
		origin[i] = i
	}
	return paths, bitsOut, origin
}

func scLeaf(paths []*scPath, llrs [][]int8, frozen packedBitmap, pos, listWidth int) ([]*scPath, [][]byte, []int) {
	if frozen.bit(pos) != 0 {
		bitsOut := make([][]byte, len(paths))
		origin := make([]int, len(paths))
		for i, p := range paths {
			llr := llrs[i][0]
			if llr < 0 {
				p.pm = qadd(p.pm, qabs(llr))
			}
			p.bits[pos] = 0
			bitsOut[i] = []byte{0}
			origin[i] = i
		}
		return paths, bitsOut, origin
	}

	type cand struct {
		srcIdx int
		bit    byte
		pm     int8
	}
	cands := make([]cand, 0, len(paths)*2)
	for i, p := range paths {
		llr := llrs[i][0]
		for _, u := range []byte{0, 1} {
			pm := p.pm
			predicted := byte(0)
			if llr < 0 {
				predicted = 1
			}
			if predicted != u {
				pm = qadd(pm, qabs(llr))
			}
			cands = append(cands, cand{srcIdx: i, bit: u, pm: pm})
		}
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].pm < cands[b].pm })
	if len(cands) > listWidth {
		cands = cands[:listWidth]
	}

	newPaths := make([]*scPath, len(cands))
	bitsOut := make([][]byte, len(cands))
	origin := make([]int, len(cands))
	for i, c := range cands {
		np := &scPath{bits: append([]byte(nil), paths[c.srcIdx].bits...), pm: c.pm}
		np.bits[pos] = c.bit
		newPaths[i] = np
		bitsOut[i] = []byte{c.bit}
		origin[i] = c.srcIdx
	}
	return newPaths, bitsOut, origin
}
