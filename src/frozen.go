package modem

/*------------------------------------------------------------------
 *
 * Purpose:	The three frozen-bit tables for N=2048, one per payload
 *		mode: F_1392 (mode 14, 1360 data + 32 CRC info bits),
 *		F_1056 (mode 15, 1024+32), F_712 (mode 16, 680+32). Named
 *		for their information-bit count (data bits + the 32-bit
 *		CRC), matching data_bits(mode) + 32 + frozen(table) = N.
 *
 *		The reliability ordering is built once at package init
 *		via Arikan's standard Bhattacharyya-parameter recursion
 *		for a binary erasure channel design point: the N=1
 *		channel starts at a fixed erasure probability, and each
 *		polarization stage turns one channel into a worse one
 *		(Z_new = 2Z - Z^2) and a better one (Z_new = Z^2). The
 *		n - infoCount positions with the highest resulting Z
 *		(least reliable) are frozen; this is the textbook
 *		construction method and is the closest faithful stand-in
 *		available without the literal reference bit tables (not
 *		present anywhere in the retrieval pack -- see DESIGN.md).
 *
 *----------------------------------------------------------------*/

const polarN = 2048
const polarLogN = 11

// designErasureProb is the BEC design point used to rank channel
// reliability for the frozen-set construction.
const designErasureProb = 0.5

// bhattacharyyaZ computes the N Bhattacharyya parameters for the
// polarized BEC sub-channels, indexed in natural (non-bit-reversed)
// order matching the butterfly recursion used by Encode/Decode.
func bhattacharyyaZ(n int) []float64 {
	z := make([]float64, n)
	z[0] = designErasureProb
	for size := 1; size < n; size *= 2 {
		for i := size - 1; i >= 0; i-- {
			zi := z[i]
			z[2*i] = 2*zi - zi*zi
			z[2*i+1] = zi * zi
		}
	}
	return z
}

// buildFrozenTable returns a packed bitmap of length n where bit i is
// 1 iff polar sub-channel i is frozen, selecting the n - infoCount
// least reliable (highest Z) positions.
func buildFrozenTable(n, infoCount int) packedBitmap {
	z := bhattacharyyaZ(n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Sort descending by Z (least reliable first); the bottom
	// infoCount entries (lowest Z, most reliable) become info bits.
	sortByKeyDesc(idx, z)

	frozen := make([]byte, n)
	for i := range frozen {
		frozen[i] = 1
	}
	for _, i := range idx[n-infoCount:] {
		frozen[i] = 0
	}

	words := make([]uint32, (n+31)/32)
	for i, f := range frozen {
		if f != 0 {
			words[i/32] |= 1 << uint(i%32)
		}
	}
	return packedBitmap(words)
}

// sortByKeyDesc sorts idx in place so that key[idx[i]] is descending.
func sortByKeyDesc(idx []int, key []float64) {
	// insertion sort would be O(n^2) at n=2048 invoked 3 times at
	// init; use an in-place quicksort instead (not stable: the order
	// of positions with equal Z is not defined).
	quickSortDesc(idx, key, 0, len(idx)-1)
}

func quickSortDesc(idx []int, key []float64, lo, hi int) {
	for lo < hi {
		p := partitionDesc(idx, key, lo, hi)
		if p-lo < hi-p {
			quickSortDesc(idx, key, lo, p-1)
			lo = p + 1
		} else {
			quickSortDesc(idx, key, p+1, hi)
			hi = p - 1
		}
	}
}

func partitionDesc(idx []int, key []float64, lo, hi int) int {
	pivot := key[idx[hi]]
	i := lo
	for j := lo; j < hi; j++ {
		if key[idx[j]] > pivot {
			idx[i], idx[j] = idx[j], idx[i]
			i++
		}
	}
	idx[i], idx[hi] = idx[hi], idx[i]
	return i
}

var (
	frozen712  = buildFrozenTable(polarN, 712)
	frozen1056 = buildFrozenTable(polarN, 1056)
	frozen1392 = buildFrozenTable(polarN, 1392)
)

// FrozenTable returns the frozen bitmap for one of the three wire
// info-bit sizes (712, 1056, 1392), or nil if unrecognized.
func FrozenTable(infoBits int) packedBitmap {
	switch infoBits {
	case 712:
		return frozen712
	case 1056:
		return frozen1056
	case 1392:
		return frozen1392
	default:
		return nil
	}
}
