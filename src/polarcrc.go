package modem

/*------------------------------------------------------------------
 *
 * Purpose:	CRC-32-aided path selection: walk the SC-list's surviving
 *		paths best-metric first, re-encode each one's decided
 *		u-sequence (non-systematically) into a codeword, pack that
 *		codeword's non-frozen bits (payload + trailing 32-bit CRC,
 *		the systematic information) to bytes, and accept the first
 *		path whose trailing CRC-32
 *		matches its own payload -- exactly payloadCRC from crc.go,
 *		the same engine the rest of the wire format uses.
 *
 *		Also reports how many bits the accepted path's re-encoded
 *		codeword differs from the hard decision of the received
 *		LLRs -- the number of bit errors the list search actually
 *		corrected, per spec.md §7's signal-quality indicator.
 *
 *----------------------------------------------------------------*/

// PolarCRCResult is the outcome of CRC-aided path selection.
type PolarCRCResult struct {
	Success  bool
	Payload  []byte // data bits, one bit per byte (0/1), CRC stripped
	Rank     int    // index into the path list that was accepted
	BitFlips int    // hamming distance between the received hard decisions and the accepted path's re-encoded codeword
}

// hardDecisions converts quantized channel LLRs into hard bit
// decisions, using the same sign convention scLeaf penalizes against:
// a non-negative LLR favors bit 0, a negative LLR favors bit 1.
func hardDecisions(llr []int8) []byte {
	out := make([]byte, len(llr))
	for i, v := range llr {
		if v < 0 {
			out[i] = 1
		}
	}
	return out
}

// extractInfo pulls the non-frozen bit positions of a full N-bit
// sequence (a decoded path's u-sequence or a codeword) into order, one
// bit per byte.
func extractInfo(bits []byte, frozen packedBitmap, n int) []byte {
	info := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		if frozen.bit(i) == 0 {
			info = append(info, bits[i])
		}
	}
	return info
}

// packBits packs a one-bit-per-byte (MSB-first) sequence into bytes,
// zero-padding the final byte if not a multiple of 8.
func packBits(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i>>3] |= 0x80 >> uint(i&7)
		}
	}
	return out
}

// PolarCRCSelect picks the first SC-list path (in best-metric order)
// whose re-encoded codeword carries, in its last 32 non-frozen bits, a
// valid CRC-32 over the preceding non-frozen payload bits. code holds the quantized channel LLRs the paths were
// decoded from; BitFlips is the Hamming distance between their hard
// decisions and the accepted path re-encoded back to a full codeword.
func PolarCRCSelect(paths []*scPath, code []int8, frozen packedBitmap, n int) PolarCRCResult {
	if len(paths) == 0 {
		return PolarCRCResult{}
	}
	hard := hardDecisions(code)

	for rank, p := range paths {
		codeword := PolarEncode(extractInfo(p.bits, frozen, n), frozen, n)
		info := extractInfo(codeword, frozen, n)
		if len(info) < 32 {
			continue
		}
		payload := info[:len(info)-32]
		crcBits := info[len(info)-32:]
		got := payloadCRC.Checksum(packBits(payload))
		want := uint32(0)
		for _, b := range crcBits {
			want = (want << 1) | uint32(b)
		}
		if got != want {
			continue
		}
		flips := 0
		for i := range codeword {
			if codeword[i] != hard[i] {
				flips++
			}
		}
		return PolarCRCResult{Success: true, Payload: payload, Rank: rank, BitFlips: flips}
	}
	return PolarCRCResult{}
}
