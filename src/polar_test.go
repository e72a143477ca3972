package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrozenTableInfoCounts(t *testing.T) {
	cases := []struct {
		info int
	}{{712}, {1056}, {1392}}
	for _, c := range cases {
		table := FrozenTable(c.info)
		require.NotNil(t, table)
		var ones int
		for i := 0; i < polarN; i++ {
			if table.bit(i) == 0 {
				ones++
			}
		}
		assert.Equal(t, c.info, ones, "info-bit count for F_%d", c.info)
	}
}

func TestFrozenTableUnknownSizeNil(t *testing.T) {
	assert.Nil(t, FrozenTable(99))
}

func TestPolarEncodeSystematicPreservesInfoBits(t *testing.T) {
	frozen := FrozenTable(712)
	info := randomInfoBits(712, 3)
	cw := PolarEncodeSystematic(info, frozen, polarN)
	require.Len(t, cw, polarN)

	idx := 0
	for i := 0; i < polarN; i++ {
		if frozen.bit(i) == 0 {
			assert.Equal(t, info[idx], cw[i], "systematic bit mismatch at position %d", i)
			idx++
		}
	}
}

func TestPolarTransformIsInvolution(t *testing.T) {
	bits := randomInfoBits(64, 11)
	work := append([]byte(nil), bits...)
	polarTransform(work)
	polarTransform(work)
	assert.Equal(t, bits, work)
}

// TestPolarListDecodeNoiselessRoundTrip re-encodes a payload, converts
// the systematic codeword straight to saturated LLRs (no channel in
// between), and checks the CRC-aided list decode recovers the exact
// information bits -- the noiseless re-encode identity from the
// wire-format test matrix.
func TestPolarListDecodeNoiselessRoundTrip(t *testing.T) {
	frozen := FrozenTable(712)
	dataBits := 680

	payload := randomInfoBits(dataBits, 21)
	crc := payloadCRC.Checksum(packBits(payload))

	info := make([]byte, dataBits+32)
	copy(info, payload)
	for i := 0; i < 32; i++ {
		info[dataBits+i] = byte((crc >> uint(31-i)) & 1)
	}

	cw := PolarEncodeSystematic(info, frozen, polarN)

	llr := make([]int8, polarN)
	for i, b := range cw {
		if b == 0 {
			llr[i] = 100
		} else {
			llr[i] = -100
		}
	}

	paths := PolarListDecode(llr, frozen, polarN, DefaultListWidth)
	result := PolarCRCSelect(paths, llr, frozen, polarN)
	require.True(t, result.Success)
	assert.Equal(t, payload, result.Payload)
	assert.Equal(t, 0, result.BitFlips)
}
