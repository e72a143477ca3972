package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCRC16Deterministic(t *testing.T) {
	data := []byte("HELLO WORLD")
	a := preambleCRC.Checksum(data)
	b := preambleCRC.Checksum(data)
	assert.Equal(t, a, b)
}

func TestCRC32Deterministic(t *testing.T) {
	data := []byte("HELLO WORLD")
	a := payloadCRC.Checksum(data)
	b := payloadCRC.Checksum(data)
	assert.Equal(t, a, b)
}

func TestCRC16DetectsSingleBitFlip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "data")
		idx := rapid.IntRange(0, len(data)-1).Draw(t, "idx")
		bit := rapid.IntRange(0, 7).Draw(t, "bit")

		want := preambleCRC.Checksum(data)
		corrupted := append([]byte(nil), data...)
		corrupted[idx] ^= 1 << uint(bit)
		got := preambleCRC.Checksum(corrupted)
		assert.NotEqual(t, want, got, "single-bit corruption should change the CRC-16")
	})
}

func TestCRC32DetectsSingleBitFlip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "data")
		idx := rapid.IntRange(0, len(data)-1).Draw(t, "idx")
		bit := rapid.IntRange(0, 7).Draw(t, "bit")

		want := payloadCRC.Checksum(data)
		corrupted := append([]byte(nil), data...)
		corrupted[idx] ^= 1 << uint(bit)
		got := payloadCRC.Checksum(corrupted)
		assert.NotEqual(t, want, got, "single-bit corruption should change the CRC-32")
	})
}
