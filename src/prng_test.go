package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorshift32NoDuplicatesIn1000(t *testing.T) {
	x := NewXorshift32(1)
	seen := make(map[uint32]bool, 1000)
	for i := 0; i < 1000; i++ {
		v := x.Next()
		assert.False(t, seen[v], "duplicate value %d at step %d", v, i)
		seen[v] = true
	}
}

func TestXorshift32HighBitDistribution(t *testing.T) {
	x := NewXorshift32(1)
	var ones int
	const n = 10000
	for i := 0; i < n; i++ {
		v := x.Next()
		if v&(1<<31) != 0 {
			ones++
		}
	}
	assert.GreaterOrEqual(t, ones, 4000)
	assert.LessOrEqual(t, ones, 6000)
}

func TestXorshift32ZeroSeedReplaced(t *testing.T) {
	x := NewXorshift32(0)
	assert.NotEqual(t, uint32(0), x.Next())
}

func TestScramblePayloadIsInvolution(t *testing.T) {
	orig := []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG")
	buf := append([]byte(nil), orig...)
	ScramblePayload(buf, DefaultScramblerSeed)
	assert.NotEqual(t, orig, buf)
	ScramblePayload(buf, DefaultScramblerSeed)
	assert.Equal(t, orig, buf)
}
