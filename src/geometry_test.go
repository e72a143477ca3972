package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometryDerivedConstants(t *testing.T) {
	cases := []struct {
		fs      int
		l, g, e int
	}{
		{8000, 1280, 160, 1440},
		{48000, 7680, 960, 8640},
	}
	for _, c := range cases {
		geo := NewGeometry(c.fs)
		assert.Equal(t, c.l, geo.L, "L at %d Hz", c.fs)
		assert.Equal(t, c.g, geo.G, "G at %d Hz", c.fs)
		assert.Equal(t, c.e, geo.E, "E at %d Hz", c.fs)
	}
}

func TestGeometryBinWraps(t *testing.T) {
	geo := NewGeometry(8000)
	assert.Equal(t, 0, geo.bin(0))
	assert.Equal(t, geo.L-1, geo.bin(-1))
	assert.Equal(t, 1, geo.bin(geo.L+1))
}

func TestGeometryCarrierBin(t *testing.T) {
	geo := NewGeometry(8000)
	got := geo.carrierBin(1500)
	want := 1500 * geo.L / 8000
	assert.Equal(t, want, got)
}
