package modem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileValidates(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())
}

func TestLoadProfileFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	contents := "sample_rate: 48000\ncarrier_hz: 2000\nnoise_symbols: 2\nfancy_header: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, p.SampleRate)
	assert.Equal(t, 2000.0, p.CarrierHz)
	assert.Equal(t, 2, p.NoiseSymbols)
	assert.True(t, p.FancyHeader)
}

func TestProfileValidateRejectsBadSampleRate(t *testing.T) {
	p := DefaultProfile()
	p.SampleRate = 11025
	assert.Error(t, p.Validate())
}

func TestProfileValidateRejectsCarrierAboveNyquist(t *testing.T) {
	p := DefaultProfile()
	p.CarrierHz = float64(p.SampleRate)
	assert.Error(t, p.Validate())
}

func TestProfileValidateRejectsNegativeNoiseSymbols(t *testing.T) {
	p := DefaultProfile()
	p.NoiseSymbols = -1
	assert.Error(t, p.Validate())
}
