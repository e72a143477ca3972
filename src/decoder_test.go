package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoderExtendedLengthMatchesGeometry(t *testing.T) {
	dec := NewDecoder(8000)
	geo := NewGeometry(8000)
	assert.Equal(t, geo.E, dec.ExtendedLength)
}

func TestDecoderSetCarrierHzMatchesGeometry(t *testing.T) {
	dec := NewDecoder(8000)
	dec.SetCarrierHz(1500)
	geo := NewGeometry(8000)
	assert.Equal(t, geo.carrierBin(1500), dec.carrierBin)
}

func TestDecoderSilenceCompletesChunkButStaysIdle(t *testing.T) {
	dec := NewDecoder(8000)
	dec.SetCarrierHz(1500)
	silence := make([]int16, 2*dec.ExtendedLength)
	hit := dec.Feed(silence)
	assert.True(t, hit, "a full extended-length chunk of silence should still complete the buffered-count accounting")
	status := dec.Process()
	assert.Equal(t, StatusOK, status, "silence alone should never report SYNC/DONE")
}

func TestDecoderFetchFailsWhenNoPathPassesCRC(t *testing.T) {
	dec := NewDecoder(8000)
	dec.operationMode = Mode16
	for i := range dec.code {
		dec.code[i] = -127
	}
	out := make([]byte, 32)
	flips := dec.Fetch(out)
	assert.Equal(t, -1, flips)
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}

func TestDecoderLoggerReceivesTransitions(t *testing.T) {
	dec := NewDecoder(8000)
	var events []string
	dec.SetLogger(func(event, detail string) {
		events = append(events, event)
	})
	dec.log("SYNC", "W1AW")
	require.Len(t, events, 1)
	assert.Equal(t, "SYNC", events[0])
}
