package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// produceBurst drains an already-Configure'd encoder into one
// contiguous sample slice, stopping before the final "no more data"
// sentinel call (which Produce reports via more == false and never
// carries real symbol content).
func produceBurst(enc *Encoder) []int16 {
	var out []int16
	buf := make([]int16, enc.ExtendedLength())
	for {
		more := enc.Produce(buf)
		if !more {
			break
		}
		out = append(out, buf...)
	}
	return out
}

// runBurst feeds burst through dec one extended_length chunk at a
// time (the natural symbol-aligned consumption discipline) and drives
// Process after every chunk that completes one, returning the final
// Staged metadata and the decoded payload once StatusDONE is reached.
func runBurst(t *testing.T, dec *Decoder, burst []int16, outLen int) ([]byte, Staged, int) {
	t.Helper()
	e := dec.ExtendedLength
	require.Equal(t, 0, len(burst)%e, "test burst must be a whole number of extended_length chunks")

	out := make([]byte, outLen)
	for i := 0; i+e <= len(burst); i += e {
		hit := dec.Feed(burst[i : i+e])
		if !hit {
			continue
		}
		switch dec.Process() {
		case StatusDONE:
			flips := dec.Fetch(out)
			return out, dec.StagedInfo(), flips
		case StatusFAIL, StatusNOPE:
			t.Fatalf("decoder rejected burst at chunk %d", i/e)
		}
	}
	t.Fatal("burst consumed without reaching StatusDONE")
	return nil, Staged{}, 0
}

func TestEndToEndMode16RoundTrip(t *testing.T) {
	const fs = 8000
	const carrierHz = 1500

	enc := NewEncoder(fs)
	enc.Configure(EncoderConfig{
		Payload:   []byte("HELLO"),
		Callsign:  "W1AW",
		CarrierHz: carrierHz,
	})
	burst := produceBurst(enc)

	dec := NewDecoder(fs)
	dec.SetCarrierHz(carrierHz)
	payload, staged, flips := runBurst(t, dec, burst, Mode16DataBits()/8)

	assert.NotEqual(t, -1, flips, "a clean channel should decode successfully (CRC match)")
	assert.Equal(t, Mode16, staged.Mode)
	assert.Equal(t, "W1AW", staged.Callsign)
	require.GreaterOrEqual(t, len(payload), 5)
	assert.Equal(t, "HELLO", string(payload[:5]))
}

func TestEndToEndMode16RoundTripSecondPayload(t *testing.T) {
	const fs = 8000
	const carrierHz = 1500

	enc := NewEncoder(fs)
	enc.Configure(EncoderConfig{
		Payload:   []byte("TEST"),
		Callsign:  "N0CALL",
		CarrierHz: carrierHz,
	})
	burst := produceBurst(enc)

	dec := NewDecoder(fs)
	dec.SetCarrierHz(carrierHz)
	payload, staged, flips := runBurst(t, dec, burst, Mode16DataBits()/8)

	assert.NotEqual(t, -1, flips, "a clean channel should decode successfully (CRC match)")
	assert.Equal(t, Mode16, staged.Mode)
	assert.Equal(t, "N0CALL", staged.Callsign)
	require.GreaterOrEqual(t, len(payload), 4)
	assert.Equal(t, "TEST", string(payload[:4]))
}

func TestEndToEndFs48000RoundTrip(t *testing.T) {
	const fs = 48000
	const carrierHz = 1500

	enc := NewEncoder(fs)
	enc.Configure(EncoderConfig{
		Payload:   []byte("HELLO"),
		Callsign:  "W1AW",
		CarrierHz: carrierHz,
	})
	burst := produceBurst(enc)

	dec := NewDecoder(fs)
	dec.SetCarrierHz(carrierHz)
	payload, staged, flips := runBurst(t, dec, burst, Mode16DataBits()/8)

	assert.NotEqual(t, -1, flips, "a clean channel should decode successfully (CRC match)")
	assert.Equal(t, Mode16, staged.Mode)
	assert.Equal(t, "W1AW", staged.Callsign)
	require.GreaterOrEqual(t, len(payload), 5)
	assert.Equal(t, "HELLO", string(payload[:5]))
}

func TestEndToEndPingHasNoPayloadButSyncsAndPings(t *testing.T) {
	const fs = 8000
	const carrierHz = 1500

	enc := NewEncoder(fs)
	enc.Configure(EncoderConfig{Callsign: "W1AW", CarrierHz: carrierHz})
	burst := produceBurst(enc)

	dec := NewDecoder(fs)
	dec.SetCarrierHz(carrierHz)

	e := dec.ExtendedLength
	require.Equal(t, 0, len(burst)%e)

	var sawPing bool
	for i := 0; i+e <= len(burst); i += e {
		if !dec.Feed(burst[i : i+e]) {
			continue
		}
		if dec.Process() == StatusPING {
			sawPing = true
			break
		}
	}
	assert.True(t, sawPing, "a ping burst should synchronize and report StatusPING")
	assert.Equal(t, "W1AW", dec.StagedInfo().Callsign)
}
