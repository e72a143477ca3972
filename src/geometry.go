package modem

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Symbol geometry derived from the sample rate. Both the
 *		encoder and decoder compute these independently and
 *		must agree bit-for-bit, since bin(c) = (c+L) mod L is
 *		the shared address space every subcarrier position is
 *		expressed in.
 *
 *----------------------------------------------------------------*/

// SupportedSampleRates lists the sample rates this PHY is defined at.
var SupportedSampleRates = [...]int{8000, 16000, 32000, 44100, 48000}

const (
	payCarCnt = 256
	payCarOff = -128

	preambleBits    = 255
	preambleCarOff  = -127
	correlationBits = 127
	correlationOff  = -126
)

// Geometry holds the sample-rate-dependent derived constants.
type Geometry struct {
	Fs int
	L  int // symbol length
	G  int // guard length
	E  int // extended length (L+G)
}

// NewGeometry derives L, G, E for the given sample rate:
// L = floor(1280*Fs/8000), G = L/8, E = L+G.
func NewGeometry(fs int) Geometry {
	l := (1280 * fs) / 8000
	g := l / 8
	return Geometry{Fs: fs, L: l, G: g, E: l + g}
}

// bin maps a carrier index centered at 0 (range roughly [-L/2, L/2))
// to its FFT array position: bin(c) = (c + L) mod L.
func (g Geometry) bin(c int) int {
	b := (c + g.L) % g.L
	if b < 0 {
		b += g.L
	}
	return b
}

// oversampleFactor is the PAPR reducer's oversampling ratio,
// f = floor((32000 + Fs/2) / Fs): 1 at 48 kHz, 2 at 16 kHz, etc.
func (g Geometry) oversampleFactor() int {
	return (32000 + g.Fs/2) / g.Fs
}

// carrierBin converts a carrier frequency in Hz to its rounded bin
// offset: round(carrier_hz * L / Fs).
func (g Geometry) carrierBin(carrierHz float64) int {
	return int(math.Round(carrierHz * float64(g.L) / float64(g.Fs)))
}
