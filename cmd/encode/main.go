package main

import (
	"encoding/binary"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	modem "github.com/n5dsp/ofdmburst/src"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Host CLI wrapping Encoder: reads a text payload and
 *		callsign from flags, writes raw interleaved mono int16 PCM
 *		to stdout. No WAV container, no audio device I/O -- both
 *		are explicitly out of scope (spec.md §1 non-goals); a
 *		host wires this into whatever audio path it wants.
 *
 *----------------------------------------------------------------*/

func main() {
	var (
		text      = pflag.StringP("text", "t", "", "payload text (<=170 bytes)")
		callsign  = pflag.StringP("callsign", "c", "", "callsign (<=9 chars)")
		sampleFs  = pflag.IntP("rate", "r", 8000, "sample rate (8000/16000/32000/44100/48000)")
		carrier   = pflag.Float64P("carrier", "f", 1500, "carrier frequency in Hz")
		noiseSyms = pflag.IntP("noise", "n", 0, "leading noise symbol count")
		fancy     = pflag.Bool("fancy-header", false, "emit the optional fancy header")
		profile   = pflag.StringP("profile", "p", "", "YAML profile file (overrides flags if set)")
		verbose   = pflag.BoolP("verbose", "v", false, "debug logging")
	)
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := modem.Profile{SampleRate: *sampleFs, CarrierHz: *carrier, NoiseSymbols: *noiseSyms, FancyHeader: *fancy}
	if *profile != "" {
		loaded, err := modem.LoadProfile(*profile)
		if err != nil {
			log.Fatal("loading profile", "err", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	enc := modem.NewEncoder(cfg.SampleRate)
	enc.Configure(modem.EncoderConfig{
		Payload:      []byte(*text),
		Callsign:     *callsign,
		CarrierHz:    cfg.CarrierHz,
		NoiseSymbols: cfg.NoiseSymbols,
		FancyHeader:  cfg.FancyHeader,
	})

	out := os.Stdout
	buf := make([]int16, enc.ExtendedLength())
	wire := make([]byte, len(buf)*2)

	symbols := 0
	for {
		more := enc.Produce(buf)
		for i, s := range buf {
			binary.LittleEndian.PutUint16(wire[2*i:], uint16(s))
		}
		if _, err := out.Write(wire); err != nil {
			log.Fatal("writing samples", "err", err)
		}
		symbols++
		if !more {
			break
		}
	}
	log.Debug("encode complete", "symbols", symbols)
}
