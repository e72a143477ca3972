package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	modem "github.com/n5dsp/ofdmburst/src"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Host CLI wrapping Decoder: reads raw int16 PCM from
 *		stdin in chunks (mono, or interleaved stereo pairs for the
 *		left/right/sum/iq channel modes), feeds it to the streaming
 *		decoder, and prints each decoded burst to stdout as it
 *		completes. No WAV container, no audio capture -- both are
 *		out of scope (spec.md §1 non-goals); a host wires this into
 *		whatever audio path it wants.
 *
 *----------------------------------------------------------------*/

const decodePayloadCap = 256

func main() {
	var (
		sampleFs = pflag.IntP("rate", "r", 8000, "sample rate (8000/16000/32000/44100/48000)")
		carrier  = pflag.Float64P("carrier", "f", 1500, "carrier frequency in Hz")
		profile  = pflag.StringP("profile", "p", "", "YAML profile file (overrides flags if set)")
		channel  = pflag.StringP("channel", "c", "mono", "input channel mode (mono/left/right/sum/iq)")
		verbose  = pflag.BoolP("verbose", "v", false, "debug logging")
	)
	pflag.Parse()

	channelMode, stereo, err := parseChannelMode(*channel)
	if err != nil {
		log.Fatal("invalid channel mode", "err", err)
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := modem.Profile{SampleRate: *sampleFs, CarrierHz: *carrier}
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

	dec := modem.NewDecoder(cfg.SampleRate)
	dec.SetCarrierHz(cfg.CarrierHz)
	dec.SetChannelMode(channelMode)
	dec.SetLogger(func(event, detail string) {
		log.Debug("decoder event", "event", event, "detail", detail)
	})

	framesPerChunk := dec.ExtendedLength
	samplesPerFrame := 1
	if stereo {
		samplesPerFrame = 2
	}

	in := os.Stdin
	chunk := make([]byte, framesPerChunk*samplesPerFrame*2)
	samples := make([]int16, framesPerChunk*samplesPerFrame)
	payload := make([]byte, decodePayloadCap)

	for {
		n, err := io.ReadFull(in, chunk)
		if n > 0 {
			count := n / 2
			for i := 0; i < count; i++ {
				samples[i] = int16(binary.LittleEndian.Uint16(chunk[2*i:]))
			}
			if dec.Feed(samples[:count]) {
				switch status := dec.Process(); status {
				case modem.StatusSYNC, modem.StatusPING:
					info := dec.StagedInfo()
					log.Info("sync", "mode", info.Mode, "callsign", info.Callsign)
				case modem.StatusDONE:
					flips := dec.Fetch(payload)
					if flips < 0 {
						log.Warn("crc failure, discarding burst")
						break
					}
					info := dec.StagedInfo()
					fmt.Printf("%s: %s (bit flips: %d)\n", info.Callsign, trimPayload(payload), flips)
				case modem.StatusFAIL, modem.StatusNOPE:
					// already logged via the diagnostic hook
				}
			}
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.Fatal("reading samples", "err", err)
			}
			break
		}
	}
}

// parseChannelMode maps the --channel flag to a modem.ChannelMode and
// reports whether that mode consumes interleaved stereo frames.
func parseChannelMode(s string) (modem.ChannelMode, bool, error) {
	switch strings.ToLower(s) {
	case "mono":
		return modem.ChannelMono, false, nil
	case "left":
		return modem.ChannelLeft, true, nil
	case "right":
		return modem.ChannelRight, true, nil
	case "sum":
		return modem.ChannelSum, true, nil
	case "iq":
		return modem.ChannelIQ, true, nil
	default:
		return 0, false, fmt.Errorf("unknown channel mode %q (want mono/left/right/sum/iq)", s)
	}
}

func trimPayload(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
