package modem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Purpose:	YAML-backed burst profile: the handful of knobs this PHY
 *		exposes beyond the payload bytes themselves (sample rate,
 *		carrier frequency, noise-symbol padding, fancy-header
 *		toggle). Parsed, defaulted, and validated the way the
 *		teacher's config.go handles its much larger settings
 *		surface, scoped down to what an OFDM burst actually needs.
 *
 *----------------------------------------------------------------*/

// Profile is the encoder/decoder configuration loaded from YAML.
type Profile struct {
	SampleRate   int     `yaml:"sample_rate"`
	CarrierHz    float64 `yaml:"carrier_hz"`
	NoiseSymbols int     `yaml:"noise_symbols"`
	FancyHeader  bool    `yaml:"fancy_header"`
}

// DefaultProfile matches spec.md's end-to-end scenario defaults.
func DefaultProfile() Profile {
	return Profile{
		SampleRate:   8000,
		CarrierHz:    1500,
		NoiseSymbols: 0,
		FancyHeader:  false,
	}
}

// LoadProfile reads and validates a YAML profile from path, filling
// in DefaultProfile's values for any key the YAML omits (a key given
// explicitly as zero stays zero).
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("modem: reading profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("modem: parsing profile: %w", err)
	}
	return p, p.Validate()
}

// Validate checks the profile against the PHY's supported sample
// rates and Nyquist-bounded carrier frequency.
func (p Profile) Validate() error {
	ok := false
	for _, fs := range SupportedSampleRates {
		if p.SampleRate == fs {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("modem: unsupported sample rate %d", p.SampleRate)
	}
	if p.CarrierHz <= 0 || p.CarrierHz >= float64(p.SampleRate)/2 {
		return fmt.Errorf("modem: carrier %.1f Hz out of Nyquist range for %d Hz", p.CarrierHz, p.SampleRate)
	}
	if p.NoiseSymbols < 0 {
		return fmt.Errorf("modem: negative noise symbol count")
	}
	return nil
}
