package modem

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Streaming OFDM encoder. Configure once per burst, then
 *		pull one extended-length symbol at a time via Produce
 *		until it reports done, mirroring the teacher's
 *		hdlc_send.go/xmit.go streaming send path (queue the whole
 *		frame once, then emit piecemeal on demand) rather than
 *		building and returning one giant buffer.
 *
 *		countDown walks 5 -> 0: noise symbols then the first
 *		Schmidl-Cox symbol (5), the second S-C symbol (4), the
 *		preamble (3), the four payload symbols (2), the optional
 *		fancy header plus trailing silence (1), done (0).
 *
 *----------------------------------------------------------------*/

// EncoderConfig is a full per-burst configuration, reset via Configure.
type EncoderConfig struct {
	Payload      []byte // up to maxPayloadBytes, UTF-8 text
	Callsign     string
	CarrierHz    float64
	NoiseSymbols int
	FancyHeader  bool
}

const maxPayloadBytes = 170

// Mode constants, matching spec.md's fixed mode numbers.
const (
	ModePing = 0
	Mode16   = 16 // dataBits = 680, frozen table F_712
	Mode15   = 15 // dataBits = 1024, frozen table F_1056
	Mode14   = 14 // dataBits = 1360, frozen table F_1392
)

func dataBitsForMode(mode int) int {
	switch mode {
	case Mode14:
		return 1360
	case Mode15:
		return 1024
	case Mode16:
		return 680
	default:
		return 0
	}
}

func frozenTableForMode(mode int) packedBitmap {
	switch mode {
	case Mode14:
		return FrozenTable(1392)
	case Mode15:
		return FrozenTable(1056)
	case Mode16:
		return FrozenTable(712)
	default:
		return nil
	}
}

// modeForLength picks the smallest mode whose data_bits/8 (byte
// capacity) covers n bytes of payload, 0 if n == 0.
func modeForLength(n int) int {
	switch {
	case n == 0:
		return ModePing
	case n <= Mode16DataBits()/8:
		return Mode16
	case n <= Mode15DataBits()/8:
		return Mode15
	default:
		return Mode14
	}
}

func Mode16DataBits() int { return dataBitsForMode(Mode16) }
func Mode15DataBits() int { return dataBitsForMode(Mode15) }

// Encoder produces one OFDM burst's worth of extended-length symbols.
type Encoder struct {
	geo Geometry

	countDown      int
	noiseRemaining int
	symbolNumber   int // 0..3 for payload, -1 before first payload symbol
	fancyRemaining int
	silenced       bool

	mode      int
	carrier   int // carrier bin offset
	code      []byte // 2048 polar-coded bits, NRZ as 0/1 (0 -> +1, 1 -> -1)
	preamble  []byte // 255 BCH-coded bits

	noiseMLS      *MLS
	preambleMLS   *MLS
	correlationMLS *MLS

	prevTail []float32 // previous symbol's trailing G samples, for crossfade
	prevBody []cf32    // previous payload symbol's frequency bins (differential ref)
}

// NewEncoder builds an encoder for the given sample rate.
func NewEncoder(fs int) *Encoder {
	return &Encoder{geo: NewGeometry(fs)}
}

// Configure resets the encoder for a new burst. Malformed input is
// resolved silently: callsign is truncated to 9 characters, payload
// beyond maxPayloadBytes is truncated, carrier frequency is wrapped
// into the supported bin range, and mode is deduced from payload
// length.
func (e *Encoder) Configure(cfg EncoderConfig) {
	payload := cfg.Payload
	if len(payload) > maxPayloadBytes {
		payload = payload[:maxPayloadBytes]
	}
	call := cfg.Callsign
	if len(call) > base37FieldWidth {
		call = call[:base37FieldWidth]
	}

	e.mode = modeForLength(len(payload))
	e.carrier = e.geo.carrierBin(cfg.CarrierHz)
	e.countDown = 5
	e.noiseRemaining = cfg.NoiseSymbols
	e.symbolNumber = -1
	e.fancyRemaining = 0
	if cfg.FancyHeader {
		e.fancyRemaining = 11
	}
	e.silenced = false
	e.prevTail = nil
	e.prevBody = nil

	e.noiseMLS = NewMLS(noiseMLSPoly)
	e.preambleMLS = NewMLS(preambleMLSPoly)
	e.correlationMLS = NewMLS(correlationMLSPoly)

	e.preamble = e.buildPreamble(e.mode, call)
	e.code = e.buildPayloadCode(e.mode, payload)
}

// buildPreamble packs mode(8) + base37(callsign)(47) + CRC16(16) into
// 71 info bits and BCH-encodes them.
func (e *Encoder) buildPreamble(mode int, call string) []byte {
	callVal, err := EncodeBase37(call)
	if err != nil {
		callVal = 0
	}
	const metaBits = 55
	meta := make([]byte, metaBits)
	for i := 0; i < 8; i++ {
		meta[i] = byte((mode >> uint(7-i)) & 1)
	}
	for i := 0; i < 47; i++ {
		meta[8+i] = byte((callVal >> uint(46-i)) & 1)
	}
	crc := preambleCRC.Checksum(packBits(meta))

	info := make([]byte, bchK)
	copy(info, meta)
	for i := 0; i < 16; i++ {
		info[metaBits+i] = byte((crc >> uint(15-i)) & 1)
	}
	return BCHEncode(info)
}

// buildPayloadCode scrambles and CRC-protects the payload, then polar
// encodes (systematic) against the mode's frozen table.
func (e *Encoder) buildPayloadCode(mode int, payload []byte) []byte {
	if mode == ModePing {
		return nil
	}
	dataBits := dataBitsForMode(mode)
	frozen := frozenTableForMode(mode)

	buf := make([]byte, maxPayloadBytes)
	copy(buf, payload)
	scrambled := buf[:dataBits/8]
	ScramblePayload(scrambled, DefaultScramblerSeed)
	crc := payloadCRC.Checksum(scrambled)

	info := make([]byte, dataBits+32)
	for i, b := range scrambled {
		for bit := 0; bit < 8; bit++ {
			info[i*8+bit] = (b >> uint(7-bit)) & 1
		}
	}
	for i := 0; i < 32; i++ {
		info[dataBits+i] = byte((crc >> uint(31-i)) & 1)
	}
	return PolarEncodeSystematic(info, frozen, polarN)
}

// Produce fills out (length extended_length) with the next symbol's
// samples and reports whether more symbols remain.
func (e *Encoder) Produce(out []int16) bool {
	if e.countDown <= 0 {
		for i := range out {
			out[i] = 0
		}
		return false
	}

	switch e.countDown {
	case 5:
		if e.noiseRemaining > 0 {
			e.emitNoise(out)
			e.noiseRemaining--
			return true
		}
		e.emitCorrelation(out)
		e.countDown = 4
		return true
	case 4:
		e.emitCorrelation(out)
		e.countDown = 3
		return true
	case 3:
		e.emitPreamble(out)
		if e.mode == ModePing {
			e.countDown = 1
		} else {
			e.countDown = 2
		}
		return true
	case 2:
		e.symbolNumber++
		e.emitPayload(out, e.symbolNumber)
		if e.symbolNumber >= 3 {
			e.countDown = 1
		}
		return true
	case 1:
		if e.fancyRemaining > 0 {
			e.emitFancy(out)
			e.fancyRemaining--
			return true
		}
		if !e.silenced {
			e.emitSilence(out)
			e.silenced = true
			e.countDown = 0
			return true
		}
		e.countDown = 0
	}
	for i := range out {
		out[i] = 0
	}
	return false
}

// freqSymbol allocates a length-L frequency vector and positions bins
// relative to the carrier via Geometry.bin.
func (e *Encoder) freqSymbol() []cf32 {
	return make([]cf32, e.geo.L)
}

func (e *Encoder) setBin(freq []cf32, offset int, v cf32) {
	freq[e.geo.bin(e.carrier+offset)] = v
}

func (e *Encoder) emitCorrelation(out []int16) {
	freq := e.freqSymbol()
	e.correlationMLS.Reset()
	for i := 0; i < correlationBits; i++ {
		bit := e.correlationMLS.Next()
		offset := correlationOff + 2*i
		v := float32(1)
		if bit != 0 {
			v = -1
		}
		e.setBin(freq, offset, cf32{re: v, im: 0})
	}
	active := func(bin int) bool {
		rel := e.relativeOffset(bin)
		return rel >= correlationOff && rel <= correlationOff+2*(correlationBits-1) && (rel-correlationOff)%2 == 0
	}
	e.emitSymbol(freq, active, out)
}

func (e *Encoder) emitPreamble(out []int16) {
	freq := e.freqSymbol()
	e.preambleMLS.Reset()
	prev := float32(1)
	for i := 0; i < preambleBits; i++ {
		scram := byte(e.preambleMLS.Next())
		bit := e.preamble[i] ^ scram
		v := float32(1)
		if bit != 0 {
			v = -1
		}
		cur := v * prev // differential BPSK
		e.setBin(freq, preambleCarOff+i, cf32{re: cur, im: 0})
		prev = cur
	}
	active := func(bin int) bool {
		rel := e.relativeOffset(bin)
		return rel >= preambleCarOff && rel < preambleCarOff+preambleBits
	}
	e.emitSymbol(freq, active, out)
}

func (e *Encoder) emitPayload(out []int16, sym int) {
	freq := e.freqSymbol()
	cur := make([]cf32, payCarCnt)
	for i := 0; i < payCarCnt; i++ {
		b0 := e.code[2*(sym*payCarCnt+i)]
		b1 := e.code[2*(sym*payCarCnt+i)+1]
		sym4 := qpskMap(b0, b1)
		var prevSym cf32
		if e.prevBody != nil {
			prevSym = e.prevBody[i]
		} else {
			prevSym = cf32{re: 1, im: 0}
		}
		v := sym4.mul(prevSym)
		cur[i] = v
		e.setBin(freq, payCarOff+i, v)
	}
	e.prevBody = cur
	active := func(bin int) bool {
		rel := e.relativeOffset(bin)
		return rel >= payCarOff && rel < payCarOff+payCarCnt
	}
	e.emitSymbol(freq, active, out)
}

// qpskMap maps two code bits (0/1, NRZ +1/-1 convention: 0 -> +1, 1 ->
// -1) to a unit QPSK constellation point.
func qpskMap(b0, b1 byte) cf32 {
	re := float32(1)
	if b0 != 0 {
		re = -1
	}
	im := float32(1)
	if b1 != 0 {
		im = -1
	}
	const invSqrt2 = 0.70710678
	return cf32{re: re * invSqrt2, im: im * invSqrt2}
}

func (e *Encoder) emitNoise(out []int16) {
	freq := e.freqSymbol()
	e.noiseMLS.Reset()
	for i := 0; i < e.geo.L; i++ {
		bit := e.noiseMLS.Next()
		v := float32(0.3)
		if bit != 0 {
			v = -0.3
		}
		freq[i] = cf32{re: v, im: 0}
	}
	active := func(bin int) bool { return true }
	e.emitSymbol(freq, active, out)
}

// emitFancy emits the fancy-header slot as a symbol with every carrier
// inactive (an empty symbol); no callsign bitmap is rendered into it.
// The decoder never looks at it.
func (e *Encoder) emitFancy(out []int16) {
	freq := e.freqSymbol()
	e.emitSymbol(freq, func(int) bool { return false }, out)
}

func (e *Encoder) emitSilence(out []int16) {
	for i := range out {
		out[i] = 0
	}
	e.prevTail = nil
}

// relativeOffset converts an absolute FFT bin back to its
// carrier-relative offset, inverting Geometry.bin for the symmetric
// range this encoder populates.
func (e *Encoder) relativeOffset(bin int) int {
	rel := bin - e.carrier
	half := e.geo.L / 2
	for rel >= half {
		rel -= e.geo.L
	}
	for rel < -half {
		rel += e.geo.L
	}
	return rel
}

// emitSymbol runs PAPR reduction, inverse-transforms to time domain,
// scales, and guard-crossfades into the caller's int16 buffer.
func (e *Encoder) emitSymbol(freq []cf32, active func(bin int) bool, out []int16) {
	reduced := reducePAPR(freq, e.geo.oversampleFactor(), active)
	td := IFFT(reduced)

	// IFFT already applies the 1/L normalization; spec.md's
	// "scale by 1/sqrt(8L)" is the remaining factor applied directly
	// on top of that.
	scale := float32(1 / math.Sqrt(float64(8*e.geo.L)))
	body := make([]float32, e.geo.L)
	for i, c := range td {
		body[i] = c.re * scale
	}

	g := e.geo.G
	l := e.geo.L
	guard := make([]float32, g)
	copy(guard, body[l-g:l])

	crossLen := g / 2
	for i := 0; i < g; i++ {
		v := guard[i]
		if i < crossLen && e.prevTail != nil {
			w := 0.5 - 0.5*float32(math.Cos(math.Pi*float64(i)/float64(crossLen)))
			v = e.prevTail[i]*(1-w) + guard[i]*w
		}
		out[i] = toInt16(v)
	}
	for i := 0; i < l; i++ {
		out[g+i] = toInt16(body[i])
	}

	e.prevTail = guard
}

func toInt16(v float32) int16 {
	x := math.Round(float64(v) * 32767)
	if x > 32767 {
		x = 32767
	}
	if x < -32767 {
		x = -32767
	}
	return int16(x)
}

// ExtendedLength returns E = L + G for this encoder's sample rate.
func (e *Encoder) ExtendedLength() int { return e.geo.E }
