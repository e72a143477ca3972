package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Bijective base-37 callsign codec. Alphabet is space,
 *		'0'-'9', 'A'-'Z' (37 symbols), encoded/decoded as an
 *		unsigned integer the same way the teacher's base91.go
 *		telemetry digit codec turns a byte string into a single
 *		bounded integer -- same positional-weight idiom, different
 *		alphabet and width.
 *
 *----------------------------------------------------------------*/

const base37Alphabet = " 0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const base37FieldWidth = 9

// base37Pow is 37^9, the exclusive upper bound on an encoded value
// (MaxBase37Value = base37Pow - 1).
var base37Pow = func() uint64 {
	v := uint64(1)
	for i := 0; i < base37FieldWidth; i++ {
		v *= uint64(len(base37Alphabet))
	}
	return v
}()

// MaxBase37Value is the largest value a nine-character callsign field
// can hold.
var MaxBase37Value = base37Pow - 1

// base37Index returns the alphabet position of c. Per spec.md §4.10,
// any character outside base37Alphabet maps to the space position (0)
// rather than failing the whole field.
func base37Index(c byte) int {
	for i := 0; i < len(base37Alphabet); i++ {
		if base37Alphabet[i] == c {
			return i
		}
	}
	return 0
}

// EncodeBase37 encodes a callsign of up to base37FieldWidth (9)
// characters (from base37Alphabet, case-insensitive) into a single
// bounded integer, space-padded on the right to the fixed field
// width. Nine characters covers a callsign plus an SSID-style suffix
// (e.g. "N5DSP 12 ") in the one base-37 field spec.md's preamble
// carries. Characters outside base37Alphabet are blanked to space
// individually rather than failing the whole field; only a call
// longer than the field width is rejected.
func EncodeBase37(call string) (uint64, error) {
	if len(call) > base37FieldWidth {
		return 0, errInvalidCallsign
	}
	padded := make([]byte, base37FieldWidth)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, []byte(upperASCII(call)))

	var v uint64
	for _, c := range padded {
		v = v*uint64(len(base37Alphabet)) + uint64(base37Index(c))
	}
	return v, nil
}

// DecodeBase37 reverses EncodeBase37, trimming trailing pad spaces.
func DecodeBase37(v uint64) (string, error) {
	if v >= base37Pow {
		return "", errInvalidCallsign
	}
	buf := make([]byte, base37FieldWidth)
	for i := base37FieldWidth - 1; i >= 0; i-- {
		buf[i] = base37Alphabet[v%uint64(len(base37Alphabet))]
		v /= uint64(len(base37Alphabet))
	}
	end := len(buf)
	for end > 0 && buf[end-1] == ' ' {
		end--
	}
	return string(buf[:end]), nil
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

var errInvalidCallsign = errInvalid("modem: invalid callsign field")

type errInvalid string

func (e errInvalid) Error() string { return string(e) }
