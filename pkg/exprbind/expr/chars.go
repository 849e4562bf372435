package expr

// identifierStart lists the code points that may start an identifier as
// [start, end) pairs. A pair with end 0 is a single code point.
var identifierStart = [...]rune{
	0x24, 0, 0x41, 0x5B, 0x5F, 0, 0x61, 0x7B, 0xAA, 0, 0xBA, 0, 0xC0, 0xD7, 0xD8, 0xF7, 0xF8, 0x2B9,
	0x2E0, 0x2E5, 0x1D00, 0x1D26, 0x1D2C, 0x1D5D, 0x1D62, 0x1D66, 0x1D6B, 0x1D78, 0x1D79, 0x1DBF,
	0x1E00, 0x1F00, 0x2071, 0, 0x207F, 0, 0x2090, 0x209D, 0x212A, 0x212C, 0x2132, 0, 0x214E, 0,
	0x2160, 0x2189, 0x2C60, 0x2C80, 0xA722, 0xA788, 0xA78B, 0xA7AF, 0xA7B0, 0xA7B8, 0xA7F7, 0xA800,
	0xAB30, 0xAB5B, 0xAB5C, 0xAB65, 0xFB00, 0xFB07, 0xFF21, 0xFF3B, 0xFF41, 0xFF5B,
}

// whitespace lists skipped code points in the same encoding.
var whitespace = [...]rune{0, 0x21, 0x7F, 0xA1}

const charTableSize = 0x10000

type charSet [charTableSize / 64]uint64

func (s *charSet) has(r rune) bool {
	return r >= 0 && r < charTableSize && s[r>>6]&(1<<(uint(r)&63)) != 0
}

func (s *charSet) add(r rune) {
	s[r>>6] |= 1 << (uint(r) & 63)
}

func (s *charSet) addRanges(ranges []rune) {
	for i := 0; i+1 < len(ranges); i += 2 {
		start, end := ranges[i], ranges[i+1]
		if end == 0 {
			end = start + 1
		}
		for r := start; r < end; r++ {
			s.add(r)
		}
	}
}

var (
	idStart charSet
	idPart  charSet
)

func init() {
	idStart.addRanges(identifierStart[:])
	idPart = idStart
	for r := rune('0'); r <= '9'; r++ {
		idPart.add(r)
	}
}

func isIdentifierStart(r rune) bool { return idStart.has(r) }

func isIdentifierPart(r rune) bool { return idPart.has(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
