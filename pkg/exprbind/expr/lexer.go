package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// scanFunc scans one lexeme starting at the current character. It returns
// tokNone when the lexeme produces no token.
type scanFunc func(p *parserState) token

var charScanners [charTableSize]scanFunc

func init() {
	for i := 0; i+1 < len(whitespace); i += 2 {
		for r := whitespace[i]; r < whitespace[i+1]; r++ {
			charScanners[r] = scanSkip
		}
	}
	for r := rune(0); r < charTableSize; r++ {
		if isIdentifierStart(r) {
			charScanners[r] = scanIdentifier
		}
	}
	for r := rune('0'); r <= '9'; r++ {
		charScanners[r] = scanDigit
	}

	charScanners['"'] = scanString
	charScanners['\''] = scanString
	charScanners['`'] = scanTemplate

	charScanners['!'] = func(p *parserState) token {
		if p.nextChar() != '=' {
			return tokExclamation
		}
		if p.nextChar() != '=' {
			return tokExclamationEquals
		}
		p.nextChar()
		return tokExclamationEqualsEquals
	}
	charScanners['='] = func(p *parserState) token {
		if p.nextChar() != '=' {
			return tokEquals
		}
		if p.nextChar() != '=' {
			return tokEqualsEquals
		}
		p.nextChar()
		return tokEqualsEqualsEquals
	}
	charScanners['&'] = func(p *parserState) token {
		if p.nextChar() != '&' {
			return tokAmpersand
		}
		p.nextChar()
		return tokAmpersandAmpersand
	}
	charScanners['|'] = func(p *parserState) token {
		if p.nextChar() != '|' {
			return tokBar
		}
		p.nextChar()
		return tokBarBar
	}
	charScanners['.'] = func(p *parserState) token {
		if isDigit(p.nextChar()) {
			return p.scanNumber(true)
		}
		return tokPeriod
	}
	charScanners['<'] = func(p *parserState) token {
		if p.nextChar() != '=' {
			return tokLessThan
		}
		p.nextChar()
		return tokLessThanEquals
	}
	charScanners['>'] = func(p *parserState) token {
		if p.nextChar() != '=' {
			return tokGreaterThan
		}
		p.nextChar()
		return tokGreaterThanEquals
	}

	single := map[rune]token{
		'%': tokPercent, '(': tokLParen, ')': tokRParen, '*': tokAsterisk,
		'+': tokPlus, ',': tokComma, '-': tokMinus, '/': tokSlash,
		':': tokColon, ';': tokSemicolon, '?': tokQuestion,
		'[': tokLBracket, ']': tokRBracket, '{': tokLBrace, '}': tokRBrace,
	}
	for ch, tok := range single {
		charScanners[ch] = returnToken(tok)
	}
}

func returnToken(tok token) scanFunc {
	return func(p *parserState) token {
		p.nextChar()
		return tok
	}
}

func scanSkip(p *parserState) token {
	p.nextChar()
	return tokNone
}

func scanIdentifier(p *parserState) token {
	for isIdentifierPart(p.nextChar()) {
		// consume identifier part
	}
	text := p.input[p.start:p.index]
	p.value = text
	if tok, ok := keywords[text]; ok {
		return tok
	}
	return tokIdentifier
}

func scanDigit(p *parserState) token {
	return p.scanNumber(false)
}

func scanString(p *parserState) token {
	return p.scanString()
}

func scanTemplate(p *parserState) token {
	p.nextChar()
	return p.scanTemplateSegment()
}

// nextToken advances to the next token, skipping whitespace.
func (p *parserState) nextToken() {
	for p.index < p.length {
		p.start = p.index
		if p.ch >= charTableSize || charScanners[p.ch] == nil {
			p.fail(ErrUnexpectedCharacter, fmt.Sprintf("Unexpected character [%s]", string(p.ch)))
		}
		if tok := charScanners[p.ch](p); tok != tokNone {
			p.tok = tok
			return
		}
	}
	p.start = p.index
	p.tok = tokEOF
}

func (p *parserState) nextChar() rune {
	p.index += p.width
	p.decode()
	return p.ch
}

func (p *parserState) decode() {
	if p.index >= p.length {
		p.ch, p.width = 0, 0
		return
	}
	r, w := utf8.DecodeRuneInString(p.input[p.index:])
	p.ch, p.width = r, w
}

func (p *parserState) atEnd() bool {
	return p.index >= p.length
}

// scanNumber scans integer, fraction and exponent parts. When fraction is
// set the leading '.' has already been consumed.
func (p *parserState) scanNumber(fraction bool) token {
	if !fraction {
		for isDigit(p.ch) {
			p.nextChar()
		}
		if p.ch == '.' {
			p.nextChar()
			fraction = true
		}
	}
	if fraction {
		for isDigit(p.ch) {
			p.nextChar()
		}
	}
	if p.ch == 'e' || p.ch == 'E' {
		p.nextChar()
		if p.ch == '+' || p.ch == '-' {
			p.nextChar()
		}
		if !isDigit(p.ch) {
			p.fail(ErrInvalidExponent, "Invalid exponent")
		}
		for isDigit(p.ch) {
			p.nextChar()
		}
	}

	text := strings.TrimSuffix(p.input[p.start:p.index], ".")
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.fail(ErrUnexpectedToken, fmt.Sprintf("Invalid number [%s]", text))
	}
	p.value = v
	return tokNumericLiteral
}

func (p *parserState) scanString() token {
	quote := p.ch
	p.nextChar()

	var buf strings.Builder
	marker := p.index
	for p.ch != quote {
		if p.atEnd() {
			p.fail(ErrUnterminatedQuote, "Unterminated quote")
		}
		if p.ch != '\\' {
			p.nextChar()
			continue
		}
		buf.WriteString(p.input[marker:p.index])
		p.nextChar()
		if p.atEnd() {
			p.fail(ErrUnterminatedQuote, "Unterminated quote")
		}
		buf.WriteRune(p.scanEscape())
		marker = p.index
	}
	buf.WriteString(p.input[marker:p.index])
	p.nextChar()

	p.value = buf.String()
	return tokStringLiteral
}

// scanEscape decodes the escape whose first character (after the
// backslash) is current, leaving the cursor past it. A \u high surrogate
// directly followed by a \u low surrogate decodes to one code point.
func (p *parserState) scanEscape() rune {
	if p.ch != 'u' {
		r := unescape(p.ch)
		p.nextChar()
		return r
	}
	r := p.scanUnicodeEscape()
	if !utf16.IsSurrogate(r) || r >= 0xDC00 {
		return r
	}
	if p.ch != '\\' || p.index+1 >= p.length || p.input[p.index+1] != 'u' {
		return r
	}
	hex := p.input[p.index+2 : min(p.index+6, p.length)]
	low, err := strconv.ParseUint(hex, 16, 16)
	if len(hex) != 4 || err != nil || low < 0xDC00 || low > 0xDFFF {
		return r
	}
	p.nextChar()
	return utf16.DecodeRune(r, p.scanUnicodeEscape())
}

// scanUnicodeEscape decodes the four hex digits after the current 'u'.
func (p *parserState) scanUnicodeEscape() rune {
	hexStart := p.index + 1
	hex := p.input[hexStart:min(hexStart+4, p.length)]
	n, err := strconv.ParseUint(hex, 16, 16)
	if len(hex) != 4 || err != nil {
		p.fail(ErrInvalidUnicodeEscape, fmt.Sprintf("Invalid unicode escape [\\u%s]", hex))
	}
	for i := 0; i < 5; i++ {
		p.nextChar()
	}
	return rune(n)
}

func unescape(ch rune) rune {
	switch ch {
	case 'b':
		return '\b'
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	}
	return ch
}

// scanTemplateSegment scans template text up to the closing backtick or the
// next "${". The cursor starts just past the backtick or the closing "}" of
// the previous substitution.
func (p *parserState) scanTemplateSegment() token {
	tail := true
	var cooked strings.Builder
	rawStart := p.index
	rawEnd := p.index

	for {
		if p.atEnd() {
			p.fail(ErrUnterminatedTemplate, "Unterminated template")
		}
		if p.ch == '`' {
			rawEnd = p.index
			p.nextChar()
			break
		}
		if p.ch == '$' && p.index+1 < p.length && p.input[p.index+1] == '{' {
			rawEnd = p.index
			p.nextChar()
			p.nextChar()
			tail = false
			break
		}
		if p.ch == '\\' {
			p.nextChar()
			if p.atEnd() {
				p.fail(ErrUnterminatedTemplate, "Unterminated template")
			}
			cooked.WriteRune(p.scanEscape())
			continue
		}
		cooked.WriteRune(p.ch)
		p.nextChar()
	}

	p.value = cooked.String()
	p.raw = p.input[rawStart:rawEnd]
	if tail {
		return tokTemplateTail
	}
	return tokTemplateContinuation
}
