package stream

import (
	"strconv"
	"strings"

	"github.com/mcvoid/stream-json/stream/internal/charclass"
)

// This file is C2, the lexer: recognizing tokens under the strict grammar
// plus the documented lenient superset. It is a direct generalization of
// mcvoid-json/parser.go's stateTransitionTable-driven consumeCharacter: the
// teacher matches one rune against a fixed table per call, accumulating into
// p.buffer; here numbers, literals and unquoted runs are matched with a
// small, non-backtracking look-ahead (via buffer.peekByte, which never
// consumes) and committed once the whole token's shape is known, while
// quoted strings are decoded and consumed byte by byte. All lexing happens
// during Peek, so a later failed coercion finds the token already cached and
// leaves the stream untouched.

var nonExecutePrefix = []byte(")]}'\n")

func (r *Reader) consumeBOMIfPresent() error {
	if r.bomChecked {
		return nil
	}
	r.bomChecked = true
	b0, ok0, err := r.buf.peekByte(0)
	if err != nil {
		return err
	}
	if !ok0 || b0 != 0xEF {
		return nil
	}
	b1, ok1, err := r.buf.peekByte(1)
	if err != nil {
		return err
	}
	b2, ok2, err := r.buf.peekByte(2)
	if err != nil {
		return err
	}
	if ok1 && ok2 && b1 == 0xBB && b2 == 0xBF {
		r.buf.advance(3)
	}
	return nil
}

func (r *Reader) consumeNonExecutePrefixIfPresent() error {
	if r.nonExecutePrefixChecked {
		return nil
	}
	r.nonExecutePrefixChecked = true
	if !r.lenient() {
		return nil
	}
	for i, want := range nonExecutePrefix {
		b, ok, err := r.buf.peekByte(i)
		if err != nil {
			return err
		}
		if !ok || b != want {
			return nil
		}
	}
	r.buf.advance(len(nonExecutePrefix))
	return nil
}

func (r *Reader) skipWhitespaceAndComments() error {
	for {
		b, ok, err := r.buf.peekByte(0)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if charclass.IsWhitespace(b) {
			r.buf.advance(1)
			continue
		}
		if b == '/' {
			if !r.lenient() {
				return r.errorf(MalformedJSON, "Unexpected character '/'")
			}
			b2, ok2, err := r.buf.peekByte(1)
			if err != nil {
				return err
			}
			switch {
			case ok2 && b2 == '/':
				r.buf.advance(2)
				if err := r.skipLineComment(); err != nil {
					return err
				}
				continue
			case ok2 && b2 == '*':
				r.buf.advance(2)
				if err := r.skipBlockComment(); err != nil {
					return err
				}
				continue
			default:
				return r.errorf(MalformedJSON, "Unexpected character '/'")
			}
		}
		if b == '#' {
			if !r.lenient() {
				return r.errorf(MalformedJSON, "Unexpected character '#'")
			}
			r.buf.advance(1)
			if err := r.skipLineComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (r *Reader) skipLineComment() error {
	for {
		b, ok, err := r.buf.peekByte(0)
		if err != nil {
			return err
		}
		if !ok || b == '\n' || b == '\r' {
			return nil
		}
		r.buf.advance(1)
	}
}

func (r *Reader) skipBlockComment() error {
	for {
		b, ok, err := r.buf.peekByte(0)
		if err != nil {
			return err
		}
		if !ok {
			return r.errorf(UnexpectedEOF, "Unterminated comment")
		}
		if b == '*' {
			b2, ok2, err := r.buf.peekByte(1)
			if err != nil {
				return err
			}
			if ok2 && b2 == '/' {
				r.buf.advance(2)
				return nil
			}
		}
		r.buf.advance(1)
	}
}

// lexValue recognizes a value-position token: a container opener, a close
// bracket (only meaningful when an array is expecting a value or a close),
// a quoted/unquoted string, a number, or a literal.
func (r *Reader) lexValue() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		return peekedNone, r.errorf(UnexpectedEOF, "Unexpected end of input, expected a value")
	}
	switch {
	case b == '{':
		r.buf.advance(1)
		return peekedBeginObject, nil
	case b == '[':
		r.buf.advance(1)
		return peekedBeginArray, nil
	case b == ']':
		if top := r.scopes.top(); top != ScopeEmptyArray && top != ScopeNonEmptyArray {
			return peekedNone, r.errorf(MalformedJSON, "Unexpected character ']'")
		}
		r.buf.advance(1)
		return peekedEndArray, nil
	case b == '"':
		s, err := r.lexQuotedString('"')
		if err != nil {
			return peekedNone, err
		}
		r.peekedString = s
		return peekedDoubleQuoted, nil
	case b == '\'':
		if !r.lenient() {
			return peekedNone, r.errorf(MalformedJSON, "Unexpected character '\\''")
		}
		s, err := r.lexQuotedString('\'')
		if err != nil {
			return peekedNone, err
		}
		r.peekedString = s
		return peekedSingleQuoted, nil
	case b == '-' || charclass.IsDigit(b):
		return r.lexNumberOrUnquoted()
	case b == 't' || b == 'T' || b == 'f' || b == 'F' || b == 'n' || b == 'N':
		return r.lexLiteralOrUnquoted()
	default:
		if r.lenient() {
			return r.lexUnquoted()
		}
		return peekedNone, r.errorf(MalformedJSON, "Unexpected character '%c'", b)
	}
}

// lexName recognizes a name-position token: a quoted/unquoted string used
// as an object key, or the closing brace.
func (r *Reader) lexName() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		return peekedNone, r.errorf(UnexpectedEOF, "Unexpected end of input, expected a name")
	}
	switch {
	case b == '}':
		r.buf.advance(1)
		return peekedEndObject, nil
	case b == '"':
		s, err := r.lexQuotedString('"')
		if err != nil {
			return peekedNone, err
		}
		r.peekedString = s
		return peekedDoubleQuotedName, nil
	case b == '\'':
		if !r.lenient() {
			return peekedNone, r.errorf(MalformedJSON, "Unexpected character '\\''")
		}
		s, err := r.lexQuotedString('\'')
		if err != nil {
			return peekedNone, err
		}
		r.peekedString = s
		return peekedSingleQuotedName, nil
	default:
		if !r.lenient() {
			return peekedNone, r.errorf(MalformedJSON, "Expected a name")
		}
		n, err := r.matchUnquotedRun()
		if err != nil {
			return peekedNone, err
		}
		if n == 0 {
			return peekedNone, r.errorf(MalformedJSON, "Expected a name")
		}
		s, err := r.buf.sliceAt(n)
		if err != nil {
			return peekedNone, err
		}
		r.buf.advance(n)
		r.peekedString = s
		return peekedUnquotedName, nil
	}
}

func (r *Reader) lexQuotedString(quote byte) (string, error) {
	startLine, startCol := r.buf.line, r.buf.column()
	r.buf.advance(1) // opening quote
	var sb strings.Builder
	for {
		b, ok, err := r.buf.readByte()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", r.errorfAt(UnexpectedEOF, startLine, startCol, "Unterminated string")
		}
		if b == quote {
			return sb.String(), nil
		}
		if b == '\\' {
			if err := r.readEscape(&sb, startLine, startCol); err != nil {
				return "", err
			}
			continue
		}
		if b < 0x20 && !r.lenient() {
			return "", r.errorfAt(MalformedJSON, startLine, startCol, "Unescaped control character in string")
		}
		sb.WriteByte(b)
	}
}

func (r *Reader) readEscape(sb *strings.Builder, startLine, startCol int) error {
	b, ok, err := r.buf.readByte()
	if err != nil {
		return err
	}
	if !ok {
		return r.errorfAt(UnexpectedEOF, startLine, startCol, "Unterminated string")
	}
	switch b {
	case '"':
		sb.WriteByte('"')
	case '\\':
		sb.WriteByte('\\')
	case '/':
		sb.WriteByte('/')
	case '\'':
		sb.WriteByte('\'')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		cu, err := r.readHex4(startLine, startCol)
		if err != nil {
			return err
		}
		if cu >= 0xD800 && cu <= 0xDBFF {
			return r.readSurrogatePair(sb, cu, startLine, startCol)
		}
		sb.WriteRune(rune(cu))
	default:
		return r.errorfAt(MalformedJSON, startLine, startCol, "Malformed Unicode escape '\\%c'", b)
	}
	return nil
}

func (r *Reader) readSurrogatePair(sb *strings.Builder, high uint32, startLine, startCol int) error {
	b1, ok1, err := r.buf.peekByte(0)
	if err != nil {
		return err
	}
	b2, ok2, err := r.buf.peekByte(1)
	if err != nil {
		return err
	}
	if ok1 && ok2 && b1 == '\\' && b2 == 'u' {
		r.buf.advance(2)
		low, err := r.readHex4(startLine, startCol)
		if err != nil {
			return err
		}
		if low >= 0xDC00 && low <= 0xDFFF {
			combined := rune(0x10000 + (int32(high)-0xD800)*0x400 + (int32(low) - 0xDC00))
			sb.WriteRune(combined)
			return nil
		}
		sb.WriteRune(rune(high))
		sb.WriteRune(rune(low))
		return nil
	}
	sb.WriteRune(rune(high))
	return nil
}

func (r *Reader) readHex4(startLine, startCol int) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, ok, err := r.buf.readByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, r.errorfAt(UnexpectedEOF, startLine, startCol, "Unterminated string")
		}
		if !charclass.IsHexDigit(b) {
			return 0, r.errorfAt(MalformedJSON, startLine, startCol, "Malformed Unicode escape")
		}
		v = v*16 + uint32(hexVal(b))
	}
	return v, nil
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

// matchUnquotedRun reports the length, from the current position, of a run
// of characters that isn't terminated by whitespace, a structural
// character, '=', a comment introducer, or a quote. Never consumes.
func (r *Reader) matchUnquotedRun() (int, error) {
	i := 0
	for {
		b, ok, err := r.buf.peekByte(i)
		if err != nil {
			return 0, err
		}
		if !ok || charclass.IsUnquotedStringTerminator(b) {
			return i, nil
		}
		i++
	}
}

func (r *Reader) lexUnquoted() (peekedKind, error) {
	n, err := r.matchUnquotedRun()
	if err != nil {
		return peekedNone, err
	}
	if n == 0 {
		return peekedNone, r.errorf(MalformedJSON, "Expected a value")
	}
	text, err := r.buf.sliceAt(n)
	if err != nil {
		return peekedNone, err
	}
	r.buf.advance(n)
	r.peekedString = text
	return peekedUnquoted, nil
}

// matchNumber scans, without consuming, the longest prefix matching
// `-? (0 | [1-9][0-9]*) (.[0-9]+)? ([eE][+-]?[0-9]+)?`. leadingZeroBad
// reports a `0` immediately followed by another digit (no octal in strict
// mode; the whole run falls back to an unquoted string in lenient mode).
func (r *Reader) matchNumber() (length int, hasFraction bool, leadingZeroBad bool, err error) {
	i := 0
	b, ok, e := r.buf.peekByte(i)
	if e != nil {
		return 0, false, false, e
	}
	if ok && b == '-' {
		i++
	}
	b, ok, e = r.buf.peekByte(i)
	if e != nil {
		return 0, false, false, e
	}
	if !ok {
		return 0, false, false, nil
	}
	switch {
	case b == '0':
		i++
		b2, ok2, e2 := r.buf.peekByte(i)
		if e2 != nil {
			return 0, false, false, e2
		}
		if ok2 && charclass.IsDigit(b2) {
			return 0, false, true, nil
		}
	case charclass.IsDigit(b):
		i++
		for {
			b2, ok2, e2 := r.buf.peekByte(i)
			if e2 != nil {
				return 0, false, false, e2
			}
			if !ok2 || !charclass.IsDigit(b2) {
				break
			}
			i++
		}
	default:
		return 0, false, false, nil
	}

	if bdot, okdot, edot := r.buf.peekByte(i); edot != nil {
		return 0, false, false, edot
	} else if okdot && bdot == '.' {
		if bf, okf, ef := r.buf.peekByte(i + 1); ef != nil {
			return 0, false, false, ef
		} else if okf && charclass.IsDigit(bf) {
			hasFraction = true
			i++
			for {
				bn, okn, en := r.buf.peekByte(i)
				if en != nil {
					return 0, false, false, en
				}
				if !okn || !charclass.IsDigit(bn) {
					break
				}
				i++
			}
		}
	}

	if be, oke, ee := r.buf.peekByte(i); ee != nil {
		return 0, false, false, ee
	} else if oke && (be == 'e' || be == 'E') {
		k := i + 1
		if bs, oks, es := r.buf.peekByte(k); es != nil {
			return 0, false, false, es
		} else if oks && (bs == '+' || bs == '-') {
			k++
		}
		if bd, okd, ed := r.buf.peekByte(k); ed != nil {
			return 0, false, false, ed
		} else if okd && charclass.IsDigit(bd) {
			hasFraction = true
			i = k
			for {
				bn, okn, en := r.buf.peekByte(i)
				if en != nil {
					return 0, false, false, en
				}
				if !okn || !charclass.IsDigit(bn) {
					break
				}
				i++
			}
		}
	}

	return i, hasFraction, false, nil
}

func (r *Reader) lexNumberOrUnquoted() (peekedKind, error) {
	length, hasFraction, leadingZeroBad, err := r.matchNumber()
	if err != nil {
		return peekedNone, err
	}
	if leadingZeroBad {
		if !r.lenient() {
			return peekedNone, r.errorf(MalformedJSON, "Leading zero not allowed in number")
		}
		return r.lexUnquoted()
	}
	if length == 0 {
		if r.lenient() {
			return r.lexUnquoted()
		}
		return peekedNone, r.errorf(MalformedJSON, "Invalid number")
	}
	nb, nok, nerr := r.buf.peekByte(length)
	if nerr != nil {
		return peekedNone, nerr
	}
	if nok && r.lenient() && charclass.IsLiteralContinuation(nb) {
		return r.lexUnquoted()
	}
	text, err := r.buf.sliceAt(length)
	if err != nil {
		return peekedNone, err
	}
	r.buf.advance(length)
	r.peekedNumberText = text
	if !hasFraction {
		if v, ok := parseExactInt64(text); ok {
			r.peekedLongValue = v
			return peekedLong, nil
		}
	}
	return peekedNumber, nil
}

func parseExactInt64(text string) (int64, bool) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type keyword struct {
	word string
	kind peekedKind
}

var keywords = [...]keyword{
	{"true", peekedTrue},
	{"false", peekedFalse},
	{"null", peekedNull},
}

func (r *Reader) matchKeyword(word string, caseInsensitive bool) (bool, error) {
	for i := 0; i < len(word); i++ {
		b, ok, err := r.buf.peekByte(i)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if b == word[i] {
			continue
		}
		if caseInsensitive && lowerASCII(b) == word[i] {
			continue
		}
		return false, nil
	}
	return true, nil
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func (r *Reader) lexLiteralOrUnquoted() (peekedKind, error) {
	caseInsensitive := r.cfg.strictness != Strict
	for _, kw := range keywords {
		matched, err := r.matchKeyword(kw.word, caseInsensitive)
		if err != nil {
			return peekedNone, err
		}
		if !matched {
			continue
		}
		nb, nok, nerr := r.buf.peekByte(len(kw.word))
		if nerr != nil {
			return peekedNone, nerr
		}
		if nok && r.lenient() && charclass.IsLiteralContinuation(nb) {
			return r.lexUnquoted()
		}
		r.buf.advance(len(kw.word))
		return kw.kind, nil
	}
	if r.lenient() {
		return r.lexUnquoted()
	}
	return peekedNone, r.errorf(MalformedJSON, "Expected a literal value")
}
