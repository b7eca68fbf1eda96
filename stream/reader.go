package stream

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reader is C5: the public pull API over C1-C4. Callers drive it by calling
// Peek to see what is next, then exactly one matching Next*/Begin*/End*
// call to consume it. A failed Next*/Begin*/End* call never advances the
// underlying buffer: the peeked token stays peeked until a matching call
// succeeds, mirroring the teacher's single-token-lookahead Parse loop in
// parser.go but exposed as a pull API instead of a callback visitor.
type Reader struct {
	cfg       config
	buf       *buffer
	scopes    *scopeStack
	pathStack *pathStack

	havePeek         bool
	peekedKind       peekedKind
	peekedString     string
	peekedNumberText string
	peekedLongValue  int64

	bomChecked              bool
	nonExecutePrefixChecked bool
	closed                  bool
}

// NewReader constructs a Reader pulling bytes from src.
func NewReader(src CharSource, opts ...Option) *Reader {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reader{
		cfg:       cfg,
		buf:       newBuffer(src),
		scopes:    newScopeStack(),
		pathStack: newPathStack(),
	}
}

// NewReaderFromString constructs a Reader over an in-memory string.
func NewReaderFromString(s string, opts ...Option) *Reader {
	return NewReader(strings.NewReader(s), opts...)
}

// NewReaderFromBytes constructs a Reader over an in-memory byte slice.
func NewReaderFromBytes(b []byte, opts ...Option) *Reader {
	return NewReader(bytes.NewReader(b), opts...)
}

// SetNestingLimit changes the maximum container depth after construction.
func (r *Reader) SetNestingLimit(limit int) {
	r.cfg.nestingLimit = limit
}

func (r *Reader) lenient() bool {
	return r.cfg.strictness == Lenient
}

func (r *Reader) path() string {
	return r.pathStack.render()
}

// Path reports the JSONPath-style location of the value Peek would return
// next.
func (r *Reader) Path() string {
	return r.pathStack.render()
}

// PreviousPath reports the location of the most recently consumed value.
// It only differs from Path when the most recent consume advanced an
// array's counter.
func (r *Reader) PreviousPath() string {
	return r.pathStack.renderPrevious()
}

// Close releases any resources held by the Reader. After Close, every
// method but Close and Path/PreviousPath returns an error.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if c, ok := r.buf.src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Peek reports the kind of the next token without consuming it. Calling
// Peek repeatedly without an intervening Next*/Begin*/End* call returns the
// same answer and performs no additional I/O.
func (r *Reader) Peek() (TokenKind, error) {
	if r.closed {
		return EndDocument, r.illegalState("Reader is closed")
	}
	if r.havePeek {
		return r.peekedKind.tokenKind(), nil
	}
	if err := r.consumeBOMIfPresent(); err != nil {
		return EndDocument, err
	}
	if err := r.consumeNonExecutePrefixIfPresent(); err != nil {
		return EndDocument, err
	}
	kind, err := r.peekInternal()
	if err != nil {
		return EndDocument, err
	}
	r.peekedKind = kind
	r.havePeek = true
	return kind.tokenKind(), nil
}

// HasNext reports whether the current container (or document) has another
// token before its closing bracket, brace, or end of input.
func (r *Reader) HasNext() (bool, error) {
	kind, err := r.Peek()
	if err != nil {
		return false, err
	}
	switch kind {
	case EndArray, EndObject, EndDocument:
		return false, nil
	default:
		return true, nil
	}
}

func (r *Reader) requirePeek() (peekedKind, error) {
	if _, err := r.Peek(); err != nil {
		return peekedNone, err
	}
	return r.peekedKind, nil
}

func (r *Reader) clearPeek() {
	r.havePeek = false
	r.peekedKind = peekedNone
	r.peekedString = ""
	r.peekedNumberText = ""
	r.peekedLongValue = 0
}

// peekInternal dispatches lexing by the current scope: what bytes are
// legal next depends entirely on whether we're expecting a value, a name,
// a separator, or nothing at all.
func (r *Reader) peekInternal() (peekedKind, error) {
	switch r.scopes.top() {
	case ScopeEmptyDocument:
		return r.lexValue()
	case ScopeNonEmptyDocument:
		return r.peekAfterTopLevelValue()
	case ScopeEmptyArray:
		return r.lexValue()
	case ScopeNonEmptyArray:
		return r.peekArrayContinuation()
	case ScopeEmptyObject:
		return r.lexName()
	case ScopeNonEmptyObject:
		return r.peekObjectContinuation()
	case ScopeDanglingName:
		return r.peekAfterName()
	case ScopeClosed:
		return peekedEndOfDocument, nil
	default:
		return peekedNone, r.illegalState("Reader is in an unrecognized scope")
	}
}

func (r *Reader) peekAfterTopLevelValue() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	_, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		r.scopes.setTop(ScopeClosed)
		return peekedEndOfDocument, nil
	}
	if !r.lenient() {
		return peekedNone, r.errorf(MalformedJSON, "Unexpected content after the document's top-level value")
	}
	return r.lexValue()
}

func (r *Reader) peekArrayContinuation() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		return peekedNone, r.errorf(UnexpectedEOF, "Unterminated array")
	}
	switch {
	case b == ']':
		return r.lexValue()
	case b == ',':
		r.buf.advance(1)
		return r.lexValueOrImplicitNull()
	case r.lenient() && b == ';':
		r.buf.advance(1)
		return r.lexValueOrImplicitNull()
	default:
		return peekedNone, r.errorf(MalformedJSON, "Expected ',' or ']' but found '%c'", b)
	}
}

// lexValueOrImplicitNull implements the lenient "elided array element"
// relaxation: a comma immediately followed by another comma or the closing
// bracket stands for an implicit null, without consuming the byte that
// signaled it (that byte still closes the array or starts the next pair).
// Outside Lenient, either byte after a comma is malformed.
func (r *Reader) lexValueOrImplicitNull() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if ok && (b == ',' || b == ']') {
		if r.lenient() {
			return peekedNull, nil
		}
		return peekedNone, r.errorf(MalformedJSON, "Unexpected character '%c'", b)
	}
	return r.lexValue()
}

func (r *Reader) peekObjectContinuation() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		return peekedNone, r.errorf(UnexpectedEOF, "Unterminated object")
	}
	switch {
	case b == '}':
		return r.lexName()
	case b == ',':
		r.buf.advance(1)
		if !r.lenient() {
			if err := r.skipWhitespaceAndComments(); err != nil {
				return peekedNone, err
			}
			if nb, nok, err := r.buf.peekByte(0); err != nil {
				return peekedNone, err
			} else if nok && nb == '}' {
				return peekedNone, r.errorf(MalformedJSON, "Expected a name")
			}
		}
		return r.lexName()
	case r.lenient() && b == ';':
		r.buf.advance(1)
		return r.lexName()
	default:
		return peekedNone, r.errorf(MalformedJSON, "Expected ',' or '}' but found '%c'", b)
	}
}

func (r *Reader) peekAfterName() (peekedKind, error) {
	if err := r.skipWhitespaceAndComments(); err != nil {
		return peekedNone, err
	}
	b, ok, err := r.buf.peekByte(0)
	if err != nil {
		return peekedNone, err
	}
	if !ok {
		return peekedNone, r.errorf(UnexpectedEOF, "Unterminated object")
	}
	switch {
	case b == ':':
		r.buf.advance(1)
	case r.lenient() && b == '=':
		b2, ok2, err := r.buf.peekByte(1)
		if err != nil {
			return peekedNone, err
		}
		if ok2 && b2 == '>' {
			r.buf.advance(2)
		} else {
			r.buf.advance(1)
		}
	case r.lenient() && b == ';':
		r.buf.advance(1)
	default:
		return peekedNone, r.errorf(MalformedJSON, "Expected ':' but found '%c'", b)
	}
	return r.lexValue()
}

// transitionEnclosingForValue updates the scope that is about to receive a
// value, immediately, regardless of whether that value turns out to be a
// scalar or a container. This is distinct from the path stack's index
// bookkeeping, which for container values doesn't happen until the
// matching End call: a container counts as "consumed" only once it is
// fully closed.
func (r *Reader) transitionEnclosingForValue() {
	switch r.scopes.top() {
	case ScopeEmptyDocument:
		r.scopes.setTop(ScopeNonEmptyDocument)
	case ScopeEmptyArray:
		r.scopes.setTop(ScopeNonEmptyArray)
	case ScopeDanglingName:
		r.scopes.setTop(ScopeNonEmptyObject)
	}
}

// BeginArray consumes a peeked begin_array token and descends into it.
func (r *Reader) BeginArray() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if kind != peekedBeginArray {
		return r.illegalState(fmt.Sprintf("Expected BeginArray but was %s", kind.tokenKind()))
	}
	if !r.scopes.canPush(r.cfg.nestingLimit) {
		return r.errorf(MalformedJSON, "Nesting limit of %d exceeded", r.cfg.nestingLimit)
	}
	r.transitionEnclosingForValue()
	r.scopes.pushUnchecked(ScopeEmptyArray)
	r.pathStack.pushArray()
	r.clearPeek()
	return nil
}

// BeginObject consumes a peeked begin_object token and descends into it.
func (r *Reader) BeginObject() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if kind != peekedBeginObject {
		return r.illegalState(fmt.Sprintf("Expected BeginObject but was %s", kind.tokenKind()))
	}
	if !r.scopes.canPush(r.cfg.nestingLimit) {
		return r.errorf(MalformedJSON, "Nesting limit of %d exceeded", r.cfg.nestingLimit)
	}
	r.transitionEnclosingForValue()
	r.scopes.pushUnchecked(ScopeEmptyObject)
	r.pathStack.pushObject()
	r.clearPeek()
	return nil
}

// EndArray consumes a peeked end_array token and ascends out of it.
func (r *Reader) EndArray() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if kind != peekedEndArray {
		return r.illegalState(fmt.Sprintf("Expected EndArray but was %s", kind.tokenKind()))
	}
	return r.endContainer()
}

// EndObject consumes a peeked end_object token and ascends out of it.
func (r *Reader) EndObject() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if kind != peekedEndObject {
		return r.illegalState(fmt.Sprintf("Expected EndObject but was %s", kind.tokenKind()))
	}
	return r.endContainer()
}

func (r *Reader) endContainer() error {
	r.scopes.pop()
	r.pathStack.pop()
	r.pathStack.consumeValue()
	r.clearPeek()
	return nil
}

// NextName consumes a peeked name token, returning its text.
func (r *Reader) NextName() (string, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return "", err
	}
	if !kind.isName() {
		return "", r.illegalState(fmt.Sprintf("Expected a name but was %s", kind.tokenKind()))
	}
	name := r.peekedString
	r.pathStack.setName(name)
	r.scopes.setTop(ScopeDanglingName)
	r.clearPeek()
	return name, nil
}

// NextString consumes a peeked string token, returning its decoded text.
// Under Lenient strictness, a number or boolean token is also
// accepted and stringified in place, preserving the number's original
// lexical form (so "-0" surfaces as "-0", never normalized to "0").
func (r *Reader) NextString() (string, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return "", err
	}
	var value string
	switch {
	case kind.isStringLike():
		value = r.peekedString
	case kind.isNumberLike() && r.lenient():
		value = r.peekedNumberText
	case (kind == peekedTrue || kind == peekedFalse) && r.lenient():
		value = strconv.FormatBool(kind == peekedTrue)
	default:
		return "", r.illegalState(fmt.Sprintf("Expected a string but was %s", kind.tokenKind()))
	}
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return value, nil
}

// NextBoolean consumes a peeked boolean token.
func (r *Reader) NextBoolean() (bool, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return false, err
	}
	if kind != peekedTrue && kind != peekedFalse {
		return false, r.illegalState(fmt.Sprintf("Expected a boolean but was %s", kind.tokenKind()))
	}
	value := kind == peekedTrue
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return value, nil
}

// NextNull consumes a peeked null token.
func (r *Reader) NextNull() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if kind != peekedNull {
		return r.illegalState(fmt.Sprintf("Expected null but was %s", kind.tokenKind()))
	}
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return nil
}

func hasFractionOrExponent(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', 'e', 'E':
			return true
		}
	}
	return false
}

// coerceLong implements the "canonical i64 interpretation loses no
// information" rule: a plain integer that already parsed exactly during
// lexing (kind == peekedLong) is returned as-is, never round-tripped
// through float64 (which would corrupt values near int64's range, such as
// the exact minimum/maximum, that aren't exactly representable as
// float64). A plain integer whose digits overflowed int64 during lexing is
// rejected as out of range. Only a number carrying a fraction or exponent
// goes through the float64 round-trip check: "1.0" passes because
// truncating and widening back reproduces the same float; "1.5" does not.
func (r *Reader) coerceLong(kind peekedKind) (int64, error) {
	if kind == peekedLong {
		return r.peekedLongValue, nil
	}
	text := r.peekedNumberText
	if !hasFractionOrExponent(text) {
		return 0, r.errorf(NumberFormat, "Number %s is out of range for a 64-bit integer", text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, r.errorf(NumberFormat, "Invalid number %s", text)
	}
	v := int64(f)
	if float64(v) != f {
		return 0, r.errorf(NumberFormat, "Number %s is not an exact integer", text)
	}
	return v, nil
}

// NextInt consumes a peeked number token as a 32-bit integer. It fails if
// the number is not an exact integer (1.5 fails; 1.0 and 1e2 pass), or
// doesn't fit in an int32.
func (r *Reader) NextInt() (int32, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return 0, err
	}
	if !kind.isNumberLike() {
		return 0, r.illegalState(fmt.Sprintf("Expected a number but was %s", kind.tokenKind()))
	}
	v, err := r.coerceLong(kind)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, r.errorf(NumberFormat, "Number %d is out of range for a 32-bit integer", v)
	}
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return int32(v), nil
}

// NextLong consumes a peeked number token as a 64-bit integer. It fails if
// the number is not an exact integer (1.5 fails; 1.0 and 1e2 pass), or
// doesn't fit in an int64.
func (r *Reader) NextLong() (int64, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return 0, err
	}
	if !kind.isNumberLike() {
		return 0, r.illegalState(fmt.Sprintf("Expected a number but was %s", kind.tokenKind()))
	}
	v, err := r.coerceLong(kind)
	if err != nil {
		return 0, err
	}
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return v, nil
}

func specialFloat(text string) (float64, bool) {
	switch text {
	case "NaN":
		return math.NaN(), true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	return 0, false
}

// NextDouble consumes a peeked number token as a float64. Under Lenient
// strictness it also accepts NaN, Infinity, +Infinity, and -Infinity,
// quoted or unquoted.
func (r *Reader) NextDouble() (float64, error) {
	kind, err := r.requirePeek()
	if err != nil {
		return 0, err
	}
	var f float64
	switch {
	case kind.isNumberLike():
		parsed, err := strconv.ParseFloat(r.peekedNumberText, 64)
		if err != nil {
			return 0, r.errorf(NumberFormat, "Invalid number %s", r.peekedNumberText)
		}
		f = parsed
	case kind.isStringLike() && r.lenient():
		sf, ok := specialFloat(r.peekedString)
		if !ok {
			return 0, r.illegalState(fmt.Sprintf("Expected a number but was %q", r.peekedString))
		}
		f = sf
	default:
		return 0, r.illegalState(fmt.Sprintf("Expected a number but was %s", kind.tokenKind()))
	}
	r.transitionEnclosingForValue()
	r.pathStack.consumeValue()
	r.clearPeek()
	return f, nil
}

// skipName consumes a peeked name token the way NextName does, but records
// the path placeholder "null" instead of the name's text: spec.md §4.4's
// documented compatibility quirk for a name that is skipped, rather than
// read, inside an object.
func (r *Reader) skipName() error {
	kind, err := r.requirePeek()
	if err != nil {
		return err
	}
	if !kind.isName() {
		return r.illegalState(fmt.Sprintf("Expected a name but was %s", kind.tokenKind()))
	}
	r.pathStack.setName("null")
	r.scopes.setTop(ScopeDanglingName)
	r.clearPeek()
	return nil
}

// SkipValue discards whatever Peek would return next, recursing into
// containers without materializing their contents. Called at a
// name-position scope, it discards the name along with the value that
// follows it.
func (r *Reader) SkipValue() error {
	kind, err := r.Peek()
	if err != nil {
		return err
	}
	switch kind {
	case Name:
		if err := r.skipName(); err != nil {
			return err
		}
		return r.SkipValue()
	case BeginArray:
		if err := r.BeginArray(); err != nil {
			return err
		}
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == EndArray {
				break
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
		return r.EndArray()
	case BeginObject:
		if err := r.BeginObject(); err != nil {
			return err
		}
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == EndObject {
				break
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
		return r.EndObject()
	case String:
		_, err := r.NextString()
		return err
	case Number:
		_, err := r.NextDouble()
		return err
	case Boolean:
		_, err := r.NextBoolean()
		return err
	case Null:
		return r.NextNull()
	default:
		return r.illegalState(fmt.Sprintf("No value to skip at %s", kind))
	}
}
