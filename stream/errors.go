package stream

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure taxonomies a Reader can report.
type ErrorKind int8

// Error kinds.
const (
	// MalformedJSON covers lexical and structural grammar violations.
	MalformedJSON ErrorKind = iota
	// NumberFormat covers a peeked number that cannot be coerced to the
	// requested numeric type (range, precision, integrality).
	NumberFormat
	// IllegalState covers API misuse: wrong call for the current scope,
	// or any call (besides Close and Path) on a closed reader.
	IllegalState
	// UnexpectedEOF covers a premature end of input mid-token.
	UnexpectedEOF
)

// Sentinel errors, one per ErrorKind, for use with errors.Is.
var (
	ErrMalformedJSON = errors.New("malformed JSON")
	ErrNumberFormat  = errors.New("number format error")
	ErrIllegalState  = errors.New("illegal state")
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

func sentinelFor(k ErrorKind) error {
	switch k {
	case MalformedJSON:
		return ErrMalformedJSON
	case NumberFormat:
		return ErrNumberFormat
	case IllegalState:
		return ErrIllegalState
	case UnexpectedEOF:
		return ErrUnexpectedEOF
	default:
		return ErrMalformedJSON
	}
}

// Error is the error type returned by every Reader operation that fails. It
// carries enough context for a caller to locate the offending byte.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Line   int
	Column int
	Path   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d column %d (path %s)", e.Msg, e.Line, e.Column, e.Path)
}

// Unwrap lets callers use errors.Is(err, stream.ErrMalformedJSON) etc.
func (e *Error) Unwrap() error {
	return sentinelFor(e.Kind)
}

const lenientHint = "Use lenient strictness to accept malformed JSON"

func (r *Reader) errorf(kind ErrorKind, format string, args ...interface{}) error {
	return r.errorfAt(kind, r.buf.line, r.buf.column(), format, args...)
}

// errorfAt builds an Error pinned to an explicit line/column rather than the
// buffer's current position, for failures (unterminated strings, malformed
// escapes) that should point at where the offending token started rather
// than wherever look-ahead happened to stop.
func (r *Reader) errorfAt(kind ErrorKind, line, col int, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if kind == MalformedJSON && r.cfg.strictness == Strict {
		msg = msg + ". " + lenientHint
	}
	return &Error{
		Kind:   kind,
		Msg:    msg,
		Line:   line,
		Column: col,
		Path:   r.path(),
	}
}

func (r *Reader) illegalState(msg string) error {
	return &Error{
		Kind:   IllegalState,
		Msg:    msg,
		Line:   r.buf.line,
		Column: r.buf.column(),
		Path:   r.path(),
	}
}
