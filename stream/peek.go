package stream

// peekedKind is the internal enumeration of what the lexer found during
// look-ahead, before it has been classified into a public TokenKind and
// before its value (if any) has been extracted. Separating "what did we see"
// from "what did the caller ask for" is what makes the peek/commit
// discipline possible: a failed next_* call never had to consume anything
// to find out it was going to fail.
type peekedKind int8

const (
	peekedNone peekedKind = iota
	peekedBeginArray
	peekedEndArray
	peekedBeginObject
	peekedEndObject
	peekedSingleQuotedName
	peekedDoubleQuotedName
	peekedUnquotedName
	peekedSingleQuoted
	peekedDoubleQuoted
	peekedUnquoted
	peekedLong
	peekedNumber
	peekedTrue
	peekedFalse
	peekedNull
	peekedEndOfDocument
)

func (k peekedKind) isName() bool {
	switch k {
	case peekedSingleQuotedName, peekedDoubleQuotedName, peekedUnquotedName:
		return true
	}
	return false
}

func (k peekedKind) isStringLike() bool {
	switch k {
	case peekedSingleQuoted, peekedDoubleQuoted, peekedUnquoted:
		return true
	}
	return false
}

func (k peekedKind) isNumberLike() bool {
	return k == peekedLong || k == peekedNumber
}

// tokenKind maps an internal peeked kind to the public TokenKind reported
// by Peek. Name variants and quote-style variants of strings collapse onto
// the same public kind: callers see Name/String, never which quoting or
// leniency path produced it.
func (k peekedKind) tokenKind() TokenKind {
	switch {
	case k.isName():
		return Name
	case k.isStringLike():
		return String
	case k.isNumberLike():
		return Number
	}
	switch k {
	case peekedBeginArray:
		return BeginArray
	case peekedEndArray:
		return EndArray
	case peekedBeginObject:
		return BeginObject
	case peekedEndObject:
		return EndObject
	case peekedTrue, peekedFalse:
		return Boolean
	case peekedNull:
		return Null
	case peekedEndOfDocument:
		return EndDocument
	default:
		return EndDocument
	}
}
