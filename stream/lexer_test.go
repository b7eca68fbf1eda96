package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestU2028U2029NotLineSeparators resolves spec.md §9's open question: these
// two Unicode line separators must never be treated as JSON newlines, in
// either grammar.
func TestU2028U2029NotLineSeparators(t *testing.T) {
	for _, strictness := range []Strictness{Strict, Lenient} {
		doc := "[\"a b c\"]"
		r := NewReaderFromString(doc, WithStrictness(strictness))
		require.NoError(t, r.BeginArray())
		s, err := r.NextString()
		require.NoError(t, err)
		assert.Equal(t, "a b c", s)
		require.NoError(t, r.EndArray())
	}
}

func TestLineCommentsAndBlockCommentsLenientOnly(t *testing.T) {
	doc := "[\n  1, // trailing\n  /* skip this */ 2\n]"

	r := NewReaderFromString(doc)
	require.NoError(t, r.BeginArray())
	_, err := r.NextInt()
	require.NoError(t, err)
	_, err = r.Peek()
	assert.ErrorIs(t, err, ErrMalformedJSON)

	r2 := NewReaderFromString(doc, WithStrictness(Lenient))
	require.NoError(t, r2.BeginArray())
	a, err := r2.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, a)
	b, err := r2.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 2, b)
	require.NoError(t, r2.EndArray())
}

func TestUnterminatedBlockCommentFails(t *testing.T) {
	r := NewReaderFromString("[1 /* oops]", WithStrictness(Lenient))
	require.NoError(t, r.BeginArray())
	_, err := r.NextInt()
	require.NoError(t, err)
	_, err = r.Peek()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestSingleQuotedAndUnquotedStrings(t *testing.T) {
	r := NewReaderFromString(`['a', b]`, WithStrictness(Lenient))
	require.NoError(t, r.BeginArray())
	s, err := r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "a", s)
	s, err = r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "b", s)
	require.NoError(t, r.EndArray())
}

func TestSurrogatePairEscape(t *testing.T) {
	r := NewReaderFromString("\"\\ud83d\\ude00\"")
	s, err := r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "😀", s)
}

func TestUnescapedControlCharacterRejectedStrict(t *testing.T) {
	doc := "\"a\tb\""
	r := NewReaderFromString(doc)
	_, err := r.NextString()
	assert.ErrorIs(t, err, ErrMalformedJSON)

	r2 := NewReaderFromString(doc, WithStrictness(Lenient))
	s, err := r2.NextString()
	require.NoError(t, err)
	assert.Equal(t, "a\tb", s)
}

func TestNonFiniteNumbersLenientOnly(t *testing.T) {
	r := NewReaderFromString(`[NaN, Infinity, -Infinity]`, WithStrictness(Lenient))
	require.NoError(t, r.BeginArray())

	n, err := r.NextDouble()
	require.NoError(t, err)
	assert.True(t, n != n) // NaN

	inf, err := r.NextDouble()
	require.NoError(t, err)
	assert.True(t, inf > 0 && inf*2 == inf)

	negInf, err := r.NextDouble()
	require.NoError(t, err)
	assert.True(t, negInf < 0 && negInf*2 == negInf)

	require.NoError(t, r.EndArray())
}

func TestMismatchedCaseLiteralsLegacyStrict(t *testing.T) {
	r := NewReaderFromString(`nuLL`, WithStrictness(LegacyStrict))
	require.NoError(t, r.NextNull())

	r2 := NewReaderFromString(`nuLL`)
	err := r2.NextNull()
	assert.Error(t, err)
}

func TestBOMConsumedOnce(t *testing.T) {
	r := NewReaderFromString("\xef\xbb\xbf[1]")
	require.NoError(t, r.BeginArray())
	n, err := r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, r.EndArray())
}
