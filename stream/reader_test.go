package stream

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPathWalk is end-to-end scenario 1.
func TestPathWalk(t *testing.T) {
	r := NewReaderFromString(`{"a":[2,true,false,null,"b",{"c":"d"},[3]]}`)

	require.Equal(t, "$", r.Path())

	require.NoError(t, r.BeginObject())
	require.Equal(t, "$.", r.Path())

	name, err := r.NextName()
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	require.Equal(t, "$.a", r.Path())

	require.NoError(t, r.BeginArray())
	require.Equal(t, "$.a[0]", r.Path())

	n, err := r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.Equal(t, "$.a[1]", r.Path())

	b, err := r.NextBoolean()
	require.NoError(t, err)
	assert.True(t, b)
	require.Equal(t, "$.a[2]", r.Path())

	b, err = r.NextBoolean()
	require.NoError(t, err)
	assert.False(t, b)
	require.Equal(t, "$.a[3]", r.Path())

	require.NoError(t, r.NextNull())
	require.Equal(t, "$.a[4]", r.Path())

	s, err := r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "b", s)
	require.Equal(t, "$.a[5]", r.Path())

	require.NoError(t, r.BeginObject())
	require.Equal(t, "$.a[5].", r.Path())

	name, err = r.NextName()
	require.NoError(t, err)
	assert.Equal(t, "c", name)
	require.Equal(t, "$.a[5].c", r.Path())

	s, err = r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "d", s)
	require.Equal(t, "$.a[5].c", r.Path())

	require.NoError(t, r.EndObject())
	require.Equal(t, "$.a[6]", r.Path())

	require.NoError(t, r.BeginArray())
	require.Equal(t, "$.a[6][0]", r.Path())

	n, err = r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.Equal(t, "$.a[6][1]", r.Path())

	require.NoError(t, r.EndArray())
	require.Equal(t, "$.a[7]", r.Path())

	require.NoError(t, r.EndArray())
	require.Equal(t, "$.a", r.Path())

	require.NoError(t, r.EndObject())
	require.Equal(t, "$", r.Path())
}

// TestPeekIdempotenceWithNumber is end-to-end scenario 2: a failed
// coercion must leave the peek cached so a following call sees the same
// token.
func TestPeekIdempotenceWithNumber(t *testing.T) {
	r := NewReaderFromString(`[1.5]`)
	require.NoError(t, r.BeginArray())

	_, err := r.NextInt()
	assert.ErrorIs(t, err, ErrNumberFormat)

	d, err := r.NextDouble()
	require.NoError(t, err)
	assert.Equal(t, 1.5, d)

	require.NoError(t, r.EndArray())
}

// TestLenientMultipleTopLevelValues is end-to-end scenario 3.
func TestLenientMultipleTopLevelValues(t *testing.T) {
	r := NewReaderFromString(`[] true {}`, WithStrictness(Lenient))

	require.NoError(t, r.BeginArray())
	require.NoError(t, r.EndArray())

	b, err := r.NextBoolean()
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, r.BeginObject())
	require.NoError(t, r.EndObject())

	kind, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, EndDocument, kind)
}

// TestStrictLiteralCase is end-to-end scenario 4.
func TestStrictLiteralCase(t *testing.T) {
	r := NewReaderFromString(`True`)
	_, err := r.NextBoolean()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lenient")

	r2 := NewReaderFromString(`true`)
	b, err := r2.NextBoolean()
	require.NoError(t, err)
	assert.True(t, b)
}

// TestStrictNonExecutePrefix is end-to-end scenario 5.
func TestStrictNonExecutePrefix(t *testing.T) {
	r := NewReaderFromString(")]}'\n[]")
	err := r.BeginArray()
	require.Error(t, err)
	var jsonErr *Error
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, 1, jsonErr.Line)
	assert.Equal(t, 1, jsonErr.Column)

	r2 := NewReaderFromString(")]}'\n[]", WithStrictness(Lenient))
	require.NoError(t, r2.BeginArray())
	require.NoError(t, r2.EndArray())
	kind, err := r2.Peek()
	require.NoError(t, err)
	assert.Equal(t, EndDocument, kind)
}

// TestDeeplyNestedPathString is end-to-end scenario 6.
func TestDeeplyNestedPathString(t *testing.T) {
	r := NewReaderFromString(strings.Repeat("[", 40))
	for i := 0; i < 40; i++ {
		require.NoError(t, r.BeginArray())
	}
	expected := "$" + strings.Repeat("[0]", 40)
	assert.Equal(t, expected, r.Path())
}

func TestNextIntBoundaries(t *testing.T) {
	r := NewReaderFromString(`[1.5, 9223372036854775807]`)
	require.NoError(t, r.BeginArray())

	_, err := r.NextInt()
	assert.ErrorIs(t, err, ErrNumberFormat)
	_, err = r.NextDouble()
	require.NoError(t, err)

	_, err = r.NextInt()
	assert.ErrorIs(t, err, ErrNumberFormat)
}

func TestNextLongAcceptsExactMinMax(t *testing.T) {
	r := NewReaderFromString(`[9223372036854775807, -9223372036854775808]`)
	require.NoError(t, r.BeginArray())

	max, err := r.NextLong()
	require.NoError(t, err)
	assert.EqualValues(t, 9223372036854775807, max)

	min, err := r.NextLong()
	require.NoError(t, err)
	assert.EqualValues(t, -9223372036854775808, min)
}

func TestNegativeZeroPreservesLexicalForm(t *testing.T) {
	r := NewReaderFromString(`["-0"]`)
	require.NoError(t, r.BeginArray())
	s, err := r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "-0", s)

	r2 := NewReaderFromString(`[-0]`)
	require.NoError(t, r2.BeginArray())
	d, err := r2.NextDouble()
	require.NoError(t, err)
	assert.True(t, math.Signbit(d))
}

func TestLeadingZeroStrictRejectedLenientUnquoted(t *testing.T) {
	r := NewReaderFromString(`[01]`)
	require.NoError(t, r.BeginArray())
	_, err := r.Peek()
	assert.ErrorIs(t, err, ErrMalformedJSON)

	r2 := NewReaderFromString(`[01]`, WithStrictness(Lenient))
	require.NoError(t, r2.BeginArray())
	s, err := r2.NextString()
	require.NoError(t, err)
	assert.Equal(t, "01", s)
}

func TestNestingLimit(t *testing.T) {
	r := NewReaderFromString(strings.Repeat("[", 3))
	r.SetNestingLimit(2)
	require.NoError(t, r.BeginArray())
	require.NoError(t, r.BeginArray())
	err := r.BeginArray()
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestFailedNextDoesNotAdvance(t *testing.T) {
	r := NewReaderFromString(`["x"]`)
	require.NoError(t, r.BeginArray())

	_, err := r.NextBoolean()
	require.Error(t, err)

	s, err := r.NextString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)
}

func TestSkipValueEqualsReadingIt(t *testing.T) {
	doc := `{"a": [1, 2, {"b": 3}], "c": "d"}`

	r1 := NewReaderFromString(doc)
	require.NoError(t, r1.BeginObject())
	_, err := r1.NextName()
	require.NoError(t, err)
	require.NoError(t, r1.SkipValue())
	pathAfterSkip := r1.Path()

	r2 := NewReaderFromString(doc)
	require.NoError(t, r2.BeginObject())
	_, err = r2.NextName()
	require.NoError(t, err)
	require.NoError(t, r2.BeginArray())
	_, err = r2.NextInt()
	require.NoError(t, err)
	_, err = r2.NextInt()
	require.NoError(t, err)
	require.NoError(t, r2.BeginObject())
	_, err = r2.NextName()
	require.NoError(t, err)
	_, err = r2.NextInt()
	require.NoError(t, err)
	require.NoError(t, r2.EndObject())
	require.NoError(t, r2.EndArray())
	pathAfterRead := r2.Path()

	assert.Equal(t, pathAfterRead, pathAfterSkip)
}

func TestSkipValueRecordsNullPlaceholderForSkippedName(t *testing.T) {
	r := NewReaderFromString(`{"x":1}`)
	require.NoError(t, r.BeginObject())
	require.NoError(t, r.SkipValue())
	assert.Equal(t, "$.null", r.Path())
}

func TestHasNext(t *testing.T) {
	r := NewReaderFromString(`[1, 2]`)
	require.NoError(t, r.BeginArray())

	has, err := r.HasNext()
	require.NoError(t, err)
	assert.True(t, has)

	_, err = r.NextInt()
	require.NoError(t, err)
	_, err = r.NextInt()
	require.NoError(t, err)

	has, err = r.HasNext()
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, r.EndArray())
}

func TestCloseDisallowsFurtherReads(t *testing.T) {
	r := NewReaderFromString(`[]`)
	require.NoError(t, r.Close())

	_, err := r.Peek()
	assert.ErrorIs(t, err, ErrIllegalState)

	assert.Equal(t, "$", r.Path())
}

func TestLenientImplicitNullInArray(t *testing.T) {
	r := NewReaderFromString(`[1,,2]`, WithStrictness(Lenient))
	require.NoError(t, r.BeginArray())

	n, err := r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, r.NextNull())

	n, err = r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, r.EndArray())
}

func TestLenientSeparators(t *testing.T) {
	r := NewReaderFromString(`{a=1; b=>2}`, WithStrictness(Lenient))
	require.NoError(t, r.BeginObject())

	name, err := r.NextName()
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	n, err := r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	name, err = r.NextName()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	n, err = r.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, r.EndObject())
}
