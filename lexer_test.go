package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWordBare(t *testing.T) {
	s := newScanner("echo ")
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "echo", word)
}

func TestParseWordDoubleQuoted(t *testing.T) {
	s := newScanner(`"hello world"`)
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello world", word)
}

func TestParseWordSingleQuotedNoEscapes(t *testing.T) {
	s := newScanner(`'a\nb'`)
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `a\nb`, word)
}

func TestParseWordDoubleQuoteRecognizesEscapes(t *testing.T) {
	s := newScanner(`"a\"b"`)
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `a"b`, word)
}

func TestParseWordConcatenatesAdjacentSegments(t *testing.T) {
	s := newScanner(`foo"bar"'baz'`)
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "foobarbaz", word)
}

func TestParseWordTrailingEscapeIsError(t *testing.T) {
	s := newScanner(`foo\`)
	_, _, err := s.parseWord()
	require.Error(t, err)
	ce, ok := err.(CompilerError)
	require.True(t, ok)
	assert.Equal(t, CategorySyntax, ce.Category)
}

func TestParseWordUnterminatedDoubleQuote(t *testing.T) {
	s := newScanner(`"abc`)
	_, _, err := s.parseWord()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated double quote")
}

func TestParseWordUnterminatedSingleQuote(t *testing.T) {
	s := newScanner(`'abc`)
	_, _, err := s.parseWord()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated single quote")
}

func TestParseWordStopsAtOperator(t *testing.T) {
	s := newScanner("echo|cat")
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "echo", word)
	assert.Equal(t, byte('|'), s.peek())
}

func TestParseWordEmptyAtTerminator(t *testing.T) {
	s := newScanner(" echo")
	_, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSkipInlineWhitespaceStopsAtNewline(t *testing.T) {
	s := newScanner("  \t\n echo")
	s.skipInlineWhitespace()
	assert.Equal(t, byte('\n'), s.peek())
}

func TestCRIsTokenTerminator(t *testing.T) {
	s := newScanner("echo\rcat")
	word, ok, err := s.parseWord()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "echo", word)
	assert.Equal(t, byte('\r'), s.peek())
}
