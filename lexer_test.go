package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexerReadLineUnfoldsContinuations(t *testing.T) {
	input := "SUMMARY:This is a long\r\n description that wraps\r\n\tacross three lines\r\n"
	lx := NewLexer(strings.NewReader(input))
	line, err := lx.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ContentLine("SUMMARY:This is a longdescription that wrapsacross three lines"), *line)
}

func TestLexerReadLineBareLF(t *testing.T) {
	lx := NewLexer(strings.NewReader("UID:abc\nSUMMARY:x\n"))
	line, err := lx.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ContentLine("UID:abc"), *line)
	line, err = lx.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ContentLine("SUMMARY:x"), *line)
}

func TestLexerReadLineBareCRIsRejected(t *testing.T) {
	lx := NewLexer(strings.NewReader("UID:a\rbc\r\n"))
	_, err := lx.ReadLine()
	assert.Error(t, err)
	var lexErr *LexError
	assert.ErrorAs(t, err, &lexErr)
}

func TestLexerReadLineStripsLeadingBOM(t *testing.T) {
	lx := NewLexer(strings.NewReader("\xEF\xBB\xBFBEGIN:VCALENDAR\r\n"))
	line, err := lx.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ContentLine("BEGIN:VCALENDAR"), *line)
}

func TestLexerReadLineEOFWithoutTrailingNewline(t *testing.T) {
	lx := NewLexer(strings.NewReader("END:VCALENDAR"))
	line, err := lx.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ContentLine("END:VCALENDAR"), *line)
	_, err = lx.ReadLine()
	assert.Error(t, err)
}
