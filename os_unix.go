//go:build !windows

package ical

// NewLine is the native newline on non-Windows systems. It resolves to
// WithNewLineUnix, which uses LF line endings. Serialization does not use
// it by default: Calendar.SerializeTo writes CRLF unless a WithNewLine
// option is given.
const (
	NewLine = WithNewLineUnix
)
