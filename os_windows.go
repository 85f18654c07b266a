package ical

// NewLine is the native newline on Windows systems. It resolves to
// WithNewLineWindows, which uses CRLF line endings as mandated by RFC 5545,
// the same line ending Calendar.SerializeTo writes by default.
const (
	NewLine = WithNewLineWindows
)
