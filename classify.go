package wmbuspipe

import (
	"strings"
	"time"
)

// Mode is a wM-Bus transmission mode recognized in rtl_wmbus output
type Mode int

const (
	// ModeNone marks a line without any telegram marker
	ModeNone Mode = iota
	// ModeT1 is a T1 frame with a valid CRC
	ModeT1
	// ModeC1 is a C1 frame with a valid CRC
	ModeC1
	// ModeS1 is an S1 frame with a valid CRC
	ModeS1
)

// Mode string constants
const (
	modeNoneStr = "none"
	modeT1Str   = "T1"
	modeC1Str   = "C1"
	modeS1Str   = "S1"
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	switch m {
	case ModeT1:
		return modeT1Str
	case ModeC1:
		return modeC1Str
	case ModeS1:
		return modeS1Str
	default:
		return modeNoneStr
	}
}

// Markers are the substrings that identify a telegram line. rtl_wmbus prints
// "<mode>;<crc_ok>;..." so "T1;1" is a T1 frame whose CRC checked out.
var Markers = [...]struct {
	Mode   Mode
	Marker string
}{
	{ModeT1, "T1;1"},
	{ModeC1, "C1;1"},
	{ModeS1, "S1;1"},
}

// Line is a classified line of consumer output
type Line struct {
	// Text is the line without its trailing line terminator
	Text string
	// Match reports whether Text carries a telegram marker
	Match bool
	// Mode is the first marker found, ModeNone without a match
	Mode Mode
	// At is when the line was read
	At time.Time
}

// NewLine trims and classifies raw
func NewLine(raw string, at time.Time) Line {
	text := TrimLine(raw)
	mode, ok := Classify(text)
	return Line{Text: text, Match: ok, Mode: mode, At: at}
}

// TrimLine strips trailing '\n' and '\r' characters. It is idempotent.
func TrimLine(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// Classify reports whether s contains a telegram marker anywhere, and which.
// Matching is case-sensitive substring containment.
func Classify(s string) (Mode, bool) {
	for _, m := range Markers {
		if strings.Contains(s, m.Marker) {
			return m.Mode, true
		}
	}
	return ModeNone, false
}
