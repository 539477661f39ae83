package models

import "fmt"

// StatusCode is the state of a path in the working directory.
// The zero value is StatusNotTracked.
type StatusCode int

const (
	StatusNotTracked StatusCode = iota
	StatusModified
	StatusAdded
	StatusRemoved
	StatusClean
	StatusMissing
	StatusIgnored
	// StatusDirectory is never reported by hg; it is synthesized for directory queries.
	StatusDirectory
)

var statusNames = map[StatusCode]string{
	StatusNotTracked: "not-tracked",
	StatusModified:   "modified",
	StatusAdded:      "added",
	StatusRemoved:    "removed",
	StatusClean:      "clean",
	StatusMissing:    "missing",
	StatusIgnored:    "ignored",
	StatusDirectory:  "directory",
}

var statusChars = map[StatusCode]byte{
	StatusNotTracked: '?',
	StatusModified:   'M',
	StatusAdded:      'A',
	StatusRemoved:    'R',
	StatusClean:      'C',
	StatusMissing:    '!',
	StatusIgnored:    'I',
	StatusDirectory:  '/',
}

// ParsedStatusCodes lists the codes hg can emit, in the order hg documents them.
var ParsedStatusCodes = []StatusCode{
	StatusModified,
	StatusAdded,
	StatusRemoved,
	StatusClean,
	StatusMissing,
	StatusNotTracked,
	StatusIgnored,
}

func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(%d)", int(s))
}

// Char returns the single character hg uses for the status.
func (s StatusCode) Char() byte {
	if c, ok := statusChars[s]; ok {
		return c
	}
	return '?'
}

// StatusFromChar maps an hg status character to its code.
// The second return value is false for characters hg does not define.
// Directory is not reachable from here since hg never prints it.
func StatusFromChar(c byte) (StatusCode, bool) {
	switch c {
	case 'M':
		return StatusModified, true
	case 'A':
		return StatusAdded, true
	case 'R':
		return StatusRemoved, true
	case 'C':
		return StatusClean, true
	case '!':
		return StatusMissing, true
	case '?':
		return StatusNotTracked, true
	case 'I':
		return StatusIgnored, true
	default:
		return StatusNotTracked, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s StatusCode) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid status code %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// It accepts the long name ("modified") or the hg character ("M").
func (s *StatusCode) UnmarshalText(text []byte) error {
	value := string(text)
	for code, name := range statusNames {
		if name == value {
			*s = code
			return nil
		}
	}
	if len(text) == 1 {
		if code, ok := StatusFromChar(text[0]); ok {
			*s = code
			return nil
		}
		if text[0] == '/' {
			*s = StatusDirectory
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", value)
}
