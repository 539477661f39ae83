package hg

import (
	"fmt"

	"github.com/chmouel/hgstat/internal/models"
)

// statusPrefixLen is the width of "<code> " in hg status output.
const statusPrefixLen = 2

// ParseLine converts one line of `hg status` output into a TrackedEntry.
// The line must be non-empty; the path after the prefix is kept verbatim.
func ParseLine(line string) (models.TrackedEntry, error) {
	if line == "" {
		return models.TrackedEntry{}, fmt.Errorf("%w: empty line", ErrMalformedLine)
	}

	status, ok := models.StatusFromChar(line[0])
	if !ok {
		return models.TrackedEntry{}, fmt.Errorf("%w %q", ErrUnknownStatusCode, line[0])
	}

	if len(line) <= statusPrefixLen || line[1] != ' ' {
		return models.TrackedEntry{}, fmt.Errorf("%w: expected \"<code> <path>\"", ErrMalformedLine)
	}

	return models.TrackedEntry{
		Path:   line[statusPrefixLen:],
		Status: status,
	}, nil
}
