// Package theme holds the colour palettes used to render status listings.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/hgstat/internal/models"
)

// Theme defines the colours used by the CLI and the viewer.
type Theme struct {
	Accent   lipgloss.Color
	AccentFg lipgloss.Color // text on Accent
	Border   lipgloss.Color
	MutedFg  lipgloss.Color
	TextFg   lipgloss.Color
	ErrorFg  lipgloss.Color

	Modified   lipgloss.Color
	Added      lipgloss.Color
	Removed    lipgloss.Color
	Clean      lipgloss.Color
	Missing    lipgloss.Color
	NotTracked lipgloss.Color
	Ignored    lipgloss.Color
	Directory  lipgloss.Color
}

// Theme names.
const (
	DraculaName        = "dracula"
	NordName           = "nord"
	GruvboxDarkName    = "gruvbox-dark"
	SolarizedLightName = "solarized-light"
)

var themes = map[string]func() *Theme{
	DraculaName:        Dracula,
	NordName:           Nord,
	GruvboxDarkName:    GruvboxDark,
	SolarizedLightName: SolarizedLight,
}

// Dracula is the default palette.
func Dracula() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#BD93F9"),
		AccentFg:   lipgloss.Color("#282A36"),
		Border:     lipgloss.Color("#6272A4"),
		MutedFg:    lipgloss.Color("#6272A4"),
		TextFg:     lipgloss.Color("#F8F8F2"),
		ErrorFg:    lipgloss.Color("#FF5555"),
		Modified:   lipgloss.Color("#FFB86C"),
		Added:      lipgloss.Color("#50FA7B"),
		Removed:    lipgloss.Color("#FF5555"),
		Clean:      lipgloss.Color("#6272A4"),
		Missing:    lipgloss.Color("#FF79C6"),
		NotTracked: lipgloss.Color("#8BE9FD"),
		Ignored:    lipgloss.Color("#44475A"),
		Directory:  lipgloss.Color("#BD93F9"),
	}
}

// Nord is a cool, low-contrast dark palette.
func Nord() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#88C0D0"),
		AccentFg:   lipgloss.Color("#2E3440"),
		Border:     lipgloss.Color("#4C566A"),
		MutedFg:    lipgloss.Color("#81A1C1"),
		TextFg:     lipgloss.Color("#E5E9F0"),
		ErrorFg:    lipgloss.Color("#BF616A"),
		Modified:   lipgloss.Color("#EBCB8B"),
		Added:      lipgloss.Color("#A3BE8C"),
		Removed:    lipgloss.Color("#BF616A"),
		Clean:      lipgloss.Color("#4C566A"),
		Missing:    lipgloss.Color("#B48EAD"),
		NotTracked: lipgloss.Color("#88C0D0"),
		Ignored:    lipgloss.Color("#434C5E"),
		Directory:  lipgloss.Color("#81A1C1"),
	}
}

// GruvboxDark is a warm dark palette.
func GruvboxDark() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#FABD2F"),
		AccentFg:   lipgloss.Color("#282828"),
		Border:     lipgloss.Color("#504945"),
		MutedFg:    lipgloss.Color("#928374"),
		TextFg:     lipgloss.Color("#EBDBB2"),
		ErrorFg:    lipgloss.Color("#FB4934"),
		Modified:   lipgloss.Color("#FABD2F"),
		Added:      lipgloss.Color("#B8BB26"),
		Removed:    lipgloss.Color("#FB4934"),
		Clean:      lipgloss.Color("#928374"),
		Missing:    lipgloss.Color("#D3869B"),
		NotTracked: lipgloss.Color("#83A598"),
		Ignored:    lipgloss.Color("#504945"),
		Directory:  lipgloss.Color("#83A598"),
	}
}

// SolarizedLight is the light palette.
func SolarizedLight() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#268BD2"),
		AccentFg:   lipgloss.Color("#FDF6E3"),
		Border:     lipgloss.Color("#93A1A1"),
		MutedFg:    lipgloss.Color("#93A1A1"),
		TextFg:     lipgloss.Color("#073642"),
		ErrorFg:    lipgloss.Color("#DC322F"),
		Modified:   lipgloss.Color("#B58900"),
		Added:      lipgloss.Color("#859900"),
		Removed:    lipgloss.Color("#DC322F"),
		Clean:      lipgloss.Color("#93A1A1"),
		Missing:    lipgloss.Color("#D33682"),
		NotTracked: lipgloss.Color("#2AA198"),
		Ignored:    lipgloss.Color("#EEE8D5"),
		Directory:  lipgloss.Color("#268BD2"),
	}
}

// GetTheme returns a theme by name, or Dracula if the name is unknown.
func GetTheme(name string) *Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return Dracula()
}

// IsKnown reports whether name is a registered theme.
func IsKnown(name string) bool {
	_, ok := themes[name]
	return ok
}

// AvailableThemes returns the sorted theme names.
func AvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusColor returns the colour used for a status code.
func (t *Theme) StatusColor(code models.StatusCode) lipgloss.Color {
	switch code {
	case models.StatusModified:
		return t.Modified
	case models.StatusAdded:
		return t.Added
	case models.StatusRemoved:
		return t.Removed
	case models.StatusClean:
		return t.Clean
	case models.StatusMissing:
		return t.Missing
	case models.StatusIgnored:
		return t.Ignored
	case models.StatusDirectory:
		return t.Directory
	default:
		return t.NotTracked
	}
}
