package schema

import "strings"

// DefaultTheme is the default UI theme name.
const DefaultTheme ThemeName = "outrun"

var themeNames = []ThemeName{
	"outrun",
	"gruvbox",
	"tokyo-midnight",
	"paper",
}

// AvailableThemes returns the supported theme names.
func AvailableThemes() []ThemeName {
	out := make([]ThemeName, len(themeNames))
	copy(out, themeNames)
	return out
}

// ParseThemeName maps user input onto a supported theme.
func ParseThemeName(name string) (ThemeName, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	switch normalized {
	case "":
		return DefaultTheme, nil
	case "outrun", "outrun-electric":
		return "outrun", nil
	case "gruvbox":
		return "gruvbox", nil
	case "tokyo-midnight", "tokyo":
		return "tokyo-midnight", nil
	case "paper", "light":
		return "paper", nil
	default:
		return "", ErrInvalidTheme
	}
}
