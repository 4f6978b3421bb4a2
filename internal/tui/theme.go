package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/tabula/schema"
)

type rgb struct {
	r int
	g int
	b int
}

func (c rgb) color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b))
}

type palette struct {
	TabBarBG      rgb
	TabActiveBG   rgb
	TabActiveFG   rgb
	TabInactiveBG rgb
	TabInactiveFG rgb
	DirtyFG       rgb
	ErrorFG       rgb
	MetaFG        rgb
	PromptFG      rgb
	AccentFG      rgb
	Light         bool
}

var palettes = map[schema.ThemeName]palette{
	"outrun": {
		TabBarBG:      rgb{r: 32, g: 8, b: 56},
		TabActiveBG:   rgb{r: 0, g: 229, b: 255},
		TabActiveFG:   rgb{r: 10, g: 13, b: 23},
		TabInactiveBG: rgb{r: 32, g: 8, b: 56},
		TabInactiveFG: rgb{r: 240, g: 241, b: 255},
		DirtyFG:       rgb{r: 255, g: 91, b: 189},
		ErrorFG:       rgb{r: 255, g: 107, b: 107},
		MetaFG:        rgb{r: 154, g: 163, b: 178},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		AccentFG:      rgb{r: 112, g: 214, b: 255},
	},
	"gruvbox": {
		TabBarBG:      rgb{r: 60, g: 56, b: 54},
		TabActiveBG:   rgb{r: 250, g: 189, b: 47},
		TabActiveFG:   rgb{r: 40, g: 40, b: 40},
		TabInactiveBG: rgb{r: 60, g: 56, b: 54},
		TabInactiveFG: rgb{r: 235, g: 219, b: 178},
		DirtyFG:       rgb{r: 214, g: 93, b: 14},
		ErrorFG:       rgb{r: 251, g: 73, b: 52},
		MetaFG:        rgb{r: 146, g: 131, b: 116},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		AccentFG:      rgb{r: 131, g: 165, b: 152},
	},
	"tokyo-midnight": {
		TabBarBG:      rgb{r: 26, g: 27, b: 38},
		TabActiveBG:   rgb{r: 122, g: 162, b: 247},
		TabActiveFG:   rgb{r: 26, g: 27, b: 38},
		TabInactiveBG: rgb{r: 26, g: 27, b: 38},
		TabInactiveFG: rgb{r: 192, g: 202, b: 245},
		DirtyFG:       rgb{r: 187, g: 154, b: 247},
		ErrorFG:       rgb{r: 247, g: 118, b: 142},
		MetaFG:        rgb{r: 127, g: 133, b: 163},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		AccentFG:      rgb{r: 158, g: 206, b: 106},
	},
	"paper": {
		TabBarBG:      rgb{r: 230, g: 226, b: 214},
		TabActiveBG:   rgb{r: 38, g: 70, b: 120},
		TabActiveFG:   rgb{r: 250, g: 248, b: 240},
		TabInactiveBG: rgb{r: 230, g: 226, b: 214},
		TabInactiveFG: rgb{r: 60, g: 60, b: 60},
		DirtyFG:       rgb{r: 170, g: 60, b: 20},
		ErrorFG:       rgb{r: 190, g: 30, b: 45},
		MetaFG:        rgb{r: 110, g: 110, b: 110},
		PromptFG:      rgb{r: 20, g: 20, b: 20},
		AccentFG:      rgb{r: 38, g: 110, b: 70},
		Light:         true,
	},
}

// Theme holds the pre-built styles for one color scheme.
type Theme struct {
	Name  schema.ThemeName
	Light bool

	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Dirty       lipgloss.Style
	StatusBar   lipgloss.Style
	Meta        lipgloss.Style
	Error       lipgloss.Style
	Prompt      lipgloss.Style
	Overlay     lipgloss.Style
	Selected    lipgloss.Style
}

// ThemeFor builds the styles for name, falling back to the default theme.
func ThemeFor(name schema.ThemeName) Theme {
	if name == "" {
		name = schema.DefaultTheme
	}
	p, ok := palettes[name]
	if !ok {
		name = schema.DefaultTheme
		p = palettes[name]
	}
	t := Theme{Name: name, Light: p.Light}
	t.TabBar = lipgloss.NewStyle().Background(p.TabBarBG.color())
	t.TabActive = lipgloss.NewStyle().
		Foreground(p.TabActiveFG.color()).
		Background(p.TabActiveBG.color()).
		Bold(true).
		Padding(0, 1)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(p.TabInactiveFG.color()).
		Background(p.TabInactiveBG.color()).
		Padding(0, 1)
	t.Dirty = lipgloss.NewStyle().Foreground(p.DirtyFG.color()).Bold(true)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.TabInactiveFG.color()).
		Background(p.TabBarBG.color())
	t.Meta = lipgloss.NewStyle().Foreground(p.MetaFG.color())
	t.Error = lipgloss.NewStyle().Foreground(p.ErrorFG.color()).Bold(true)
	t.Prompt = lipgloss.NewStyle().Foreground(p.PromptFG.color()).Bold(true)
	t.Overlay = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.AccentFG.color()).
		Padding(0, 1)
	t.Selected = lipgloss.NewStyle().
		Foreground(p.TabActiveFG.color()).
		Background(p.TabActiveBG.color())
	return t
}
