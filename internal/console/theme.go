package console

import "github.com/charmbracelet/lipgloss"

// DefaultTheme is used when no theme or an unknown theme is configured.
const DefaultTheme = "outrun"

type palette struct {
	TabBarBG      string
	TabActiveBG   string
	TabActiveFG   string
	TabInactiveFG string
	ModifiedFG    string
	ErrorFG       string
	MetaFG        string
	GutterFG      string
}

var palettes = map[string]palette{
	"outrun": {
		TabBarBG:      "#200838",
		TabActiveBG:   "#00e5ff",
		TabActiveFG:   "#0a0d17",
		TabInactiveFG: "#f0f1ff",
		ModifiedFG:    "#ff5bbd",
		ErrorFG:       "#ff6b6b",
		MetaFG:        "#9aa3b2",
		GutterFG:      "#3c4fb8",
	},
	"gruvbox": {
		TabBarBG:      "#3c3836",
		TabActiveBG:   "#fabd2f",
		TabActiveFG:   "#282828",
		TabInactiveFG: "#ebdbb2",
		ModifiedFG:    "#d65d0e",
		ErrorFG:       "#fb4934",
		MetaFG:        "#928374",
		GutterFG:      "#665c54",
	},
	"tokyo-midnight": {
		TabBarBG:      "#1a1b26",
		TabActiveBG:   "#7aa2f7",
		TabActiveFG:   "#1a1b26",
		TabInactiveFG: "#c0caf5",
		ModifiedFG:    "#bb9af7",
		ErrorFG:       "#f7768e",
		MetaFG:        "#7f85a3",
		GutterFG:      "#3b4f9f",
	},
}

// Themes lists the available theme names.
func Themes() []string {
	return []string{"gruvbox", "outrun", "tokyo-midnight"}
}

type theme struct {
	name      string
	bar       lipgloss.Style
	tabActive lipgloss.Style
	tab       lipgloss.Style
	modified  lipgloss.Style
	status    lipgloss.Style
	errorLine lipgloss.Style
	meta      lipgloss.Style
	gutter    lipgloss.Style
}

func themeForName(name string) theme {
	p, ok := palettes[name]
	if !ok {
		name = DefaultTheme
		p = palettes[DefaultTheme]
	}
	return theme{
		name:      name,
		bar:       lipgloss.NewStyle().Background(lipgloss.Color(p.TabBarBG)),
		tabActive: lipgloss.NewStyle().Background(lipgloss.Color(p.TabActiveBG)).Foreground(lipgloss.Color(p.TabActiveFG)).Bold(true).Padding(0, 1),
		tab:       lipgloss.NewStyle().Background(lipgloss.Color(p.TabBarBG)).Foreground(lipgloss.Color(p.TabInactiveFG)).Padding(0, 1),
		modified:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.ModifiedFG)).Bold(true),
		status:    lipgloss.NewStyle().Background(lipgloss.Color(p.TabBarBG)).Foreground(lipgloss.Color(p.MetaFG)),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color(p.ErrorFG)),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.MetaFG)),
		gutter:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.GutterFG)),
	}
}
