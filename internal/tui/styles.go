package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app        lipgloss.Style
	header     lipgloss.Style
	fileHeader lipgloss.Style
	selected   lipgloss.Style
	footer     lipgloss.Style
	inactive   lipgloss.Style
	error      lipgloss.Style
	reviewed   lipgloss.Style
	unreviewed lipgloss.Style
	stale      lipgloss.Style
	diffAdd    lipgloss.Style
	diffDel    lipgloss.Style
	diffCtx    lipgloss.Style
	modal      lipgloss.Style
	prompt     lipgloss.Style
}

type ThemeName string

const (
	ThemeDefault ThemeName = "default"
	ThemeMatrix  ThemeName = "matrix"
	ThemeDracula ThemeName = "dracula"
	ThemePaper   ThemeName = "paper"
)

type themePalette struct {
	Primary  lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
	Inactive lipgloss.Color
	Added    lipgloss.Color
	Removed  lipgloss.Color
}

var palettes = map[ThemeName]themePalette{
	ThemeDefault: {
		Primary:  lipgloss.Color("39"),
		Success:  lipgloss.Color("42"),
		Warning:  lipgloss.Color("214"),
		Error:    lipgloss.Color("196"),
		Inactive: lipgloss.Color("240"),
		Added:    lipgloss.Color("42"),
		Removed:  lipgloss.Color("203"),
	},
	ThemeMatrix: {
		Primary:  lipgloss.Color("82"),
		Success:  lipgloss.Color("46"),
		Warning:  lipgloss.Color("190"),
		Error:    lipgloss.Color("196"),
		Inactive: lipgloss.Color("240"),
		Added:    lipgloss.Color("82"),
		Removed:  lipgloss.Color("124"),
	},
	ThemeDracula: {
		Primary:  lipgloss.Color("141"),
		Success:  lipgloss.Color("84"),
		Warning:  lipgloss.Color("212"),
		Error:    lipgloss.Color("203"),
		Inactive: lipgloss.Color("240"),
		Added:    lipgloss.Color("84"),
		Removed:  lipgloss.Color("203"),
	},
	ThemePaper: {
		Primary:  lipgloss.Color("25"),
		Success:  lipgloss.Color("28"),
		Warning:  lipgloss.Color("130"),
		Error:    lipgloss.Color("124"),
		Inactive: lipgloss.Color("245"),
		Added:    lipgloss.Color("28"),
		Removed:  lipgloss.Color("124"),
	},
}

// GetTheme resolves a theme name to its style set, falling back to the
// default palette for unknown names.
func GetTheme(theme ThemeName) styles {
	if palette, ok := palettes[theme]; ok {
		return newStylesFromPalette(palette)
	}
	return newStylesFromPalette(palettes[ThemeDefault])
}

// ListThemes returns the known theme names.
func ListThemes() []ThemeName {
	return []ThemeName{ThemeDefault, ThemeMatrix, ThemeDracula, ThemePaper}
}

func newStylesFromPalette(p themePalette) styles {
	return styles{
		app: lipgloss.NewStyle().Margin(0, 1),
		header: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			MarginBottom(1),
		fileHeader: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),
		selected: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Reverse(true),
		footer: lipgloss.NewStyle().
			MarginTop(1).
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Inactive).
			PaddingTop(1).
			Foreground(p.Inactive),
		inactive:   lipgloss.NewStyle().Foreground(p.Inactive),
		error:      lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		reviewed:   lipgloss.NewStyle().Foreground(p.Success),
		unreviewed: lipgloss.NewStyle().Foreground(p.Warning),
		stale:      lipgloss.NewStyle().Foreground(p.Error),
		diffAdd:    lipgloss.NewStyle().Foreground(p.Added),
		diffDel:    lipgloss.NewStyle().Foreground(p.Removed),
		diffCtx:    lipgloss.NewStyle().Foreground(p.Inactive),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Warning).
			Padding(1, 2),
		prompt: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
	}
}
