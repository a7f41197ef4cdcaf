package styles

import "github.com/charmbracelet/lipgloss"

// ThemedStyles contains the lipgloss styles built from a color palette, so
// the whole set can be regenerated when the theme changes.
type ThemedStyles struct {
	Theme ThemeName

	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Spinner lipgloss.Style

	Button        lipgloss.Style
	ButtonLoading lipgloss.Style

	ContentBox lipgloss.Style

	HelpBar lipgloss.Style
	HelpKey lipgloss.Style
}

// NewThemedStyles builds the styles for the named theme.
func NewThemedStyles(name ThemeName) *ThemedStyles {
	p := GetPalette(name)
	if !IsValidTheme(string(name)) {
		name = ThemeDefault
	}

	return &ThemedStyles{
		Theme: name,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(p.Muted),

		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),

		Error: lipgloss.NewStyle().
			Foreground(p.Error),

		Muted: lipgloss.NewStyle().
			Foreground(p.Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(p.Secondary),

		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Primary).
			Padding(0, 2),

		ButtonLoading: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface).
			Padding(0, 2),

		ContentBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),

		HelpBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),
	}
}
