package desktop

import "github.com/gdamore/tcell/v2"

// Theme is a frame color palette.
type Theme struct {
	Name       string
	Desktop    tcell.Style
	Border     tcell.Style
	Focused    tcell.Style
	Tab        tcell.Style
	ActiveTab  tcell.Style
	Text       tcell.Style
	StatusLine tcell.Style
}

// DefaultTheme is used for unknown theme names.
const DefaultTheme = "dark"

var themeOrder = []string{"dark", "light", "solarized"}

var themes = map[string]Theme{
	"dark": {
		Name:       "dark",
		Desktop:    tcell.StyleDefault.Background(tcell.ColorBlack),
		Border:     tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack),
		Focused:    tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack).Bold(true),
		Tab:        tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorDarkSlateGray),
		ActiveTab:  tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true),
		Text:       tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack),
		StatusLine: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver),
	},
	"light": {
		Name:       "light",
		Desktop:    tcell.StyleDefault.Background(tcell.ColorSilver),
		Border:     tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorWhite),
		Focused:    tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite).Bold(true),
		Tab:        tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray),
		ActiveTab:  tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorTeal).Bold(true),
		Text:       tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite),
		StatusLine: tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGray),
	},
	"solarized": {
		Name:       "solarized",
		Desktop:    tcell.StyleDefault.Background(tcell.NewHexColor(0x002b36)),
		Border:     tcell.StyleDefault.Foreground(tcell.NewHexColor(0x586e75)).Background(tcell.NewHexColor(0x073642)),
		Focused:    tcell.StyleDefault.Foreground(tcell.NewHexColor(0x93a1a1)).Background(tcell.NewHexColor(0x073642)).Bold(true),
		Tab:        tcell.StyleDefault.Foreground(tcell.NewHexColor(0x839496)).Background(tcell.NewHexColor(0x002b36)),
		ActiveTab:  tcell.StyleDefault.Foreground(tcell.NewHexColor(0xfdf6e3)).Background(tcell.NewHexColor(0x268bd2)).Bold(true),
		Text:       tcell.StyleDefault.Foreground(tcell.NewHexColor(0x839496)).Background(tcell.NewHexColor(0x073642)),
		StatusLine: tcell.StyleDefault.Foreground(tcell.NewHexColor(0x002b36)).Background(tcell.NewHexColor(0x93a1a1)),
	},
}

// ThemeNames returns the built-in theme names in cycle order.
func ThemeNames() []string {
	out := make([]string, len(themeOrder))
	copy(out, themeOrder)
	return out
}

// LookupTheme returns the named theme.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// NextTheme returns the theme after name in cycle order.
func NextTheme(name string) string {
	for i, n := range themeOrder {
		if n == name {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

func themeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultTheme]
}
