package cli

import "github.com/charmbracelet/lipgloss"

const Logo = "◆"
const Version = "0.1.0"

var (
	Accent = lipgloss.Color("#04B575")
	Subtle = lipgloss.Color("#555555")
	Red    = lipgloss.Color("#FF4444")
	Yellow = lipgloss.Color("#D7AF00")

	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	BoldStyle   = lipgloss.NewStyle().Bold(true)
	SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	UserLabel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA"))
	ErrStyle    = lipgloss.NewStyle().Foreground(Red)
	WarnStyle   = lipgloss.NewStyle().Foreground(Yellow)
	OkStyle     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	DimStyle    = lipgloss.NewStyle().Foreground(Subtle)
)

// accentPalette maps the persisted accent color names to terminal
// colors. Unknown names keep the default.
var accentPalette = map[string]lipgloss.Color{
	"green":  lipgloss.Color("#04B575"),
	"blue":   lipgloss.Color("#00D4FF"),
	"violet": lipgloss.Color("#AF87FF"),
	"orange": lipgloss.Color("#FF8700"),
	"pink":   lipgloss.Color("#FF5FAF"),
}

// ApplyAccent switches the shared styles to the named accent color.
func ApplyAccent(name string) {
	color, ok := accentPalette[name]
	if !ok {
		return
	}
	Accent = color
	TitleStyle = TitleStyle.Foreground(Accent)
	SystemLabel = SystemLabel.Foreground(Accent)
	OkStyle = OkStyle.Foreground(Accent)
}

func StatusBadge(ok bool) string {
	if ok {
		return OkStyle.Render("✓")
	}
	return DimStyle.Render("✗")
}
