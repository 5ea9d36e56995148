package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/reply"
	"github.com/waylis/waycli/internal/state"
)

// renderOptions controls how a timeline is rendered into the viewport.
type renderOptions struct {
	width     int
	maxWidth  int
	showTimes bool
	appName   string
	catalog   *state.Catalog
}

// renderTimeline renders the chronological message sequence. The whole
// loaded window is passed so option answers can resolve their labels
// from the question they reply to.
func renderTimeline(msgs []chat.Message, opts renderOptions) string {
	var sb strings.Builder
	for i := range msgs {
		sb.WriteString("\n")
		sb.WriteString(renderMessage(&msgs[i], msgs, opts))
	}
	return sb.String()
}

func renderMessage(m *chat.Message, window []chat.Message, opts renderOptions) string {
	label := UserLabel.Render("You")
	if m.IsSystem() {
		label = SystemLabel.Render(opts.appName)
	}
	if opts.showTimes && !m.CreatedAt.IsZero() {
		label += " " + DimStyle.Render(m.CreatedAt.Local().Format("15:04"))
	}

	body := renderBody(m, window, opts.catalog)
	width := opts.maxWidth
	if opts.width > 0 && opts.width-4 < width {
		width = opts.width - 4
	}
	if width > 0 {
		body = lipgloss.NewStyle().Width(width).Render(body)
	}

	var sb strings.Builder
	sb.WriteString("  " + label + "\n")
	for _, line := range strings.Split(body, "\n") {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// renderBody formats one message body per its tag.
func renderBody(m *chat.Message, window []chat.Message, catalog *state.Catalog) string {
	b := m.Body
	switch b.Type {
	case chat.BodyCommand:
		return "▸ " + catalog.Label(b.Command)
	case chat.BodyText, chat.BodyMarkdown:
		if b.Type == chat.BodyMarkdown {
			return b.Markdown
		}
		return b.Text
	case chat.BodyNumber:
		return strconv.FormatFloat(b.Number, 'f', -1, 64)
	case chat.BodyBoolean:
		if b.Bool {
			return "Yes"
		}
		return "No"
	case chat.BodyDatetime:
		return b.Datetime.Local().Format("2006-01-02 15:04")
	case chat.BodyOption:
		return strings.Join(reply.ResolveOptionLabels([]string{b.Option}, *m, window), ", ")
	case chat.BodyOptions:
		return strings.Join(reply.ResolveOptionLabels(b.Options, *m, window), ", ")
	case chat.BodyFile:
		return renderFile(b.File)
	case chat.BodyFiles:
		parts := make([]string, len(b.Files))
		for i, f := range b.Files {
			parts[i] = renderFile(f)
		}
		return strings.Join(parts, "\n")
	default:
		return DimStyle.Render("(unsupported message)")
	}
}

func renderFile(f chat.FileMeta) string {
	return fmt.Sprintf("%s %s %s",
		fileGlyph(f.MimeType), f.Name, DimStyle.Render(chat.FormatBytes(f.Size)))
}

func fileGlyph(mimeType string) string {
	switch chat.CategorizeMime(mimeType) {
	case chat.MimeImage:
		return "🖼"
	case chat.MimeAudio:
		return "♪"
	case chat.MimeVideo:
		return "▶"
	default:
		return "📄"
	}
}

// promptFor describes the open question under the input line.
func promptFor(kind reply.Kind, expected *chat.ReplyRestriction) string {
	switch kind {
	case reply.KindCommand:
		return "Press enter to pick a command"
	case reply.KindText:
		return "Type a message..."
	case reply.KindNumber:
		return numberPrompt(expected)
	case reply.KindBoolean:
		return "y / n"
	case reply.KindDatetime:
		return "YYYY-MM-DD HH:MM"
	case reply.KindFile:
		return "Path to a file..."
	case reply.KindFiles:
		return "Paths to files, space-separated..."
	default:
		return ""
	}
}

func numberPrompt(expected *chat.ReplyRestriction) string {
	if expected == nil || expected.Number == nil {
		return "Enter a number..."
	}
	l := expected.Number
	switch {
	case l.Min != nil && l.Max != nil:
		return fmt.Sprintf("Enter a number (%v to %v)...", *l.Min, *l.Max)
	case l.Min != nil:
		return fmt.Sprintf("Enter a number (at least %v)...", *l.Min)
	case l.Max != nil:
		return fmt.Sprintf("Enter a number (at most %v)...", *l.Max)
	default:
		return "Enter a number..."
	}
}
