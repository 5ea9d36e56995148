package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/events"
	"github.com/waylis/waycli/internal/reply"
	"github.com/waylis/waycli/internal/state"
)

// --- message types ---

type resourcesMsg struct{ err error }

type historyMsg struct {
	chatID string
	older  bool
	err    error
}

type sentMsg struct {
	msg chat.Message
	err error
}

type chatChangedMsg struct{ err error }

type pushedMsg struct{ msg chat.Message }

type streamLostMsg struct{ err error }

type heartbeatLostMsg struct{}

type noticeExpiredMsg struct{ seq int }

// --- overlay modes ---

type mode int

const (
	modeInput mode = iota
	modePicker
	modeDrawer
)

// --- interactive chat model ---

type chatModel struct {
	ctx    context.Context
	app    *state.App
	engine *reply.Engine

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	mode     mode
	cursor   int
	selected map[int]bool // multi-select toggles

	// drawer sub-state
	renaming      bool
	confirmDelete bool
	renameInput   textinput.Model

	loading   bool
	waiting   bool
	notice    string
	noticeErr bool
	noticeSeq int

	ready  bool
	width  int
	height int
}

func newChatModel(ctx context.Context, app *state.App, engine *reply.Engine) chatModel {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(Accent)
	ti.CharLimit = 0
	ti.Focus()

	ri := textinput.New()
	ri.Prompt = "name ❯ "
	ri.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Accent)

	return chatModel{
		ctx:         ctx,
		app:         app,
		engine:      engine,
		input:       ti,
		renameInput: ri,
		spinner:     sp,
		selected:    map[int]bool{},
		loading:     true,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadResources())
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Fixed rows: header(1) + divider(1) + divider(1) + input(1) + hints(1).
		vpHeight := msg.Height - 5
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport(false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resourcesMsg:
		m.loading = false
		if msg.err != nil {
			return m.warnError(msg.err)
		}
		m.configureInput()
		m.refreshViewport(true)
		if active := m.app.Chats.Active(); active != nil {
			m.loading = true
			return m, m.fetchHistory(active.ID, false)
		}
		return m, nil

	case historyMsg:
		m.loading = false
		if msg.err != nil {
			return m.warnError(msg.err)
		}
		m.configureInput()
		m.refreshViewport(!msg.older)
		return m, nil

	case chatChangedMsg:
		m.loading = false
		if msg.err != nil {
			return m.warnError(msg.err)
		}
		m.mode = modeInput
		m.cursor = 0
		if active := m.app.Chats.Active(); active != nil {
			m.loading = true
			return m, m.fetchHistory(active.ID, false)
		}
		m.configureInput()
		m.refreshViewport(true)
		return m, nil

	case sentMsg:
		m.waiting = false
		if msg.err != nil {
			return m.warnError(msg.err)
		}
		m.input.SetValue("")
		m.cursor = 0
		m.selected = map[int]bool{}
		m.configureInput()
		m.refreshViewport(true)
		return m, nil

	case pushedMsg:
		if msg.msg.ChatID == m.app.Timeline.ChatID() {
			m.configureInput()
			m.refreshViewport(true)
		}
		return m, nil

	case streamLostMsg:
		return m.warn("Connection to the server lost. Live updates are off.", true)

	case heartbeatLostMsg:
		return m.warn("No heartbeat from the server. Check your connection.", true)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.waiting || m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.routeToWidgets(msg)
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modePicker:
		return m.handlePickerKey(msg)
	case modeDrawer:
		return m.handleDrawerKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlD:
		return m, tea.Quit
	case tea.KeyCtrlB:
		m.mode = modeDrawer
		m.cursor = m.activeChatIndex()
		m.renaming = false
		m.confirmDelete = false
		return m, nil
	case tea.KeyCtrlP:
		if !m.app.Timeline.EndReached() && !m.loading {
			if active := m.app.Chats.Active(); active != nil {
				m.loading = true
				return m, m.fetchHistory(active.ID, true)
			}
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}

	// One snapshot of the open question for the whole keystroke: the
	// pacer can push a superseding message concurrently, and the
	// modality, the limits and the replyTo must all come from the same
	// state.
	replyTo, expected := m.engine.Pending()
	kind := reply.Resolve(expected)
	switch kind {
	case reply.KindCommand:
		if msg.Type == tea.KeyEnter {
			m.mode = modePicker
			m.cursor = 0
		}
		return m, nil
	case reply.KindBoolean:
		switch strings.ToLower(msg.String()) {
		case "y":
			return m.submit(reply.BooleanBody(true), replyTo, nil)
		case "n":
			return m.submit(reply.BooleanBody(false), replyTo, nil)
		}
		return m, nil
	case reply.KindOption:
		return m.handleOptionKey(msg, false, expected, replyTo)
	case reply.KindOptions:
		return m.handleOptionKey(msg, true, expected, replyTo)
	}

	if msg.Type == tea.KeyEnter {
		return m.submitTyped(kind, expected, replyTo)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitTyped packages the text widget's value per the expected kind.
func (m chatModel) submitTyped(kind reply.Kind, expected *chat.ReplyRestriction, replyTo string) (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())

	switch kind {
	case reply.KindText:
		var limits *chat.TextLimits
		if expected != nil {
			limits = expected.Text
		}
		return m.submit(chat.Body{}, replyTo, func() (chat.Body, error) { return reply.TextBody(raw, limits) })

	case reply.KindNumber:
		var limits *chat.NumberLimits
		if expected != nil {
			limits = expected.Number
		}
		return m.submit(chat.Body{}, replyTo, func() (chat.Body, error) { return reply.NumberBody(raw, limits) })

	case reply.KindDatetime:
		var limits *chat.DatetimeLimits
		if expected != nil {
			limits = expected.Datetime
		}
		return m.submit(chat.Body{}, replyTo, func() (chat.Body, error) {
			ts, err := parseDatetimeInput(raw)
			if err != nil {
				return chat.Body{}, err
			}
			return reply.DatetimeBody(ts, limits)
		})

	case reply.KindFile:
		if raw == "" {
			return m.warn("Enter a file path first.", false)
		}
		f, err := reply.LocalFileFromPath(raw)
		if err != nil {
			return m.warnError(err)
		}
		m.waiting = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			msg, err := m.engine.SubmitFile(m.ctx, f)
			return sentMsg{msg: msg, err: err}
		})

	case reply.KindFiles:
		paths := strings.Fields(raw)
		if len(paths) == 0 {
			return m.warn("Enter one or more file paths first.", false)
		}
		files := make([]reply.LocalFile, 0, len(paths))
		for _, p := range paths {
			f, err := reply.LocalFileFromPath(p)
			if err != nil {
				return m.warnError(err)
			}
			files = append(files, f)
		}
		m.waiting = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			msg, err := m.engine.SubmitFiles(m.ctx, files)
			return sentMsg{msg: msg, err: err}
		})
	}
	return m, nil
}

// submit sends a body, building it first when build is non-nil. A
// validation failure becomes a transient warning and the entered value
// stays put.
func (m chatModel) submit(body chat.Body, replyTo string, build func() (chat.Body, error)) (tea.Model, tea.Cmd) {
	if build != nil {
		built, err := build()
		if err != nil {
			return m.warnError(err)
		}
		body = built
	}
	m.waiting = true
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		msg, err := m.engine.SubmitBody(m.ctx, body, replyTo)
		return sentMsg{msg: msg, err: err}
	})
}

// handleOptionKey operates on the restriction snapshot taken by
// handleKey. When a pushed message has cleared the question since,
// enter is a no-op rather than a submission against stale choices.
func (m chatModel) handleOptionKey(msg tea.KeyMsg, multi bool, expected *chat.ReplyRestriction, replyTo string) (tea.Model, tea.Cmd) {
	opts := optionsOf(expected)
	switch msg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(opts)-1 {
			m.cursor++
		}
	case tea.KeySpace:
		if multi {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case tea.KeyEnter:
		if expected == nil || len(opts) == 0 {
			return m, nil
		}
		if !multi {
			value := opts[m.cursor].Value
			return m.submit(chat.Body{}, replyTo, func() (chat.Body, error) {
				return reply.OptionBody(value, expected.Option)
			})
		}
		var values []string
		for i, o := range opts {
			if m.selected[i] {
				values = append(values, o.Value)
			}
		}
		return m.submit(chat.Body{}, replyTo, func() (chat.Body, error) {
			return reply.OptionsBody(values, expected.Options)
		})
	}
	return m, nil
}

func (m chatModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmds := m.app.Catalog.Commands()
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeInput
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(cmds)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if len(cmds) == 0 || m.waiting {
			return m, nil
		}
		value := cmds[m.cursor].Value
		m.mode = modeInput
		m.waiting = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			msg, err := m.engine.SubmitCommand(m.ctx, value)
			return sentMsg{msg: msg, err: err}
		})
	}
	return m, nil
}

func (m chatModel) handleDrawerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chats := m.app.Chats.Chats()

	if m.renaming {
		switch msg.Type {
		case tea.KeyEsc:
			m.renaming = false
			return m, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.renameInput.Value())
			if name == "" || m.cursor >= len(chats) {
				return m.warn("Enter a name first.", false)
			}
			id := chats[m.cursor].ID
			m.renaming = false
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				_, err := m.app.Chats.RenameChat(m.ctx, id, name)
				return chatChangedMsg{err: err}
			})
		}
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}

	if m.confirmDelete {
		switch strings.ToLower(msg.String()) {
		case "y":
			if m.cursor >= len(chats) {
				m.confirmDelete = false
				return m, nil
			}
			id := chats[m.cursor].ID
			m.confirmDelete = false
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				_, err := m.app.Chats.DeleteChat(m.ctx, id)
				return chatChangedMsg{err: err}
			})
		case "n":
			m.confirmDelete = false
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlB:
		m.mode = modeInput
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(chats)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if m.cursor < len(chats) {
			c := chats[m.cursor]
			m.app.Chats.SetActive(&c)
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return chatChangedMsg{}
			})
		}
	}

	switch msg.String() {
	case "n":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			created, err := m.app.Chats.CreateChat(m.ctx, "")
			if err == nil {
				m.app.Chats.SetActive(&created)
			}
			return chatChangedMsg{err: err}
		})
	case "r":
		if m.cursor < len(chats) {
			m.renaming = true
			m.renameInput.SetValue(chats[m.cursor].Name)
			return m, m.renameInput.Focus()
		}
	case "d":
		if m.cursor < len(chats) {
			m.confirmDelete = true
		}
	}
	return m, nil
}

func (m chatModel) routeToWidgets(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	if m.mode == modeDrawer && m.renaming {
		m.renameInput, cmd = m.renameInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// --- async commands ---

func (m chatModel) loadResources() tea.Cmd {
	return func() tea.Msg {
		return resourcesMsg{err: m.app.LoadResources(m.ctx)}
	}
}

func (m chatModel) fetchHistory(chatID string, older bool) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Timeline.FetchMessages(m.ctx, chatID)
		return historyMsg{chatID: chatID, older: older, err: err}
	}
}

// --- notices ---

func (m chatModel) warnError(err error) (tea.Model, tea.Cmd) {
	return m.warn(err.Error(), !reply.IsValidation(err))
}

func (m chatModel) warn(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	seq := m.noticeSeq
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// --- helpers ---

func (m *chatModel) configureInput() {
	expected := m.engine.Expected()
	kind := reply.Resolve(expected)
	m.input.Placeholder = promptFor(kind, expected)
	m.input.CharLimit = 0
	if kind == reply.KindText && expected != nil && expected.Text != nil {
		m.input.CharLimit = expected.Text.MaxLength
	}
}

func (m *chatModel) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	msgs := m.app.Timeline.Messages()
	if len(msgs) == 0 {
		m.viewport.SetContent(m.renderWelcome())
		return
	}
	prefs := m.app.Store.Settings()
	content := ""
	if !m.app.Timeline.EndReached() {
		content = "\n  " + DimStyle.Render("ctrl+p to load older messages") + "\n"
	}
	content += renderTimeline(msgs, renderOptions{
		width:     m.width,
		maxWidth:  prefs.MaxMessageWidth,
		showTimes: prefs.ShowMessageTimes,
		appName:   m.app.Info.Name,
		catalog:   m.app.Catalog,
	})
	m.viewport.SetContent(content)
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m chatModel) expectedOptions() []chat.Option {
	return optionsOf(m.engine.Expected())
}

func optionsOf(expected *chat.ReplyRestriction) []chat.Option {
	if expected == nil {
		return nil
	}
	switch {
	case expected.Option != nil:
		return expected.Option.Options
	case expected.Options != nil:
		return expected.Options.Options
	}
	return nil
}

func (m chatModel) activeChatIndex() int {
	active := m.app.Chats.Active()
	if active == nil {
		return 0
	}
	for i, c := range m.app.Chats.Chats() {
		if c.ID == active.ID {
			return i
		}
	}
	return 0
}

func parseDatetimeInput(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &reply.ValidationError{Reason: "use the YYYY-MM-DD HH:MM format"}
}

// --- view ---

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	title := m.app.Info.Name
	if active := m.app.Chats.Active(); active != nil {
		title += DimStyle.Render(" · " + chat.TrimLongText(active.Name, 48))
	}
	header := " " + TitleStyle.Render(Logo+" ") + BoldStyle.Render(title)
	divider := DimStyle.Render(strings.Repeat("─", m.width))

	var middle string
	switch m.mode {
	case modePicker:
		middle = m.renderPicker()
	case modeDrawer:
		middle = m.renderDrawer()
	default:
		middle = m.viewport.View()
	}

	return header + "\n" +
		divider + "\n" +
		middle + "\n" +
		divider + "\n" +
		m.renderInputLine() + "\n" +
		m.renderHints()
}

func (m chatModel) renderInputLine() string {
	if m.notice != "" {
		style := WarnStyle
		if m.noticeErr {
			style = ErrStyle
		}
		return " " + style.Render(m.notice)
	}
	if m.waiting || m.loading {
		return fmt.Sprintf(" %s Waiting...", m.spinner.View())
	}

	switch reply.Resolve(m.engine.Expected()) {
	case reply.KindCommand:
		return " " + DimStyle.Render("No reply expected — press enter to pick a command")
	case reply.KindBoolean:
		return " " + BoldStyle.Render("y") + DimStyle.Render(" yes · ") +
			BoldStyle.Render("n") + DimStyle.Render(" no")
	case reply.KindOption, reply.KindOptions:
		return m.renderOptionLine()
	default:
		return " " + m.input.View()
	}
}

func (m chatModel) renderOptionLine() string {
	opts := m.expectedOptions()
	if len(opts) == 0 {
		return " " + DimStyle.Render("No options offered")
	}
	multi := reply.Resolve(m.engine.Expected()) == reply.KindOptions

	parts := make([]string, len(opts))
	for i, o := range opts {
		label := o.DisplayLabel()
		if multi {
			mark := "○"
			if m.selected[i] {
				mark = "●"
			}
			label = mark + " " + label
		}
		if i == m.cursor {
			parts[i] = SystemLabel.Render("❯ " + label)
		} else {
			parts[i] = "  " + label
		}
	}
	return " " + strings.Join(parts, "   ")
}

func (m chatModel) renderPicker() string {
	cmds := m.app.Catalog.Commands()
	var sb strings.Builder
	sb.WriteString("\n  " + BoldStyle.Render("Commands") + "\n\n")
	if len(cmds) == 0 {
		sb.WriteString(DimStyle.Render("  The server offers no commands.") + "\n")
	}
	for i, c := range cmds {
		cursor := "  "
		if i == m.cursor {
			cursor = SystemLabel.Render("❯ ")
		}
		line := "  " + cursor + c.DisplayLabel()
		if c.Description != "" {
			line += "  " + DimStyle.Render(c.Description)
		}
		sb.WriteString(line + "\n")
	}
	return m.padPanel(sb.String())
}

func (m chatModel) renderDrawer() string {
	chats := m.app.Chats.Chats()
	active := m.app.Chats.Active()

	var sb strings.Builder
	sb.WriteString("\n  " + BoldStyle.Render("Chats") + "\n\n")
	if len(chats) == 0 {
		sb.WriteString(DimStyle.Render("  No chats yet — press n to create one.") + "\n")
	}
	for i, c := range chats {
		cursor := "  "
		if i == m.cursor {
			cursor = SystemLabel.Render("❯ ")
		}
		name := chat.TrimLongText(c.Name, 48)
		if active != nil && c.ID == active.ID {
			name = OkStyle.Render(name)
		}
		sb.WriteString("  " + cursor + name + "\n")
	}

	if m.renaming {
		sb.WriteString("\n  " + m.renameInput.View() + "\n")
	}
	if m.confirmDelete && m.cursor < len(chats) {
		sb.WriteString("\n  " + WarnStyle.Render(
			fmt.Sprintf("Delete %q and all its messages? y / n", chats[m.cursor].Name)) + "\n")
	}
	return m.padPanel(sb.String())
}

// padPanel pads overlay content to the viewport height so the layout
// does not jump between modes.
func (m chatModel) padPanel(content string) string {
	lines := strings.Count(content, "\n")
	for lines < m.viewport.Height-1 {
		content += "\n"
		lines++
	}
	return strings.TrimSuffix(content, "\n")
}

func (m chatModel) renderWelcome() string {
	var sb strings.Builder
	sb.WriteString("\n  " + TitleStyle.Render(Logo+" "+m.app.Info.Name) + "\n\n")
	for _, line := range strings.Split(m.app.Info.Description, "\n") {
		sb.WriteString(DimStyle.Render("  "+line) + "\n")
	}
	return sb.String()
}

func (m chatModel) renderHints() string {
	var hints []string
	switch m.mode {
	case modeDrawer:
		hints = []string{"enter open", "n new", "r rename", "d delete", "esc close"}
	case modePicker:
		hints = []string{"↑/↓ navigate", "enter invoke", "esc close"}
	default:
		hints = []string{"ctrl+b chats", "pgup/pgdn scroll", "ctrl+c quit"}
		if reply.Resolve(m.engine.Expected()) == reply.KindOptions {
			hints = append([]string{"space toggle", "enter submit"}, hints...)
		}
	}
	return DimStyle.Render(" " + strings.Join(hints, " · "))
}

// RunChat starts the interactive chat TUI and binds the live update
// channel into it.
func RunChat(ctx context.Context, app *state.App, stream *events.Stream) error {
	engine := reply.NewEngine(app)
	p := tea.NewProgram(newChatModel(ctx, app, engine), tea.WithAltScreen())

	pacer := events.NewPacer()
	watchdog := events.NewWatchdog(0, 0, func(time.Duration) {
		p.Send(heartbeatLostMsg{})
	})
	stream.OnError = func(err error) {
		p.Send(streamLostMsg{err: err})
	}
	stream.Subscribe(ctx, events.KindHeartbeat, func(events.Event) {
		watchdog.Mark()
	})
	stream.Subscribe(ctx, events.KindNewSystemResponse, func(ev events.Event) {
		sinceReply := time.Since(app.Timeline.LastUserReplyAt())
		go pacer.Deliver(ctx, sinceReply, ev.Messages, func(msg chat.Message) {
			app.Timeline.Append(msg)
			p.Send(pushedMsg{msg: msg})
		})
	})

	wdCtx, stopWatchdog := context.WithCancel(ctx)
	defer stopWatchdog()
	go watchdog.Run(wdCtx)

	_, err := p.Run()
	stream.Close()
	return err
}
