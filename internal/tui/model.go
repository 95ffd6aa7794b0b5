package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// exchangeDoneMsg is sent when a running exchange settles
type exchangeDoneMsg struct {
	result chat.Result
}

// Options configures the chat model
type Options struct {
	ModelName string
	Render    render.Options
	// CopyFunc writes to the clipboard; defaults to clipboard.WriteAll
	CopyFunc func(string) error
	// ExportDir is where /export without a path writes
	ExportDir string
}

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	controller *chat.Controller
	opts       Options

	viewport viewport.Model
	textarea textarea.Model

	turns          []models.Turn
	sending        bool
	ready          bool
	animationFrame int

	notice    string
	noticeErr bool

	renderer *render.Renderer
	// rendered caches glamour output of bot replies keyed by width and text
	rendered map[string]string

	width  int
	height int
}

// NewChatModel creates a chat model driving controller
func NewChatModel(ctx context.Context, controller *chat.Controller, opts Options) Model {
	if opts.CopyFunc == nil {
		opts.CopyFunc = clipboard.WriteAll
	}
	if opts.Render.Width == 0 {
		opts.Render = render.DefaultOptions()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorDim)
	ta.BlurredStyle = ta.FocusedStyle

	return Model{
		ctx:        ctx,
		controller: controller,
		opts:       opts,
		textarea:   ta,
		turns:      controller.Transcript().Turns(),
		sending:    controller.Busy(),
		renderer:   render.NewRenderer(opts.Render),
		rendered:   make(map[string]string),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// animationTick drives the typing indicator
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			return m.submit()
		}

	case exchangeDoneMsg:
		m.sync()

	case animationTickMsg:
		if m.sending {
			m.animationFrame++
			m.refresh()
			cmds = append(cmds, animationTick())
		}
	}

	// Input is disabled while a request is in flight
	if !m.sending {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: local commands first, then a new turn
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}

	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit
	case input == "/copy":
		m.textarea.Reset()
		m.copyLastReply()
		return m, nil
	case input == "/export" || strings.HasPrefix(input, "/export "):
		m.textarea.Reset()
		m.export(strings.TrimSpace(strings.TrimPrefix(input, "/export")))
		return m, nil
	case input == "/help":
		m.textarea.Reset()
		m.setNotice("/copy copies the last reply, /export [path] saves the chat, /quit exits", false)
		return m, nil
	}

	ex, err := m.controller.Begin(raw)
	switch {
	case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrBusy):
		return m, nil
	case errors.Is(err, chat.ErrClosed):
		return m, tea.Quit
	case err != nil:
		m.setNotice(err.Error(), true)
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.animationFrame = 0
	m.sync()

	return m, tea.Batch(m.runExchange(ex), animationTick())
}

// runExchange runs ex off the UI loop
func (m Model) runExchange(ex *chat.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return exchangeDoneMsg{result: ex.Run(ctx)}
	}
}

// sync copies the transcript and state from the controller and scrolls to the newest turn
func (m *Model) sync() {
	m.turns = m.controller.Transcript().Turns()
	m.sending = m.controller.Busy()
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) copyLastReply() {
	for i := len(m.turns) - 1; i >= 0; i-- {
		t := m.turns[i]
		if t.IsUser() || t.IsPending() {
			continue
		}
		if err := m.opts.CopyFunc(t.Text); err != nil {
			m.setNotice("copy failed: "+err.Error(), true)
			return
		}
		m.setNotice("Reply copied to clipboard", false)
		return
	}
	m.setNotice("Nothing to copy yet", true)
}

func (m *Model) export(path string) {
	if path == "" {
		name := fmt.Sprintf("geminichat_%s.md", time.Now().Format("20060102_150405"))
		path = filepath.Join(m.opts.ExportDir, name)
	}

	opts := history.DefaultExportOptions()
	opts.Model = m.opts.ModelName
	if err := history.WriteFile(path, m.turns, opts); err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	m.setNotice("Chat exported to "+path, false)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return hintStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Gemini Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.opts.ModelName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	messages := m.viewport.View()
	if len(m.turns) == 0 {
		messages = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messages))

	var input string
	if m.sending {
		input = m.renderLoadingAnimation()
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		sections = append(sections, style.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Align(lipgloss.Center).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Align(lipgloss.Center).Render("Welcome to Gemini Chat"),
		hintStyle.Width(width).Align(lipgloss.Center).Render("Start a conversation by typing a message below"),
	)

	top := (m.viewport.Height - lipgloss.Height(content)) / 2
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + content
}

// renderTypingDots renders the three-dot indicator; one dot is lit per phase
func renderTypingDots(frame int) string {
	lit := (frame / 4) % 3
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		color := colorMute
		if i == lit {
			color = gradientColors[(frame/4)%len(gradientColors)]
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render("●"))
	}
	return sb.String()
}

func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := m.animationFrame

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[frame%len(gradientColors)]).
		Bold(true).
		Render(chars[frame%len(chars)])
	text := lipgloss.NewStyle().Foreground(colorText).Render(" Gemini is typing ")

	return spin + text + renderTypingDots(frame)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
		{"/help", "Commands"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with one bubble per turn
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	failure := m.controller.FailureText()

	for i, turn := range m.turns {
		if i > 0 {
			content.WriteString("\n")
		}

		if turn.IsUser() {
			content.WriteString(userLabelStyle.Render("● You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(turn.Text))
			content.WriteString("\n")
			continue
		}

		var body string
		switch {
		case turn.IsPending():
			body = renderTypingDots(m.animationFrame)
		case turn.Text == failure:
			body = failedTextStyle.Render(turn.Text)
		default:
			body = m.renderReply(turn.Text, bubbleWidth-4)
		}

		content.WriteString(botLabelStyle.Render("✦ Gemini"))
		content.WriteString("\n")
		content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(body))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m *Model) renderReply(text string, width int) string {
	key := fmt.Sprintf("%d:%s", width, text)
	if out, ok := m.rendered[key]; ok {
		return out
	}
	out := m.renderer.Reply(text, width)
	m.rendered[key] = out
	return out
}

// RunChat starts the chat TUI and closes controller when it exits
func RunChat(ctx context.Context, controller *chat.Controller, opts Options) error {
	defer controller.Close()

	p := tea.NewProgram(
		NewChatModel(ctx, controller, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
