// Package tui renders the chat page in a terminal.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatModel "github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
)

// Options tune the terminal page.
type Options struct {
	// Markdown renders bot replies through glamour.
	Markdown bool
}

type (
	pageChangedMsg struct{}
	pageClosedMsg  struct{}
)

// Model is the bubbletea model for one chat page.
type Model struct {
	page        *chat.Page
	profile     profile.Profile
	changes     <-chan struct{}
	unsubscribe func()

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles
	markdown bool

	messages []chatModel.Message
	busy     bool
	width    int
	height   int
	ready    bool
}

// New builds the model and subscribes it to page changes.
func New(page *chat.Page, p profile.Profile, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = p.InputPlaceholder
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	// letters belong to the input; only paging keys scroll
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	changes, unsubscribe := page.Subscribe()

	m := Model{
		page:        page,
		profile:     p,
		changes:     changes,
		unsubscribe: unsubscribe,
		input:       ti,
		viewport:    vp,
		spinner:     sp,
		styles:      defaultStyles(),
		markdown:    opts.Markdown,
	}
	m.sync()
	return m
}

// Init starts the cursor blink, the spinner and the page watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForChange(),
	)
}

func (m Model) waitForChange() tea.Cmd {
	changes, done := m.changes, m.page.Done()
	return func() tea.Msg {
		select {
		case <-changes:
			return pageChangedMsg{}
		case <-done:
			return pageClosedMsg{}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.unsubscribe()
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			if m.page.Submit(m.input.Value()) {
				m.input.Reset()
			}
			m.sync()
			return m, m.spinner.Tick
		}

		if !m.busy {
			m.input, tiCmd = m.input.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case pageChangedMsg:
		m.sync()
		return m, tea.Batch(m.waitForChange(), m.spinner.Tick)

	case pageClosedMsg:
		m.unsubscribe()
		return m, tea.Quit

	case spinner.TickMsg:
		if m.busy {
			m.spinner, spCmd = m.spinner.Update(msg)
			m.refresh()
			return m, spCmd
		}
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 3
	helpHeight := 1

	vpHeight := height - headerHeight - inputHeight - helpHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 6
	m.ready = true

	if m.markdown {
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
	}
	m.refresh()
}

// sync re-reads the page and scrolls to the newest message.
func (m *Model) sync() {
	m.messages = m.page.Messages()
	m.busy = m.page.Busy()
	if m.busy {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var b strings.Builder

	if len(m.messages) == 0 {
		for _, line := range m.profile.Greeting {
			b.WriteString(m.styles.muted.Render(line))
			b.WriteString("\n")
		}
		if len(m.profile.ExampleQuestions) > 0 {
			b.WriteString("\n")
			b.WriteString(m.styles.muted.Render("💡 예시 질문:"))
			b.WriteString("\n")
			for _, q := range m.profile.ExampleQuestions {
				b.WriteString(m.styles.muted.Render("• " + q))
				b.WriteString("\n")
			}
		}
	}

	for _, msg := range m.messages {
		clock := m.styles.muted.Render(chatModel.FormatClock(msg.Timestamp))
		switch msg.Sender() {
		case "user":
			b.WriteString(m.styles.userLabel.Render("나") + " " + clock)
			b.WriteString("\n")
			b.WriteString(m.styles.userText.Render(msg.Content))
		default:
			b.WriteString(m.styles.botLabel.Render(m.profile.Name) + " " + clock)
			b.WriteString("\n")
			b.WriteString(m.renderBot(msg.Content))
		}
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(m.spinner.View() + " " + m.styles.muted.Render("답변을 기다리는 중..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderBot(content string) string {
	if m.renderer == nil {
		return m.styles.botText.Render(content)
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return m.styles.botText.Render(content)
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "불러오는 중..."
	}

	header := m.styles.header.Render(m.profile.Name) + m.styles.title.Render(m.profile.Title)
	heading := m.styles.heading.Render(m.profile.ChatHeading)

	help := "Enter 전송 · Esc 종료"
	if m.busy {
		help = "답변을 기다리는 중 · Esc 종료"
	}

	return strings.Join([]string{
		header,
		heading,
		m.viewport.View(),
		m.styles.input.Render(m.input.View()),
		m.styles.help.Render(help),
	}, "\n")
}
