package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/quest-engine/internal/game"
	"github.com/jwebster45206/quest-engine/pkg/render"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Type /start or your character name..."

// ConsoleUI is the BubbleTea model that plays the game over the events API.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	client   *http.Client
	screen   *render.Payload
	selected int
	typing   bool
	notice   string

	viewport viewport.Model
	textarea textarea.Model
	ready    bool
	width    int
	height   int
	err      error
	loading  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type payloadMsg struct {
	payload *render.Payload
	err     error
}

type progressTickMsg struct{}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				BorderForeground(lipgloss.Color("205")).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 64
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:   cfg,
		client:   client,
		textarea: ta,
		viewport: vp,
		typing:   true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 6
		m.viewport.Height = m.height - 6
		m.textarea.SetWidth(m.width - 8)
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab:
			m.setTyping(!m.typing)
			m.writeContent()
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		if m.typing {
			if msg.Type == tea.KeyEnter {
				input := strings.TrimSpace(m.textarea.Value())
				if input == "" {
					return m, nil
				}
				m.textarea.Reset()
				return m.send(game.Event{Text: input})
			}
			break
		}
		return m.updateButtons(msg)

	case payloadMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.apply(msg.payload)
		}
		m.writeContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeContent()
			return m, progressTick()
		}
		return m, nil
	}

	if m.typing {
		m.textarea, tiCmd = m.textarea.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// updateButtons moves the selection across the button grid and presses the
// selected button on enter.
func (m ConsoleUI) updateButtons(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == nil || len(m.screen.Buttons) == 0 {
		return m, nil
	}
	cols := max(m.screen.Columns, 1)
	last := len(m.screen.Buttons) - 1

	switch msg.String() {
	case "left", "h":
		m.selected = max(m.selected-1, 0)
	case "right", "l":
		m.selected = min(m.selected+1, last)
	case "up", "k":
		if m.selected-cols >= 0 {
			m.selected -= cols
		}
	case "down", "j":
		m.selected = min(m.selected+cols, last)
	case "c":
		if err := clipboard.WriteAll(m.screen.Text); err != nil {
			m.notice = "Copy failed: " + err.Error()
		} else {
			m.notice = "Screen text copied to clipboard."
		}
	case "enter":
		b := m.screen.Buttons[m.selected]
		return m.send(game.Event{Action: b.Action})
	default:
		return m, nil
	}
	m.writeContent()
	return m, nil
}

// apply updates the current screen from the engine's answer. An unchanged or
// identical payload leaves the screen and selection alone.
func (m *ConsoleUI) apply(p *render.Payload) {
	if p == nil || p.Unchanged || m.screen.Equal(p) {
		return
	}
	m.screen = p
	m.selected = 0
	m.notice = ""
	m.setTyping(len(p.Buttons) == 0)
	m.viewport.GotoTop()
}

func (m *ConsoleUI) setTyping(typing bool) {
	m.typing = typing
	if typing {
		m.textarea.Focus()
		return
	}
	m.textarea.Blur()
}

func (m ConsoleUI) send(ev game.Event) (tea.Model, tea.Cmd) {
	ev.PlayerID = m.config.PlayerID
	if m.screen != nil {
		ev.MessageContext = m.screen.MessageContext
	}
	m.loading = true
	m.progressTick = 0
	m.err = nil
	m.writeContent()

	client, baseURL := m.client, m.config.APIBaseURL
	request := func() tea.Msg {
		p, err := sendEvent(client, baseURL, ev)
		return payloadMsg{payload: p, err: err}
	}
	return m, tea.Batch(request, progressTick())
}

func (m *ConsoleUI) writeContent() {
	width := max(m.viewport.Width-2, 20)

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUEST ENGINE"))
	content.WriteString(promptStyle.Render(fmt.Sprintf("  player %d", m.config.PlayerID)) + "\n\n")

	if m.screen == nil {
		content.WriteString(narratorStyle.Render(wordwrap.String("Type /start below and press Enter to begin.", width)))
		content.WriteString("\n")
	} else {
		content.WriteString(narratorStyle.Render(wordwrap.String(m.screen.Text, width)))
		content.WriteString("\n\n")
		content.WriteString(m.renderButtons())
	}

	content.WriteString("\n")
	switch {
	case m.loading:
		content.WriteString(m.renderProgressBar() + "\n")
	case m.err != nil:
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n")
	case m.notice != "":
		content.WriteString(loadingStyle.Render(m.notice) + "\n")
	}
	m.viewport.SetContent(content.String())
}

func (m ConsoleUI) renderButtons() string {
	var rows []string
	i := 0
	for _, row := range m.screen.Rows() {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			style := buttonStyle
			if i == m.selected && !m.typing {
				style = selectedButtonStyle
			}
			cells = append(cells, style.Render(b.Label))
			i++
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.typing {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your character is saved on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	help := "tab: switch to buttons  enter: send  esc: quit"
	if !m.typing {
		help = "arrows: select  enter: press  c: copy  tab: type  esc: quit"
	}

	return panelStyle.Width(m.width).Height(m.height - 1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(m.width-8, 10))),
			m.textarea.View(),
			promptStyle.Render(help),
		),
	)
}

// renderProgressBar draws an animated bar while a request is in flight.
func (m ConsoleUI) renderProgressBar() string {
	usable := min(max(m.viewport.Width-6, 10), 60)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
