// Package tui implements the interactive chat client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/legalbot/jai/internal/auth"
	"github.com/legalbot/jai/internal/chat"
	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/internal/retrieval"
)

type phase int

const (
	phaseLogin phase = iota
	phaseRegister
	phaseChat
)

// Model is the Bubble Tea model for the chat application. It drives the
// auth service, retrieval engine, and conversation store directly.
type Model struct {
	auth   *auth.Service
	engine *retrieval.Engine
	chat   chat.Store

	phase     phase
	sessionID string
	username  string

	userInput textinput.Model
	nameInput textinput.Model
	passInput textinput.Model
	focus     int

	chatInput textinput.Model
	viewport  viewport.Model
	turns     []models.ConversationTurn

	status string
	width  int
	ready  bool
}

// New creates a new TUI model instance.
func New(authService *auth.Service, engine *retrieval.Engine, chatStore chat.Store) Model {
	user := textinput.New()
	user.Prompt = "> "
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Focus()

	name := textinput.New()
	name.Prompt = "> "
	name.Placeholder = "display name"
	name.CharLimit = 64

	pass := textinput.New()
	pass.Prompt = "> "
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	ask := textinput.New()
	ask.Prompt = "> "
	ask.Placeholder = "Ask a question and press Enter"
	ask.CharLimit = 0

	vp := viewport.New(0, 0)

	return Model{
		auth:      authService,
		engine:    engine,
		chat:      chatStore,
		phase:     phaseLogin,
		userInput: user,
		nameInput: name,
		passInput: pass,
		chatInput: ask,
		viewport:  vp,
		status:    "Sign in or press Ctrl+R to create an account.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 2 // title, spacer, input frame, status, hint
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-chatBoxStyle.GetHorizontalFrameSize())
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.phase == phaseChat {
			return m.updateChat(msg)
		}
		return m.updateAuth(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		if m.phase == phaseLogin {
			m.phase = phaseRegister
			m.status = "Create an account. Ctrl+R to go back to sign in."
		} else {
			m.phase = phaseLogin
			m.status = "Sign in or press Ctrl+R to create an account."
		}
		m.focus = 0
		m.refocus()
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.authFields())
		m.refocus()
		return m, nil
	case "shift+tab", "up":
		n := len(m.authFields())
		m.focus = (m.focus - 1 + n) % n
		m.refocus()
		return m, nil
	case "enter":
		if m.focus < len(m.authFields())-1 {
			m.focus++
			m.refocus()
			return m, nil
		}
		if m.phase == phaseRegister {
			m.submitRegister()
		} else {
			m.submitLogin()
		}
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.logout()
		return m, nil
	case "ctrl+l":
		if err := m.chat.Clear(context.Background(), m.sessionID); err != nil {
			m.status = errorStyle.Render("Could not clear conversation: " + err.Error())
			return m, nil
		}
		m.turns = nil
		m.viewport.SetContent(m.renderConversation())
		m.status = "Conversation cleared."
		return m, nil
	case "up", "pgup":
		m.viewport.LineUp(3)
		return m, nil
	case "down", "pgdown":
		m.viewport.LineDown(3)
		return m, nil
	case "enter":
		m.submitQuestion()
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	cmds = append(cmds, cmd)
	m.nameInput, cmd = m.nameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.passInput, cmd = m.passInput.Update(msg)
	cmds = append(cmds, cmd)
	m.chatInput, cmd = m.chatInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) authFields() []*textinput.Model {
	if m.phase == phaseRegister {
		return []*textinput.Model{&m.userInput, &m.nameInput, &m.passInput}
	}
	return []*textinput.Model{&m.userInput, &m.passInput}
}

func (m *Model) refocus() {
	for i, f := range m.authFields() {
		if i == m.focus {
			f.Focus()
		} else {
			f.Blur()
		}
	}
}

func (m *Model) submitLogin() {
	username := strings.TrimSpace(m.userInput.Value())
	password := m.passInput.Value()
	user, err := m.auth.Login(context.Background(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			m.status = errorStyle.Render("Invalid username or password.")
		} else {
			m.status = errorStyle.Render("Login error: " + err.Error())
		}
		return
	}
	m.username = user.Username
	m.sessionID = uuid.New().String()
	m.turns = nil
	m.phase = phaseChat
	m.passInput.Reset()
	m.userInput.Blur()
	m.nameInput.Blur()
	m.passInput.Blur()
	m.chatInput.Focus()
	m.viewport.SetContent(m.renderConversation())
	m.status = fmt.Sprintf("Signed in as %s. Ask away.", user.Username)
}

func (m *Model) submitRegister() {
	username := strings.TrimSpace(m.userInput.Value())
	name := strings.TrimSpace(m.nameInput.Value())
	password := m.passInput.Value()
	if _, err := m.auth.Register(context.Background(), username, name, "", password); err != nil {
		m.status = errorStyle.Render("Registration failed: " + err.Error())
		return
	}
	m.phase = phaseLogin
	m.focus = 0
	m.refocus()
	m.passInput.Reset()
	m.status = "Account created. Sign in to continue."
}

func (m *Model) submitQuestion() {
	question := strings.TrimSpace(m.chatInput.Value())
	if question == "" {
		return
	}
	ctx := context.Background()
	match, err := m.engine.Answer(ctx, question)
	if err != nil {
		m.status = errorStyle.Render("Error: " + err.Error())
		return
	}
	if match == nil {
		m.status = fmt.Sprintf("No answer found for %q.", question)
		return
	}
	turn := models.ConversationTurn{
		Question: question,
		Answer:   match.Record.Answer,
		AskedAt:  time.Now(),
	}
	if err := m.chat.Append(ctx, m.sessionID, turn); err != nil {
		m.status = errorStyle.Render("Could not record turn: " + err.Error())
	} else {
		m.status = fmt.Sprintf("Matched %q (score %.2f)", match.Record.Question, match.Score)
	}
	m.turns = append(m.turns, turn)
	m.chatInput.Reset()
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// logout drops the session conversation and returns to the sign-in form.
func (m *Model) logout() {
	_ = m.chat.Clear(context.Background(), m.sessionID)
	m.phase = phaseLogin
	m.sessionID = ""
	m.username = ""
	m.turns = nil
	m.chatInput.Reset()
	m.chatInput.Blur()
	m.passInput.Reset()
	m.focus = 0
	m.refocus()
	m.status = "Logged out."
}

// View renders the TUI layout for the current phase.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.phase == phaseChat {
		return m.chatView()
	}
	return m.authView()
}

func (m Model) authView() string {
	var b strings.Builder
	if m.phase == phaseRegister {
		b.WriteString(titleStyle.Render("jai: create account"))
	} else {
		b.WriteString(titleStyle.Render("jai: sign in"))
	}
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Username"))
	b.WriteString("\n")
	b.WriteString(m.userInput.View())
	b.WriteString("\n")
	if m.phase == phaseRegister {
		b.WriteString(labelStyle.Render("Name"))
		b.WriteString("\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.passInput.View())
	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("tab: next field  enter: submit  ctrl+r: switch mode  ctrl+c: quit"))
	return b.String()
}

func (m Model) chatView() string {
	title := titleStyle.Render("jai") + hintStyle.Render("  signed in as "+m.username)
	conversation := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.chatInput.View())
	status := statusStyle.Render(m.status)
	hint := hintStyle.Render("enter: ask  up/down: scroll  ctrl+l: clear  esc: log out  ctrl+c: quit")
	return title + "\n" + conversation + "\n" + input + "\n" + status + "\n" + hint
}

func (m Model) renderConversation() string {
	if len(m.turns) == 0 {
		return hintStyle.Render("Ask a question to get started.")
	}
	maxBubble := m.viewport.Width * 2 / 3
	if maxBubble < 20 {
		maxBubble = 20
	}
	var parts []string
	for _, turn := range m.turns {
		q := userBubbleStyle
		if lipgloss.Width(turn.Question) > maxBubble {
			q = q.Width(maxBubble)
		}
		parts = append(parts, lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, q.Render(turn.Question)))
		a := botBubbleStyle
		if lipgloss.Width(turn.Answer) > maxBubble {
			a = a.Width(maxBubble)
		}
		parts = append(parts, a.Render(turn.Answer))
	}
	return strings.Join(parts, "\n")
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userBubbleStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).
			BorderForeground(lipgloss.Color("12"))
	botBubbleStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).
			BorderForeground(lipgloss.Color("10"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
