// Package tui is the terminal front end of the voice loop. It renders the
// orchestrator's status and forwards key presses to it.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-voiceloop/core"
	"github.com/muesli/reflow/wordwrap"
)

// Controller is the part of the orchestrator the UI drives.
type Controller interface {
	StartTurn()
	StopTurn()
	SubmitText(text string)
	SetLanguage(language string)
	SetVoice(voiceName string)
	Status() orchestration.Status
}

// statusChangedMsg asks the model to re-read the controller status.
type statusChangedMsg struct{}

type Model struct {
	controller Controller
	updates    <-chan struct{}
	languages  []string

	status   orchestration.Status
	input    textinput.Model
	timeline viewport.Model

	width  int
	height int
}

// New creates the UI model. A receive on updates makes the model refresh
// its status; closing updates quits the program.
func New(controller Controller, updates <-chan struct{}, languages []string) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Type a message, or press ctrl+l to talk"
	input.Focus()

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	return Model{
		controller: controller,
		updates:    updates,
		languages:  languages,
		status:     controller.Status(),
		input:      input,
		timeline:   timeline,
	}
}

// waitForUpdate converts the update channel into a Tea command delivering
// one message.
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return tea.Quit()
		}
		return statusChangedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForUpdate(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.timeline.Width = msg.Width
		m.timeline.Height = max(msg.Height-8, 3)
		m.renderTimeline()

	case statusChangedMsg:
		m.status = m.controller.Status()
		m.renderTimeline()
		cmds = append(cmds, waitForUpdate(m.updates))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+l":
			if m.status.IsListening {
				m.controller.StopTurn()
			} else {
				m.controller.StartTurn()
			}
			return m, nil
		case "ctrl+v":
			if voice, ok := nextVoice(m.status); ok {
				m.controller.SetVoice(voice)
			}
			return m, nil
		case "ctrl+g":
			if language, ok := next(m.languages, m.status.Language); ok {
				m.controller.SetLanguage(language)
			}
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text != "" {
				m.controller.SubmitText(text)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) renderTimeline() {
	width := max(m.timeline.Width-2, 20)

	var b strings.Builder
	for i, message := range m.status.History {
		if i > 0 {
			b.WriteString("\n\n")
		}
		role := string(message.Role)
		style, ok := roleStyles[role]
		if !ok {
			style = labelStyle
		}
		b.WriteString(style.Render(role))
		b.WriteString(labelStyle.Render(" · " + message.CreatedAt.Format("15:04")))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(message.Content, width))
	}

	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m Model) View() string {
	level := 0.0
	if m.status.IsListening {
		level = m.status.Level
	}

	heard := m.status.PartialTranscript
	if heard == "" {
		heard = "—"
	}

	voice := m.status.VoiceName
	if voice == "" {
		voice = "default"
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("ema voiceloop  "),
		labelStyle.Render("Status: "), statusLabel(m.status.State),
		labelStyle.Render(fmt.Sprintf("  ·  %s  ·  %s", m.status.Language, voice)),
	)

	return strings.Join([]string{
		header,
		levelBar(level, max(m.width-8, 10)),
		labelStyle.Render("Heard: ") + partialStyle.Render(heard),
		m.timeline.View(),
		inputPanelStyle.Render(m.input.View()),
		helpStyle.Render("ctrl+l listen/stop · enter send · ctrl+v voice · ctrl+g language · ctrl+c quit"),
	}, "\n")
}

// nextVoice returns the voice after the selected one among the available
// voices, wrapping around.
func nextVoice(status orchestration.Status) (string, bool) {
	names := make([]string, 0, len(status.AvailableVoices))
	for _, voice := range status.AvailableVoices {
		names = append(names, voice.Name)
	}
	return next(names, status.VoiceName)
}

func next(values []string, current string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}

	i := slices.Index(values, current)
	return values[(i+1)%len(values)], true
}
