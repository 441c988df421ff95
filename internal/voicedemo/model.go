// Package voicedemo is the voice catalog tour: a terminal UI that walks
// the TTS voice catalog language by language, speaking each voice's
// greeting or custom text.
package voicedemo

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/tts"
)

const synthesizeTimeout = 2 * time.Minute

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	langStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// speechReadyMsg carries a finished synthesis back to the update loop.
type speechReadyMsg struct {
	voiceID string
	samples []float32
	rate    int
	err     error
}

// playbackDoneMsg fires when the player drains the clip.
type playbackDoneMsg struct{}

// Model is the bubbletea application state for the voice tour.
type Model struct {
	engine tts.Engine
	player audio.Player

	langIdx int
	table   table.Model
	input   textinput.Model

	speed       float32
	autoAdvance bool
	speaking    bool
	status      string

	width int
}

// New creates a voice tour model. The engine must be initialized.
func New(engine tts.Engine, player audio.Player) *Model {
	ti := textinput.New()
	ti.Placeholder = "custom text (empty = voice greeting)"
	ti.CharLimit = 500
	ti.Width = 60

	t := table.New(
		table.WithColumns(voiceColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	m := &Model{
		engine: engine,
		player: player,
		table:  t,
		input:  ti,
		speed:  1.0,
		width:  80,
		status: "Pick a voice and press enter",
	}
	m.syncTable()
	return m
}

func voiceColumns() []table.Column {
	return []table.Column{
		{Title: "Voice", Width: 22},
		{Title: "Name", Width: 12},
		{Title: "Gender", Width: 8},
		{Title: "Notes", Width: 20},
	}
}

func (m *Model) language() tts.Language {
	return tts.Catalog[m.langIdx]
}

func (m *Model) syncTable() {
	voices := m.language().Voices
	rows := make([]table.Row, len(voices))
	for i, v := range voices {
		rows[i] = table.Row{v.ID, v.Name(), v.Gender(), v.Notes}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(voices) {
		m.table.SetCursor(0)
	}
}

// Init is a no-op; the model is event driven.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update processes bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case speechReadyMsg:
		return m.handleSpeechReady(msg)

	case playbackDoneMsg:
		m.speaking = false
		if m.autoAdvance {
			return m, m.advanceAndSpeak()
		}
		m.status = "Done"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.String() {
		case "esc":
			m.input.Blur()
			return m, nil
		case "enter":
			m.input.Blur()
			return m, m.speakSelected()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.player.Stop()
		return m, tea.Quit
	case "tab":
		m.langIdx = (m.langIdx + 1) % len(tts.Catalog)
		m.syncTable()
	case "shift+tab":
		m.langIdx = (m.langIdx - 1 + len(tts.Catalog)) % len(tts.Catalog)
		m.syncTable()
	case "enter":
		return m, m.speakSelected()
	case "a":
		m.autoAdvance = !m.autoAdvance
		if m.autoAdvance && !m.speaking {
			return m, m.speakSelected()
		}
	case "i", "/":
		m.input.Focus()
	case "+", "=":
		if m.speed < 2.0 {
			m.speed += 0.1
		}
		m.status = fmt.Sprintf("Speed %.1fx", m.speed)
	case "-", "_":
		if m.speed > 0.5 {
			m.speed -= 0.1
		}
		m.status = fmt.Sprintf("Speed %.1fx", m.speed)
	case "s":
		m.player.Stop()
		m.speaking = false
		m.autoAdvance = false
		m.status = "Stopped"
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) selectedVoice() (tts.Voice, bool) {
	voices := m.language().Voices
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(voices) {
		return tts.Voice{}, false
	}
	return voices[cursor], true
}

// speakSelected synthesizes the selected voice's text off the UI loop.
func (m *Model) speakSelected() tea.Cmd {
	voice, ok := m.selectedVoice()
	if !ok {
		return nil
	}
	if m.speaking {
		m.player.Stop()
	}

	text := m.input.Value()
	if text == "" {
		text = tts.ExpandGreeting(voice.Greeting(), voice)
	}

	m.speaking = true
	m.status = fmt.Sprintf("Synthesizing %s...", voice.ID)

	engine, speed := m.engine, m.speed
	req := tts.SynthesizeRequest{
		Text:  text,
		Voice: voice.ID,
		Lang:  voice.LangCode(),
		Speed: speed,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), synthesizeTimeout)
		defer cancel()
		samples, rate, err := engine.Synthesize(ctx, req)
		return speechReadyMsg{voiceID: voice.ID, samples: samples, rate: rate, err: err}
	}
}

func (m *Model) handleSpeechReady(msg speechReadyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.speaking = false
		m.autoAdvance = false
		m.status = fmt.Sprintf("Synthesis failed: %v", msg.err)
		return m, nil
	}

	if err := m.player.Play(msg.samples, msg.rate); err != nil {
		m.speaking = false
		m.status = fmt.Sprintf("Playback failed: %v", err)
		return m, nil
	}
	m.status = fmt.Sprintf("Speaking %s (%s)", msg.voiceID,
		audio.FormatTime(float64(len(msg.samples))/float64(msg.rate)))

	done := m.player.Done()
	return m, func() tea.Msg {
		<-done
		return playbackDoneMsg{}
	}
}

// advanceAndSpeak moves to the next voice, wrapping into the next
// language group at the end of each one.
func (m *Model) advanceAndSpeak() tea.Cmd {
	cursor := m.table.Cursor() + 1
	if cursor >= len(m.language().Voices) {
		m.langIdx = (m.langIdx + 1) % len(tts.Catalog)
		m.syncTable()
		cursor = 0
	}
	m.table.SetCursor(cursor)
	return m.speakSelected()
}

// View renders the voice tour screen.
func (m *Model) View() string {
	lang := m.language()

	header := titleStyle.Render("Parley Voices") + "  " +
		langStyle.Render(fmt.Sprintf("%s (%s)", lang.Name, lang.Code)) + "  " +
		statusStyle.Render(fmt.Sprintf("%d/%d languages · speed %.1fx",
			m.langIdx+1, len(tts.Catalog), m.speed))
	if m.autoAdvance {
		header += "  " + langStyle.Render("AUTO")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.input.View(),
		m.table.View(),
		statusStyle.Render(m.status),
		helpStyle.Render("enter speak · tab language · a auto-tour · i text · +/- speed · s stop · q quit"),
	)
}
