// Package studio is the interactive capture/edit/transcribe terminal UI:
// a live waveform, a transcript segment table, and key bindings driving
// the session state machine.
package studio

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emmett/parley/internal/audio"
	"github.com/emmett/parley/internal/session"
)

const (
	minWaveformWidth = 20
	chromePadding    = 4
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	liveStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("114"))
	recordStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	waveNormal    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	waveSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	waveDimmed    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	waveCursor    = lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color("196"))
	waveformFrame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(session.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea application state for the studio UI.
type Model struct {
	sess  *session.Session
	table table.Model

	width  int
	height int
}

// New creates a studio model around an assembled session.
func New(sess *session.Session) *Model {
	t := table.New(
		table.WithColumns(segmentColumns(60)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return &Model{sess: sess, table: t, width: 80, height: 24}
}

func segmentColumns(textWidth int) []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Start", Width: 8},
		{Title: "End", Width: 8},
		{Title: "Text", Width: textWidth},
	}
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update processes bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		textWidth := m.width - 27
		if textWidth < 20 {
			textWidth = 20
		}
		m.table.SetColumns(segmentColumns(textWidth))
		return m, nil

	case tickMsg:
		m.sess.Tick(time.Time(msg))
		m.syncTable()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sess.Close()
		return m, tea.Quit
	case " ":
		if m.sess.Mode() == session.ModeRecording {
			m.sess.StopRecording()
		} else {
			m.sess.StartRecording()
		}
	case "p":
		m.sess.TogglePlayback()
	case "t":
		m.sess.TranscribeAll()
	case "enter":
		if cursor := m.table.Cursor(); cursor >= 0 && cursor < len(m.sess.Buffer().Segments()) {
			m.sess.Buffer().SelectSegment(cursor)
		} else {
			m.sess.TranscribeSelection()
		}
	case "[":
		m.sess.Buffer().SetSelectionStart(m.markPosition())
	case "]":
		m.sess.Buffer().SetSelectionEnd(m.markPosition())
	case "d":
		m.sess.DeleteSelection()
	case "r":
		m.sess.ResetSelection()
	case "c":
		m.sess.ClearBuffer()
	case "s":
		m.sess.Save()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// markPosition is where [ and ] place a selection marker: the playback
// cursor while playing, otherwise the end of the buffer.
func (m *Model) markPosition() int {
	if pos := m.sess.PlayPos(); pos > 0 {
		return pos
	}
	return m.sess.Buffer().Len()
}

func (m *Model) syncTable() {
	segments := m.sess.Buffer().Segments()
	rows := make([]table.Row, len(segments))
	for i, seg := range segments {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			audio.FormatTime(seg.Start),
			audio.FormatTime(seg.End),
			seg.Text,
		}
	}
	m.table.SetRows(rows)
}

// View renders the studio screen.
func (m *Model) View() string {
	buf := m.sess.Buffer()

	header := titleStyle.Render("Parley Studio")
	if m.sess.Mode() == session.ModeRecording {
		header += "  " + recordStyle.Render("● REC "+audio.FormatTime(buf.Duration()))
	} else {
		header += "  " + statusStyle.Render(fmt.Sprintf("%s  %s",
			m.sess.Mode(), audio.FormatTime(buf.Duration())))
	}
	if m.sess.Transcribing() {
		header += "  " + statusStyle.Render("transcribing...")
	}

	sections := []string{
		header,
		m.renderWaveform(),
	}

	if live := m.sess.LiveText(); live != "" && m.sess.Mode() == session.ModeRecording {
		sections = append(sections, liveStyle.Render("live: "+live))
	}

	sections = append(sections,
		m.table.View(),
		statusStyle.Render(m.sess.Status()),
		helpStyle.Render("space rec · p play · t transcribe · enter pick segment · [/] mark · d delete · r reset · s save · c clear · q quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderWaveform() string {
	width := m.width - chromePadding
	if width < minWaveformWidth {
		width = minWaveformWidth
	}

	buf := m.sess.Buffer()
	selStart, selEnd := buf.Selection()
	cells := audio.RenderWaveform(buf.Samples(), width, selStart, selEnd, m.sess.PlayPos())

	glyphs := []rune(audio.WaveformChars)
	out := make([]string, len(cells))
	for i, cell := range cells {
		g := string(glyphs[cell.Level])
		switch cell.State {
		case audio.CellCursor:
			out[i] = waveCursor.Render(g)
		case audio.CellSelected:
			out[i] = waveSelected.Render(g)
		case audio.CellDimmed:
			out[i] = waveDimmed.Render(g)
		default:
			out[i] = waveNormal.Render(g)
		}
	}

	row := ""
	for _, s := range out {
		row += s
	}
	return waveformFrame.Render(row)
}
