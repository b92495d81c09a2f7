package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#7FDBFF")).
				Bold(true).
				Padding(0, 1)

	pickerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8")).
			Faint(true)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#00F5D4")).
				Bold(true)

	pickerItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAEAEA"))
)

// ErrPickerCancelled is returned when the picker is left without a choice.
var ErrPickerCancelled = errors.New("choix de la qualité annulé")

type pickerModel struct {
	title     string
	labels    []string
	selected  int
	chosen    bool
	cancelled bool
}

func newPickerModel(audioOnly bool, streams []downloader.Stream) *pickerModel {
	title := "Choississez la résolution vidéo"
	if audioOnly {
		title = "Choississez la qualité audio"
	}
	labels := make([]string, len(streams))
	for i, s := range streams {
		labels[i] = s.Label(audioOnly)
		if s.FileSize > 0 {
			labels[i] += fmt.Sprintf("  (%.1f MB)", float64(s.FileSize)/(1<<20))
		}
	}
	return &pickerModel{title: title, labels: labels}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); k {
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		} else {
			m.selected = len(m.labels) - 1
		}
	case "down", "j":
		if m.selected < len(m.labels)-1 {
			m.selected++
		} else {
			m.selected = 0
		}
	case "home", "g":
		m.selected = 0
	case "end", "G":
		m.selected = len(m.labels) - 1
	case "enter":
		m.chosen = true
		return m, tea.Quit
	default:
		// a digit jumps straight to that line
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(m.labels) {
			m.selected = n - 1
		}
	}
	return m, nil
}

func (m *pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, label := range m.labels {
		line := fmt.Sprintf("%2d - %s", i+1, label)
		if i == m.selected {
			b.WriteString(pickerSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.chosen {
		b.WriteString(pickerHelpStyle.Render(fmt.Sprintf("Qualité n°%d ✓", m.selected+1)))
	} else {
		b.WriteString(pickerHelpStyle.Render("↑/↓ choisir · Entrée valider · q annuler"))
	}
	b.WriteString("\n")
	return b.String()
}

// index is the 1-based choice, 0 when the picker was cancelled.
func (m *pickerModel) index() int {
	if !m.chosen || m.cancelled {
		return 0
	}
	return m.selected + 1
}

// TUIQualityPicker is a full-screen alternative to AskQuality with the same
// contract. Out is where the picker draws, stderr when nil.
type TUIQualityPicker struct {
	In  io.Reader
	Out io.Writer
}

// Choose shows the picker and returns the 1-based index selected.
func (p TUIQualityPicker) Choose(audioOnly bool, streams []downloader.Stream) (int, error) {
	if len(streams) == 0 {
		return 0, &downloader.ValidationError{Field: "qualité", Err: errors.New("aucun flux disponible")}
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	opts := []tea.ProgramOption{tea.WithOutput(out)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	result, err := tea.NewProgram(newPickerModel(audioOnly, streams), opts...).Run()
	if err != nil {
		return 0, err
	}
	m, ok := result.(*pickerModel)
	if !ok || m.index() == 0 {
		return 0, ErrPickerCancelled
	}
	return m.index(), nil
}

// Chooser returns Choose as the orchestrator's chooser.
func (p TUIQualityPicker) Chooser() downloader.ChoiceFunc {
	return p.Choose
}
