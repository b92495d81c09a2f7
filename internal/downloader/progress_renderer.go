package downloader

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultBarWidth     = 35
	defaultBarSides     = "||"
	defaultActivePrefix = "Downloading ..."
	defaultDonePrefix   = "Download OK ..."
)

var (
	activeColor = lipgloss.Color("3")
	doneColor   = lipgloss.Color("2")

	activePrefixStyle = lipgloss.NewStyle().Foreground(activeColor)
	donePrefixStyle   = lipgloss.NewStyle().Foreground(doneColor).Bold(true)
)

// BarRenderer draws a one-line bar that is rewritten in place with \r.
type BarRenderer struct {
	Out          io.Writer
	Width        int
	Full         rune
	Empty        rune
	Sides        string // two characters: left and right border
	ActivePrefix string
	DonePrefix   string

	mu sync.Mutex
}

// NewBarRenderer returns a bar with the default look, writing to out (stderr when nil).
func NewBarRenderer(out io.Writer) *BarRenderer {
	return &BarRenderer{
		Out:          out,
		Width:        defaultBarWidth,
		Full:         '█',
		Empty:        ' ',
		Sides:        defaultBarSides,
		ActivePrefix: defaultActivePrefix,
		DonePrefix:   defaultDonePrefix,
	}
}

func (r *BarRenderer) OnProgress(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.writer(), r.line(e))
}

func (r *BarRenderer) line(e ProgressEvent) string {
	width := r.Width
	if width <= 0 {
		width = defaultBarWidth
	}
	left, right := "|", "|"
	if sides := []rune(r.Sides); len(sides) >= 2 {
		left, right = string(sides[0]), string(sides[len(sides)-1])
	}

	bar := progress.New(progress.WithWidth(width), progress.WithoutPercentage())
	if r.Full != 0 {
		bar.Full = r.Full
	}
	if r.Empty != 0 {
		bar.Empty = r.Empty
	}

	prefix := activePrefixStyle.Render(r.ActivePrefix)
	bar.FullColor = string(activeColor)
	if e.Done() {
		prefix = donePrefixStyle.Render(r.DonePrefix)
		bar.FullColor = string(doneColor)
	}

	line := fmt.Sprintf("\r%s %s%s%s %6.2f%%", prefix, left, bar.ViewAs(clampRatio(e.Percent/100)), right, e.Percent)
	if e.Done() {
		line += "\n"
	}
	return line
}

func (r *BarRenderer) writer() io.Writer {
	if r.Out == nil {
		return os.Stderr
	}
	return r.Out
}

// PlainRenderer prints one percentage per line, for logs and pipes.
type PlainRenderer struct {
	Out io.Writer

	mu sync.Mutex
}

func NewPlainRenderer(out io.Writer) *PlainRenderer {
	return &PlainRenderer{Out: out}
}

func (r *PlainRenderer) OnProgress(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.Out
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintf(out, "%.2f%%\n", e.Percent)
}

// NewRenderer picks a renderer by name: "plain", otherwise the bar.
func NewRenderer(kind string, out io.Writer) ProgressHandler {
	if kind == "plain" {
		return NewPlainRenderer(out)
	}
	return NewBarRenderer(out)
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
