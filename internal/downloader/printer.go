package downloader

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FDBFF"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	subtleStyle  = lipgloss.NewStyle().Faint(true)
	titleMaxCols = 53
)

// Printer writes the user-facing lines of a batch. Diagnostics go to the logger instead.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter writes to out (stdout when nil).
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, color: supportsColor()}
}

// Banner prints a framed heading.
func (p *Printer) Banner(text string) {
	line := strings.Repeat("=", len([]rune(text))+4)
	fmt.Fprintf(p.out, "%s\n  %s\n%s\n", line, p.style(bannerStyle, text), line)
}

// Title prints the title of the video about to be downloaded.
func (p *Printer) Title(title string) {
	fmt.Fprintf(p.out, "Titre: %s\n", truncateText(title, titleMaxCols))
}

// Selected prints the stream picked for the batch.
func (p *Printer) Selected(stream Stream, audioOnly bool) {
	kind := "vidéo"
	if audioOnly {
		kind = "audio"
	}
	detail := stream.Label(audioOnly)
	if stream.FileSize > 0 {
		detail += " " + p.style(subtleStyle, "("+humanBytes(stream.FileSize)+")")
	}
	fmt.Fprintf(p.out, "Stream %s selectionnée: %s\n", kind, detail)
}

// Warn prints a non-fatal warning such as an existing file.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.style(warnStyle, "[WARMING]"), msg)
}

// Done prints the success summary of a batch.
func (p *Printer) Done(files int) {
	fmt.Fprintf(p.out, "%s (%d %s)\n", p.style(okStyle, "Fin du téléchargement"), files, plural(files, "fichier"))
}

// Failures prints the URLs that could not be downloaded.
func (p *Printer) Failures(urls []string) {
	fmt.Fprintf(p.out, "%s %d %s en échec:\n%s", p.style(failStyle, "[ERREUR]"), len(urls), plural(len(urls), "téléchargement"), FailureList(urls))
}

// Error prints a numbered error line, n being the error category code.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.out, "%s %s\n", p.style(failStyle, "[ERREUR "+strconv.Itoa(ExitCode(err))+"]"), err.Error())
}

// Println writes a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}
	return word
}

func truncateText(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	return string(r[:max])
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for n >= unit*div && exp < 4 {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f%s", value, suffix[exp])
}

func supportsColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return isTerminal(os.Stdout)
}

func isTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd())
}
