package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Console is the line-oriented terminal every prompt talks to.
type Console interface {
	// Input writes prompt and returns the next line without its line ending.
	Input(prompt string) (string, error)
	Print(a ...any)
	Printf(format string, a ...any)
}

// Terminal is a Console over a reader and a writer, normally stdin and stdout.
type Terminal struct {
	mu          sync.Mutex
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal reads from in and writes to out. Nil arguments select the
// process stdin and stdout.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isTTY(in) && isTTY(out),
	}
}

func (t *Terminal) Input(prompt string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil {
		// a last line without a newline is still an answer
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Print(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

func (t *Terminal) Printf(format string, a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, a...)
}

// Interactive reports whether both ends are attached to a terminal.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

// Clear wipes the screen. It does nothing when the output is redirected.
func (t *Terminal) Clear() {
	if !t.interactive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, "\033[H\033[2J")
}

// Script is a Console that answers from a fixed list and records everything
// written to it.
type Script struct {
	mu      sync.Mutex
	answers []string
	prompts []string
	out     strings.Builder
}

// NewScript returns a Script that hands out answers in order. Once they run
// out Input returns io.EOF.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

func (s *Script) Input(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.out.WriteString(prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	s.out.WriteString(answer + "\n")
	return answer, nil
}

func (s *Script) Print(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(&s.out, a...)
}

func (s *Script) Printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(&s.out, format, a...)
}

// Output returns everything written so far, prompts and echoed answers included.
func (s *Script) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

// Prompts returns the prompts shown so far.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Remaining is the number of answers not consumed yet.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func isTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return isTTY(os.Stdin)
}
