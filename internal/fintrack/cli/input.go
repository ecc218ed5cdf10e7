package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Swapped out in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompter asks questions on out and reads the answers from in. Passwords
// are read without echo when in is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Text reads one trimmed line.
func (p *prompter) Text(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.line()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}

// TextOr returns value when set and prompts otherwise.
func (p *prompter) TextOr(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.Text(label)
}

// Password reads a secret. Surrounding spaces are kept.
func (p *prompter) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd >= 0 {
		b, err := readPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}

	s, err := p.line()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return s, nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *prompter) Confirm(label string) (bool, error) {
	s, err := p.Text(label + " [y/N]")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
