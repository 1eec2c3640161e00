package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers line by line. Passwords are read without echo
// when stdin is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	tty := false
	if f, ok := in.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &prompter{in: bufio.NewReader(in), out: out, tty: tty}
}

// ask prints a question and returns the trimmed answer, or def when the
// answer is empty.
func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *prompter) password(question string) (string, error) {
	if !p.tty {
		return p.ask(question, "")
	}
	fmt.Fprintf(p.out, "%s: ", question)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// choose prints numbered options and returns the index picked. An empty
// answer picks the first.
func (p *prompter) choose(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	for {
		answer, err := p.ask("Select", "1")
		if err != nil {
			return 0, err
		}
		var n int
		if _, err := fmt.Sscanf(answer, "%d", &n); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "💡 Enter a number between 1 and %d\n", len(options))
	}
}
