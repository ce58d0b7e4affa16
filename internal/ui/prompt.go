package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator questions before anything is applied to the
// workspace. The migration flow refuses to create credentials without an
// affirmative answer.
type Prompter interface {
	// Confirm asks a yes/no question. Returns true for yes.
	Confirm(question string) (bool, error)
	// Ask asks a free-form question and returns the trimmed answer.
	Ask(question string) (string, error)
}

// Prompts reads answers from a terminal (or any reader, for piped input).
type Prompts struct {
	in  io.Reader
	out io.Writer
}

// NewPrompts returns a Prompter backed by stdin/stderr.
func NewPrompts() *Prompts {
	return &Prompts{in: os.Stdin, out: os.Stderr}
}

// NewPromptsFrom returns a Prompter backed by the given reader and writer.
func NewPromptsFrom(in io.Reader, out io.Writer) *Prompts {
	return &Prompts{in: in, out: out}
}

// Confirm asks a yes/no question. Returns true for yes.
func (p *Prompts) Confirm(question string) (bool, error) {
	fmt.Fprint(p.out, question+" [y/N]: ")

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Ask asks a free-form question and returns the trimmed answer.
func (p *Prompts) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question+": ")

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskSecret asks for a secret value with terminal echo disabled. Falls back
// to plain reads when stdin is not a terminal.
func (p *Prompts) AskSecret(question string) (string, error) {
	f, ok := p.in.(*os.File)
	if ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, question+": ")
		bytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(bytes)), nil
	}
	return p.Ask(question)
}

// MockPrompts answers questions from a pattern table instead of a terminal.
// Keys are regular expressions matched against the question text; the longest
// matching pattern wins. Used by tests and by --yes style automation.
type MockPrompts struct {
	patterns map[*regexp.Regexp]string
}

// NewMockPrompts compiles the pattern table. Panics on an invalid pattern,
// which only happens on a programming error in a test.
func NewMockPrompts(answers map[string]string) *MockPrompts {
	patterns := make(map[*regexp.Regexp]string, len(answers))
	for pattern, answer := range answers {
		patterns[regexp.MustCompile(pattern)] = answer
	}
	return &MockPrompts{patterns: patterns}
}

// Ask returns the answer for the longest pattern matching the question.
func (m *MockPrompts) Ask(question string) (string, error) {
	var matched []*regexp.Regexp
	for pattern := range m.patterns {
		if pattern.MatchString(question) {
			matched = append(matched, pattern)
		}
	}
	if len(matched) == 0 {
		return "", fmt.Errorf("no mock answer for question: %s", question)
	}
	sort.Slice(matched, func(i, j int) bool {
		return len(matched[i].String()) > len(matched[j].String())
	})
	return m.patterns[matched[0]], nil
}

// Confirm returns true when the scripted answer is yes.
func (m *MockPrompts) Confirm(question string) (bool, error) {
	answer, err := m.Ask(question)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
