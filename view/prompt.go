package view

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emzola/shelflog/data"
)

// ErrCancelled is returned when the input ends while a form is being filled.
var ErrCancelled = errors.New("input closed")

// notesTerminator ends multi-line notes input.
const notesTerminator = "."

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints prompt and returns the next input line without surrounding space.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrCancelled
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Ask prompts for a value; an empty answer keeps current.
func (p *Prompter) Ask(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	answer, err := p.Line(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

// AskNotes reads note lines until a line holding only ".". An immediate "."
// keeps current; a single "-" clears all notes.
func (p *Prompter) AskNotes(current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "Current notes:\n%s\n", current)
	}
	fmt.Fprintf(p.out, "Notes, one per line; end with %q (%q alone keeps them, \"-\" clears):\n", notesTerminator, notesTerminator)
	var lines []string
	for {
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return "", err
			}
			return "", ErrCancelled
		}
		line := p.in.Text()
		if strings.TrimSpace(line) == notesTerminator {
			break
		}
		lines = append(lines, line)
	}
	switch {
	case len(lines) == 0:
		return current, nil
	case len(lines) == 1 && strings.TrimSpace(lines[0]) == "-":
		return "", nil
	}
	return strings.Join(lines, "\n"), nil
}

// Fill prompts for every field of form.
func (p *Prompter) Fill(form *BookForm) error {
	var err error
	if form.Title, err = p.Ask("Title", form.Title); err != nil {
		return err
	}
	if form.Author, err = p.Ask("Author", form.Author); err != nil {
		return err
	}
	if form.Category, err = p.Ask("Category", form.Category); err != nil {
		return err
	}
	statuses := make([]string, len(data.Statuses))
	for i, s := range data.Statuses {
		statuses[i] = string(s)
	}
	if form.Status, err = p.Ask("Status ("+strings.Join(statuses, "|")+")", form.Status); err != nil {
		return err
	}
	if form.NotesText, err = p.AskNotes(form.NotesText); err != nil {
		return err
	}
	return nil
}
