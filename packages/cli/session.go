package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// maxLineSize bounds a single command line, formulas included
const maxLineSize = 1024 * 1024

// Session interprets line commands against one sheet and writes the
// results to out. a failed command is reported and the sheet stays usable.
type Session struct {
	sheet *spreadsheet.RunnableSheet
	out   io.Writer
}

// NewSession creates a session over a fresh sheet built with opts
func NewSession(out io.Writer, opts ...spreadsheet.Option) *Session {
	s := &Session{out: out}
	s.sheet = spreadsheet.NewRunnableSheet(s.printLn, opts...)
	return s
}

func (s *Session) printLn(line string) {
	fmt.Fprintln(s.out, line)
}

// Sheet returns the sheet commands are applied to
func (s *Session) Sheet() *spreadsheet.Sheet {
	return s.sheet.Sheet()
}

// Exec runs one command line. blank lines and '#' comments are ignored.
// the returned error has already been written to the output.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	err := s.dispatch(line)
	if err == nil {
		err = s.sheet.Error()
	}
	s.sheet.Reset()

	if err != nil {
		s.printLn(fmt.Sprintf("error: %v", err))
	}
	return err
}

func (s *Session) dispatch(line string) error {
	name, rest := splitWord(line)
	switch name {
	case "set":
		address, text := splitWord(rest)
		if address == "" {
			return errors.New("usage: set <cell> <text>")
		}
		s.sheet.Set(address, text)
	case "clear":
		address, err := singleArg(name, rest)
		if err != nil {
			return err
		}
		s.sheet.Clear(address)
	case "get":
		address, err := singleArg(name, rest)
		if err != nil {
			return err
		}
		s.sheet.Log(address)
	case "text":
		address, err := singleArg(name, rest)
		if err != nil {
			return err
		}
		s.sheet.LogText(address)
	case "refs":
		address, err := singleArg(name, rest)
		if err != nil {
			return err
		}
		s.sheet.LogRefs(address)
	case "size":
		if rest != "" {
			return errors.New("usage: size")
		}
		s.sheet.LogSize()
	case "print":
		switch rest {
		case "values":
			s.sheet.PrintValues()
		case "texts":
			s.sheet.PrintTexts()
		default:
			return errors.New("usage: print values|texts")
		}
	default:
		return errors.Errorf("unknown command %q", name)
	}
	return nil
}

// Run executes every line read from r. with failFast the first failing
// command ends the run and its error is returned with the line number.
func (s *Session) Run(r io.Reader, failFast bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := s.Exec(scanner.Text()); err != nil && failFast {
			return errors.Wrapf(err, "line %d", lineNo)
		}
	}
	return errors.Wrap(scanner.Err(), "failed to read commands")
}

// splitWord returns the first whitespace separated word of s and the
// remainder with its leading whitespace removed. the remainder keeps inner
// spaces so cell text survives as typed.
func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " \t")
}

func singleArg(name, rest string) (string, error) {
	if rest == "" || strings.ContainsAny(rest, " \t") {
		return "", errors.Errorf("usage: %s <cell>", name)
	}
	return rest, nil
}
