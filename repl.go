package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".sateko_history"
	promptMain  = "bf> "
	promptCont  = "... "
)

var replCommands = []string{"tape", "reset", "quit"}

// IsIncomplete reports whether err means more input could still make the
// program valid, i.e. a loop is still open.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Kind == UnclosedLoop
}

// replSession is the state kept between REPL inputs. The tape persists
// until :reset.
type replSession struct {
	cfg  Config
	tape *Tape
	ip   *Interpreter
	out  io.Writer
}

func newReplSession(cfg Config, in io.Reader, out, trace io.Writer) *replSession {
	ip := NewInterpreter(in, out)
	ip.Trace = NewTraceWriter(trace, cfg.Verbosity)
	return &replSession{cfg: cfg, tape: NewTape(cfg.TapeLength), ip: ip, out: out}
}

// eval runs code against the session tape.
func (s *replSession) eval(code string) error {
	prog, err := Parse(code)
	if err != nil {
		return err
	}
	return s.ip.Run(prog, s.tape)
}

// showTape prints the cells around the pointer.
func (s *replSession) showTape() {
	const window = 8
	lo := max(s.tape.Ptr-window, 0)
	hi := min(s.tape.Ptr+window+1, len(s.tape.Cells))
	var b strings.Builder
	fmt.Fprintf(&b, "ptr=%d:", s.tape.Ptr)
	for i := lo; i < hi; i++ {
		if i == s.tape.Ptr {
			fmt.Fprintf(&b, " [%d]", s.tape.Cells[i])
		} else {
			fmt.Fprintf(&b, " %d", s.tape.Cells[i])
		}
	}
	fmt.Fprintln(s.out, b.String())
}

// command handles a ":name" line. It returns false when the session should
// end.
func (s *replSession) command(line string) bool {
	name := strings.ToLower(strings.TrimSpace(line))
	switch name {
	case ":quit", ":q":
		return false
	case ":tape":
		s.showTape()
	case ":reset":
		s.tape = NewTape(s.cfg.TapeLength)
	default:
		if m := closestMatch(strings.TrimPrefix(name, ":"), replCommands); m != "" {
			fmt.Fprintf(s.out, "unknown command. Did you mean :%s?\n", m)
			break
		}
		fmt.Fprintln(s.out, "unknown command. Commands: :tape :reset :quit")
	}
	return true
}

func replCommand(args []string) int {
	cfg := DefaultConfig()
	fs := newFlagSet("repl", "repl [-t cells] [-d]", "Start an interactive session")
	cfg.registerTapeFlags(fs)
	fs.Var((*countFlag)(&cfg.Verbosity), "d", "enable debug trace on stderr (repeat for more detail)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newReplSession(cfg, os.Stdin, os.Stdout, os.Stderr)
	for {
		code, ok := readUntilBalanced(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if !s.command(code) {
				return 0
			}
			continue
		}
		if err := s.eval(code); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		fmt.Println()
	}
}

// readUntilBalanced reads lines until they form a program with no open
// loops. ok is false at end of input.
func readUntilBalanced(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := Parse(src); IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
