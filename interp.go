package main

import (
	"errors"
	"fmt"
	"io"
)

// DefaultTapeLength is the number of cells used when none is configured.
const DefaultTapeLength = 30000

// Tape is the byte array a program operates on, plus the cell pointer.
type Tape struct {
	Cells []byte
	Ptr   int
}

// NewTape returns a zeroed tape of n cells with the pointer at cell 0.
func NewTape(n int) *Tape {
	return &Tape{Cells: make([]byte, n)}
}

// Current returns the value of the cell under the pointer.
func (t *Tape) Current() byte {
	return t.Cells[t.Ptr]
}

// RuntimeErrorKind identifies why execution stopped.
type RuntimeErrorKind int

const (
	OffTapeStart RuntimeErrorKind = iota
	OffTapeEnd
	IOError
)

// RuntimeError is returned by the Interpreter. Pos is the instruction that
// failed.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Pos     Position
	TapeLen int   // OffTapeEnd only
	Err     error // IOError only
}

func (e *RuntimeError) Message() string {
	switch e.Kind {
	case OffTapeStart:
		return "Tried to move past tape beginning"
	case OffTapeEnd:
		return "Tried to move past end of tape"
	case IOError:
		return "I/O failure"
	default:
		return "Runtime error"
	}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message(), e.Pos.Line, e.Pos.Column)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// flusher is implemented by buffered outputs such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Interpreter executes a syntax tree directly.
type Interpreter struct {
	In    io.Reader
	Out   io.Writer
	Trace Tracer // optional
}

// NewInterpreter returns an Interpreter reading from in and writing to out.
func NewInterpreter(in io.Reader, out io.Writer) *Interpreter {
	return &Interpreter{In: in, Out: out}
}

// Exec runs prog on a fresh tape of tapeLen cells.
func (ip *Interpreter) Exec(prog *Program, tapeLen int) error {
	return ip.Run(prog, NewTape(tapeLen))
}

// Run runs prog against tape, leaving the tape in its final state. It stops
// at the first error.
//
// A loop's condition is read before each iteration, including the first.
// Loop bodies are tracked on an explicit frame stack so deeply nested
// programs do not grow the goroutine stack.
func (ip *Interpreter) Run(prog *Program, tape *Tape) error {
	type frame struct {
		loop  *Node // nil for the top level
		nodes []*Node
		i     int
	}
	stack := []frame{{nodes: prog.Nodes}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.i >= len(top.nodes) {
			if top.loop == nil || !ip.enterLoop(top.loop, tape) {
				stack = stack[:len(stack)-1]
				continue
			}
			top.i = 0
			continue
		}

		n := top.nodes[top.i]
		top.i++

		if n.Kind == NodeLoop {
			if ip.enterLoop(n, tape) {
				stack = append(stack, frame{loop: n, nodes: n.Body})
			}
			continue
		}
		if err := ip.step(n, tape); err != nil {
			return err
		}
	}
	return nil
}

// enterLoop evaluates the condition of loop and reports whether its body
// should run.
func (ip *Interpreter) enterLoop(loop *Node, tape *Tape) bool {
	v := tape.Current()
	if ip.Trace != nil {
		ip.Trace.LoopCheck(loop.Pos, tape.Ptr, v)
	}
	if v != 0 {
		return true
	}
	if ip.Trace != nil {
		ip.Trace.LoopExit(loop.Pos, tape.Ptr)
	}
	return false
}

// step executes a single scalar node.
func (ip *Interpreter) step(n *Node, tape *Tape) error {
	switch n.Kind {
	case NodeRight:
		if tape.Ptr == len(tape.Cells)-1 {
			return &RuntimeError{Kind: OffTapeEnd, Pos: n.Pos, TapeLen: len(tape.Cells)}
		}
		tape.Ptr++

	case NodeLeft:
		if tape.Ptr == 0 {
			return &RuntimeError{Kind: OffTapeStart, Pos: n.Pos}
		}
		tape.Ptr--

	case NodeInc:
		tape.Cells[tape.Ptr]++
		if ip.Trace != nil {
			ip.Trace.CellChanged(n.Pos, tape.Ptr, tape.Current())
		}

	case NodeDec:
		tape.Cells[tape.Ptr]--
		if ip.Trace != nil {
			ip.Trace.CellChanged(n.Pos, tape.Ptr, tape.Current())
		}

	case NodeRead:
		// Anything already written should be visible before blocking.
		if f, ok := ip.Out.(flusher); ok {
			if err := f.Flush(); err != nil {
				return &RuntimeError{Kind: IOError, Pos: n.Pos, Err: err}
			}
		}
		var buf [1]byte
		_, err := io.ReadFull(ip.In, buf[:])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &RuntimeError{Kind: IOError, Pos: n.Pos, Err: err}
		}
		tape.Cells[tape.Ptr] = buf[0]

	case NodeWrite:
		k, err := ip.Out.Write([]byte{tape.Current()})
		if err != nil {
			return &RuntimeError{Kind: IOError, Pos: n.Pos, Err: err}
		}
		if k != 1 {
			return &RuntimeError{Kind: IOError, Pos: n.Pos, Err: io.ErrShortWrite}
		}

	default:
		panic("unexpected node kind " + string(n.Kind))
	}
	return nil
}
