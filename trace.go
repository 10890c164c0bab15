package main

import (
	"fmt"
	"io"
)

// Tracer receives execution events from the Interpreter. It observes only;
// nothing a Tracer does changes the program's result.
type Tracer interface {
	// LoopCheck is called before every evaluation of a loop condition.
	LoopCheck(pos Position, ptr int, value byte)
	// LoopExit is called when a loop condition evaluates to zero.
	LoopExit(pos Position, ptr int)
	// CellChanged is called after an increment or decrement.
	CellChanged(pos Position, ptr int, value byte)
}

// TraceWriter writes one line per event to W.
//
// Level 1 traces loop checks and exits. Level 2 and above also traces
// every increment and decrement.
type TraceWriter struct {
	W     io.Writer
	Level int
}

// NewTraceWriter returns a Tracer writing to w, or nil if level is 0 or
// lower.
func NewTraceWriter(w io.Writer, level int) Tracer {
	if level <= 0 {
		return nil
	}
	return &TraceWriter{W: w, Level: level}
}

func (t *TraceWriter) LoopCheck(pos Position, ptr int, value byte) {
	fmt.Fprintf(t.W, "%s: loop check: cell[%d] = %d\n", pos, ptr, value)
}

func (t *TraceWriter) LoopExit(pos Position, ptr int) {
	fmt.Fprintf(t.W, "%s: loop exit: cell[%d] = 0\n", pos, ptr)
}

func (t *TraceWriter) CellChanged(pos Position, ptr int, value byte) {
	if t.Level < 2 {
		return
	}
	fmt.Fprintf(t.W, "%s: cell[%d] = %d %q\n", pos, ptr, value, rune(value))
}
