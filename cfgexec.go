package main

import (
	"errors"
	"fmt"
	"io"
)

// ErrTapeFault is returned by Machine when lowered code touches memory
// outside the tape. Lowered code performs no bounds checks of its own.
var ErrTapeFault = errors.New("tape access out of bounds")

// Machine executes a lowered Graph the way a native backend would: the
// pointer is a plain integer and the I/O primitives are external calls.
// It exists to check lowered graphs against the Interpreter.
type Machine struct {
	In  io.Reader
	Out io.Writer

	Tape []byte
	Ptr  int
}

// NewMachine returns a Machine with a zeroed tape sized for g.
func NewMachine(g *Graph, in io.Reader, out io.Writer) *Machine {
	return &Machine{In: in, Out: out, Tape: make([]byte, g.TapeLen)}
}

func (m *Machine) call(c Callee, arg byte) (byte, error) {
	switch c {
	case CallRead:
		var buf [1]byte
		_, err := io.ReadFull(m.In, buf[:])
		if errors.Is(err, io.EOF) {
			return arg, nil
		}
		if err != nil {
			return 0, err
		}
		return buf[0], nil
	case CallWrite:
		k, err := m.Out.Write([]byte{arg})
		if err == nil && k != 1 {
			err = io.ErrShortWrite
		}
		return arg, err
	default:
		return 0, fmt.Errorf("unknown callee %s", c)
	}
}

func (m *Machine) checkPtr() error {
	if m.Ptr < 0 || m.Ptr >= len(m.Tape) {
		return fmt.Errorf("%w: pointer %d, tape length %d", ErrTapeFault, m.Ptr, len(m.Tape))
	}
	return nil
}

// Run executes g from its entry block until the return block is reached.
func (m *Machine) Run(g *Graph) error {
	regs := make([]byte, g.Values)
	id := g.Entry
	for {
		blk := g.Block(id)
		for _, in := range blk.Instrs {
			switch in.Op {
			case OpPtrAdd:
				m.Ptr += in.Imm
			case OpLoad:
				if err := m.checkPtr(); err != nil {
					return fmt.Errorf("block %s: %w", blk.Name, err)
				}
				regs[in.Dst] = m.Tape[m.Ptr]
			case OpAdd:
				regs[in.Dst] = regs[in.Src] + byte(in.Imm)
			case OpStore:
				if err := m.checkPtr(); err != nil {
					return fmt.Errorf("block %s: %w", blk.Name, err)
				}
				m.Tape[m.Ptr] = regs[in.Src]
			case OpCall:
				v, err := m.call(in.Callee, regs[in.Src])
				if err != nil {
					return fmt.Errorf("block %s: %s: %w", blk.Name, in.Callee, err)
				}
				regs[in.Dst] = v
			case OpNonZero:
				regs[in.Dst] = 0
				if regs[in.Src] != 0 {
					regs[in.Dst] = 1
				}
			default:
				return fmt.Errorf("block %s: unknown op %d", blk.Name, in.Op)
			}
		}

		switch blk.Term.Kind {
		case TermJump:
			id = blk.Term.Then
		case TermBranch:
			if regs[blk.Term.Cond] != 0 {
				id = blk.Term.Then
			} else {
				id = blk.Term.Else
			}
		case TermReturn:
			return nil
		default:
			return fmt.Errorf("block %s has no terminator", blk.Name)
		}
	}
}
