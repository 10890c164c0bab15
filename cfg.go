package main

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockID indexes Graph.Blocks.
type BlockID int

// Value is a virtual register holding one byte or a condition. Values are
// numbered from 0 in the order they are defined and are assigned once.
type Value int

func (v Value) String() string {
	return "v" + strconv.Itoa(int(v))
}

// Op is a low-level instruction opcode.
type Op int

const (
	// OpPtrAdd adds Imm to the pointer local. No bounds check.
	OpPtrAdd Op = iota
	// OpLoad loads tape[ptr] into Dst.
	OpLoad
	// OpAdd sets Dst to Src + Imm, modulo 256.
	OpAdd
	// OpStore stores Src into tape[ptr].
	OpStore
	// OpCall calls Callee with Src and puts the result in Dst.
	OpCall
	// OpNonZero sets Dst to whether Src is not zero.
	OpNonZero
)

// Callee names one of the two external byte I/O primitives.
type Callee int

const (
	// CallRead takes the current cell value and returns the next input
	// byte, or its argument unchanged at end of input.
	CallRead Callee = iota
	// CallWrite outputs its argument and returns it.
	CallWrite
)

func (c Callee) String() string {
	switch c {
	case CallRead:
		return "read"
	case CallWrite:
		return "write"
	default:
		return "callee" + strconv.Itoa(int(c))
	}
}

// Instr is one straight-line instruction. Fields not used by Op are zero.
type Instr struct {
	Op     Op
	Dst    Value
	Src    Value
	Imm    int
	Callee Callee
}

// TermKind is the kind of control transfer ending a block.
type TermKind int

const (
	TermNone TermKind = iota // block not finished yet
	TermJump
	TermBranch
	TermReturn
)

// Terminator ends a basic block.
type Terminator struct {
	Kind TermKind
	// TermBranch:
	Cond Value
	// TermJump: Then. TermBranch: Then when Cond is nonzero, else Else.
	Then BlockID
	Else BlockID
}

// Block is a basic block: instructions followed by exactly one terminator.
type Block struct {
	ID     BlockID
	Name   string
	Instrs []Instr
	Term   Terminator
}

// Graph is the lowered form of a program.
type Graph struct {
	Blocks  []*Block
	Entry   BlockID
	Return  BlockID // the block whose terminator is TermReturn
	TapeLen int
	Values  int // number of Values defined
}

// Block returns the block with the given id.
func (g *Graph) Block(id BlockID) *Block {
	return g.Blocks[id]
}

// Validate checks the structural invariants of a lowered graph.
func (g *Graph) Validate() error {
	if len(g.Blocks) == 0 {
		return fmt.Errorf("graph has no blocks")
	}
	inRange := func(id BlockID) bool {
		return id >= 0 && int(id) < len(g.Blocks)
	}
	if !inRange(g.Entry) {
		return fmt.Errorf("entry block %d out of range", g.Entry)
	}
	if !inRange(g.Return) {
		return fmt.Errorf("return block %d out of range", g.Return)
	}

	returns := 0
	for i, b := range g.Blocks {
		if b.ID != BlockID(i) {
			return fmt.Errorf("block %q has id %d at index %d", b.Name, b.ID, i)
		}
		switch b.Term.Kind {
		case TermJump:
			if !inRange(b.Term.Then) {
				return fmt.Errorf("block %q jumps to unknown block %d", b.Name, b.Term.Then)
			}
		case TermBranch:
			if !inRange(b.Term.Then) || !inRange(b.Term.Else) {
				return fmt.Errorf("block %q branches to unknown block", b.Name)
			}
		case TermReturn:
			returns++
			if b.ID != g.Return {
				return fmt.Errorf("block %q returns but is not the return block", b.Name)
			}
		default:
			return fmt.Errorf("block %q has no terminator", b.Name)
		}
	}
	if returns != 1 {
		return fmt.Errorf("expected 1 return block, found %d", returns)
	}
	return nil
}

// SExpr renders the graph as an s-expression, one (block ...) per block in
// creation order.
func (g *Graph) SExpr() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(cfg ^{tape: %d, entry: %s}", g.TapeLen, g.Blocks[g.Entry].Name)
	for _, blk := range g.Blocks {
		b.WriteString("\n  (block ")
		b.WriteString(blk.Name)
		for _, in := range blk.Instrs {
			b.WriteString(" ")
			b.WriteString(in.SExpr())
		}
		b.WriteString(" ")
		b.WriteString(g.termSExpr(blk.Term))
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String()
}

// SExpr renders a single instruction.
func (in Instr) SExpr() string {
	switch in.Op {
	case OpPtrAdd:
		return fmt.Sprintf("(ptr-add %d)", in.Imm)
	case OpLoad:
		return fmt.Sprintf("(load %s)", in.Dst)
	case OpAdd:
		return fmt.Sprintf("(add %s %s %d)", in.Dst, in.Src, in.Imm)
	case OpStore:
		return fmt.Sprintf("(store %s)", in.Src)
	case OpCall:
		return fmt.Sprintf("(call %s %s %s)", in.Dst, in.Callee, in.Src)
	case OpNonZero:
		return fmt.Sprintf("(nonzero %s %s)", in.Dst, in.Src)
	default:
		return fmt.Sprintf("(op%d)", int(in.Op))
	}
}

func (g *Graph) termSExpr(t Terminator) string {
	switch t.Kind {
	case TermJump:
		return "(jump " + g.Blocks[t.Then].Name + ")"
	case TermBranch:
		return "(branch " + t.Cond.String() + " " + g.Blocks[t.Then].Name + " " + g.Blocks[t.Else].Name + ")"
	case TermReturn:
		return "(ret)"
	default:
		return "(unterminated)"
	}
}
