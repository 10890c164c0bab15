package main

import "strconv"

// builder accumulates blocks for one Lower call.
type builder struct {
	g       *Graph
	current BlockID
	loops   int
}

func (b *builder) newBlock(name string) BlockID {
	id := BlockID(len(b.g.Blocks))
	b.g.Blocks = append(b.g.Blocks, &Block{ID: id, Name: name})
	return id
}

func (b *builder) newValue() Value {
	v := Value(b.g.Values)
	b.g.Values++
	return v
}

func (b *builder) emit(in Instr) {
	blk := b.g.Blocks[b.current]
	if blk.Term.Kind != TermNone {
		panic("emit into terminated block " + blk.Name)
	}
	blk.Instrs = append(blk.Instrs, in)
}

// terminate ends block id. Each block is terminated exactly once.
func (b *builder) terminate(id BlockID, t Terminator) {
	blk := b.g.Blocks[id]
	if blk.Term.Kind != TermNone {
		panic("block " + blk.Name + " already terminated")
	}
	blk.Term = t
}

func (b *builder) jump(from, to BlockID) {
	b.terminate(from, Terminator{Kind: TermJump, Then: to})
}

// loadCell emits a load of the current cell and returns its value.
func (b *builder) loadCell() Value {
	v := b.newValue()
	b.emit(Instr{Op: OpLoad, Dst: v})
	return v
}

// scalar appends the instructions for one non-loop node to the current
// block.
func (b *builder) scalar(n *Node) {
	switch n.Kind {
	case NodeRight:
		b.emit(Instr{Op: OpPtrAdd, Imm: 1})
	case NodeLeft:
		b.emit(Instr{Op: OpPtrAdd, Imm: -1})
	case NodeInc, NodeDec:
		delta := 1
		if n.Kind == NodeDec {
			delta = -1
		}
		old := b.loadCell()
		sum := b.newValue()
		b.emit(Instr{Op: OpAdd, Dst: sum, Src: old, Imm: delta})
		b.emit(Instr{Op: OpStore, Src: sum})
	case NodeRead:
		old := b.loadCell()
		in := b.newValue()
		b.emit(Instr{Op: OpCall, Dst: in, Src: old, Callee: CallRead})
		b.emit(Instr{Op: OpStore, Src: in})
	case NodeWrite:
		cell := b.loadCell()
		b.emit(Instr{Op: OpCall, Dst: b.newValue(), Src: cell, Callee: CallWrite})
	default:
		panic("unexpected node kind " + string(n.Kind))
	}
}

// openLoop creates the header, body and exit blocks for loop, wires the
// current block to the header and the header to body/exit, and makes the
// body current. It returns the header and exit for closeLoop.
func (b *builder) openLoop() (header, exit BlockID) {
	b.loops++
	prefix := "loop" + strconv.Itoa(b.loops)
	header = b.newBlock(prefix + "-header")
	body := b.newBlock(prefix + "-body")
	exit = b.newBlock(prefix + "-exit")

	b.jump(b.current, header)

	b.current = header
	cell := b.loadCell()
	cond := b.newValue()
	b.emit(Instr{Op: OpNonZero, Dst: cond, Src: cell})
	b.terminate(header, Terminator{Kind: TermBranch, Cond: cond, Then: body, Else: exit})

	b.current = body
	return header, exit
}

// closeLoop jumps from the last block produced by the loop body back to
// header and continues in exit. The last block is not necessarily the
// body block: nested loops leave their own exit block current.
func (b *builder) closeLoop(header, exit BlockID) {
	b.jump(b.current, header)
	b.current = exit
}

// Lower translates prog into a basic-block graph for a tape of tapeLen
// cells. It performs no I/O and cannot fail on a parsed program.
//
// Every loop produces exactly three blocks. The walk uses an explicit stack
// so nesting depth does not grow the goroutine stack.
func Lower(prog *Program, tapeLen int) *Graph {
	b := &builder{g: &Graph{TapeLen: tapeLen}}
	b.g.Entry = b.newBlock("entry")
	b.current = b.g.Entry

	type frame struct {
		nodes  []*Node
		i      int
		header BlockID
		exit   BlockID
		isLoop bool
	}
	stack := []frame{{nodes: prog.Nodes}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.nodes) {
			if top.isLoop {
				b.closeLoop(top.header, top.exit)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		n := top.nodes[top.i]
		top.i++
		if n.Kind != NodeLoop {
			b.scalar(n)
			continue
		}
		header, exit := b.openLoop()
		stack = append(stack, frame{nodes: n.Body, header: header, exit: exit, isLoop: true})
	}

	b.terminate(b.current, Terminator{Kind: TermReturn})
	b.g.Return = b.current
	return b.g
}
