package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func lower(t *testing.T, src string) *Graph {
	t.Helper()
	g := Lower(mustParse(t, src), DefaultTapeLength)
	be.Err(t, g.Validate(), nil)
	return g
}

func blockNames(g *Graph) []string {
	var names []string
	for _, b := range g.Blocks {
		names = append(names, b.Name)
	}
	return names
}

func TestLowerEmpty(t *testing.T) {
	t.Parallel()
	g := lower(t, "")
	be.Equal(t, blockNames(g), []string{"entry"})
	be.Equal(t, g.Return, g.Entry)
	be.Equal(t, g.SExpr(), "(cfg ^{tape: 30000, entry: entry}\n  (block entry (ret)))")
}

func TestLowerScalars(t *testing.T) {
	t.Parallel()
	g := lower(t, "><+-,.")
	be.Equal(t, len(g.Blocks), 1)
	be.Equal(t, g.Blocks[0].Instrs, []Instr{
		{Op: OpPtrAdd, Imm: 1},
		{Op: OpPtrAdd, Imm: -1},
		{Op: OpLoad, Dst: 0},
		{Op: OpAdd, Dst: 1, Src: 0, Imm: 1},
		{Op: OpStore, Src: 1},
		{Op: OpLoad, Dst: 2},
		{Op: OpAdd, Dst: 3, Src: 2, Imm: -1},
		{Op: OpStore, Src: 3},
		{Op: OpLoad, Dst: 4},
		{Op: OpCall, Dst: 5, Src: 4, Callee: CallRead},
		{Op: OpStore, Src: 5},
		{Op: OpLoad, Dst: 6},
		{Op: OpCall, Dst: 7, Src: 6, Callee: CallWrite},
	})
	be.Equal(t, g.Values, 8)
}

func TestLowerClearLoop(t *testing.T) {
	t.Parallel()
	g := lower(t, "+[-]")
	be.Equal(t, g.SExpr(), `(cfg ^{tape: 30000, entry: entry}
  (block entry (load v0) (add v1 v0 1) (store v1) (jump loop1-header))
  (block loop1-header (load v2) (nonzero v3 v2) (branch v3 loop1-body loop1-exit))
  (block loop1-body (load v4) (add v5 v4 -1) (store v5) (jump loop1-header))
  (block loop1-exit (ret)))`)
	be.Equal(t, g.Block(g.Return).Name, "loop1-exit")
}

// Even an empty loop gets its own header, body and exit.
func TestLowerEmptyLoop(t *testing.T) {
	t.Parallel()
	g := lower(t, "[]")
	be.Equal(t, blockNames(g), []string{"entry", "loop1-header", "loop1-body", "loop1-exit"})

	body := g.Blocks[2]
	be.Equal(t, len(body.Instrs), 0)
	be.Equal(t, body.Term, Terminator{Kind: TermJump, Then: 1})
}

func TestLowerNestedLoops(t *testing.T) {
	t.Parallel()
	g := lower(t, "[[]]")
	be.Equal(t, blockNames(g), []string{
		"entry",
		"loop1-header", "loop1-body", "loop1-exit",
		"loop2-header", "loop2-body", "loop2-exit",
	})

	byName := map[string]*Block{}
	for _, b := range g.Blocks {
		byName[b.Name] = b
	}
	jumpTarget := func(name string) string {
		term := byName[name].Term
		be.Equal(t, term.Kind, TermJump)
		return g.Block(term.Then).Name
	}

	be.Equal(t, jumpTarget("entry"), "loop1-header")
	be.Equal(t, jumpTarget("loop1-body"), "loop2-header")
	be.Equal(t, jumpTarget("loop2-body"), "loop2-header")
	// The outer loop closes from the block the inner loop left current.
	be.Equal(t, jumpTarget("loop2-exit"), "loop1-header")
	be.Equal(t, byName["loop1-exit"].Term.Kind, TermReturn)
	be.Equal(t, g.Block(g.Return).Name, "loop1-exit")
}

func TestLowerSequentialLoops(t *testing.T) {
	t.Parallel()
	g := lower(t, "[-]>[-]")
	be.Equal(t, blockNames(g), []string{
		"entry",
		"loop1-header", "loop1-body", "loop1-exit",
		"loop2-header", "loop2-body", "loop2-exit",
	})
	exit1 := g.Blocks[3]
	be.Equal(t, exit1.Instrs, []Instr{{Op: OpPtrAdd, Imm: 1}})
	be.Equal(t, g.Block(exit1.Term.Then).Name, "loop2-header")
}

func TestLowerBlockCount(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"",
		"+",
		"[]",
		"[[][]]",
		"+[>+[>,.<-]<-][.]",
	}
	for _, input := range inputs {
		g := lower(t, input)
		loops := strings.Count(input, "[")
		be.Equal(t, len(g.Blocks), 1+3*loops)
	}
}

// Every non-branch block has exactly one successor, and every header has
// two, so every block is terminated once.
func TestLowerTerminators(t *testing.T) {
	t.Parallel()
	g := lower(t, "+[>+[>,.<-]<-]>[.]")
	returns := 0
	for _, b := range g.Blocks {
		switch {
		case strings.HasSuffix(b.Name, "-header"):
			be.Equal(t, b.Term.Kind, TermBranch)
		case b.Term.Kind == TermReturn:
			returns++
		default:
			be.Equal(t, b.Term.Kind, TermJump)
		}
	}
	be.Equal(t, returns, 1)
}

func TestLowerDeepNesting(t *testing.T) {
	t.Parallel()
	const depth = 100000
	src := strings.Repeat("[", depth) + strings.Repeat("]", depth)
	g := Lower(mustParse(t, src), 16)
	be.Equal(t, len(g.Blocks), 1+3*depth)
	be.Err(t, g.Validate(), nil)
}

func TestLowerTapeLength(t *testing.T) {
	t.Parallel()
	g := Lower(mustParse(t, "+"), 7)
	be.Equal(t, g.TapeLen, 7)
	be.True(t, strings.HasPrefix(g.SExpr(), "(cfg ^{tape: 7, entry: entry}"))
}

func TestGraphValidate(t *testing.T) {
	t.Parallel()
	ret := Terminator{Kind: TermReturn}
	tests := []struct {
		name    string
		graph   *Graph
		message string
	}{
		{
			"no blocks",
			&Graph{},
			"graph has no blocks",
		},
		{
			"unterminated",
			&Graph{Blocks: []*Block{{ID: 0, Name: "entry"}}},
			`block "entry" has no terminator`,
		},
		{
			"bad jump",
			&Graph{Blocks: []*Block{{ID: 0, Name: "entry", Term: Terminator{Kind: TermJump, Then: 4}}}},
			`block "entry" jumps to unknown block 4`,
		},
		{
			"two returns",
			&Graph{Blocks: []*Block{
				{ID: 0, Name: "entry", Term: ret},
				{ID: 1, Name: "other", Term: ret},
			}},
			`block "other" returns but is not the return block`,
		},
		{
			"no return",
			&Graph{Blocks: []*Block{{ID: 0, Name: "entry", Term: Terminator{Kind: TermJump, Then: 0}}}},
			"expected 1 return block, found 0",
		},
		{
			"bad id",
			&Graph{Blocks: []*Block{{ID: 3, Name: "entry", Term: ret}}},
			`block "entry" has id 3 at index 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Err(t, tt.graph.Validate(), tt.message)
		})
	}
}

func TestInstrSExpr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		instr    Instr
		expected string
	}{
		{Instr{Op: OpPtrAdd, Imm: -1}, "(ptr-add -1)"},
		{Instr{Op: OpLoad, Dst: 3}, "(load v3)"},
		{Instr{Op: OpAdd, Dst: 4, Src: 3, Imm: 1}, "(add v4 v3 1)"},
		{Instr{Op: OpStore, Src: 4}, "(store v4)"},
		{Instr{Op: OpCall, Dst: 6, Src: 5, Callee: CallRead}, "(call v6 read v5)"},
		{Instr{Op: OpCall, Dst: 8, Src: 7, Callee: CallWrite}, "(call v8 write v7)"},
		{Instr{Op: OpNonZero, Dst: 1, Src: 0}, "(nonzero v1 v0)"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.instr.SExpr(), tt.expected)
	}
}
