package main

import (
	"fmt"
	"strings"
)

// NodeKind represents the different kinds of syntax tree nodes
type NodeKind string

const (
	NodeRight NodeKind = "NodeRight"
	NodeLeft  NodeKind = "NodeLeft"
	NodeInc   NodeKind = "NodeInc"
	NodeDec   NodeKind = "NodeDec"
	NodeRead  NodeKind = "NodeRead"
	NodeWrite NodeKind = "NodeWrite"
	NodeLoop  NodeKind = "NodeLoop"
)

// Node is one instruction of the syntax tree.
type Node struct {
	Kind NodeKind
	Pos  Position // for NodeLoop, the position of the opening bracket
	// NodeLoop:
	Body []*Node
}

// Program is the root of a syntax tree.
type Program struct {
	Nodes []*Node
}

// SyntaxErrorKind identifies a bracket nesting failure.
type SyntaxErrorKind int

const (
	UnopenedLoop SyntaxErrorKind = iota
	UnclosedLoop
)

// SyntaxError is returned by the parser when brackets do not nest.
type SyntaxError struct {
	Kind SyntaxErrorKind
	Pos  Position
}

func (e *SyntaxError) Message() string {
	switch e.Kind {
	case UnopenedLoop:
		return "Unopened loop"
	case UnclosedLoop:
		return "Unclosed loop"
	default:
		return "Syntax error"
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message(), e.Pos.Line, e.Pos.Column)
}

// scalarKind maps an instruction token to its node kind. Brackets and
// comments have no scalar node.
func scalarKind(k TokenKind) (NodeKind, bool) {
	switch k {
	case MoveRight:
		return NodeRight, true
	case MoveLeft:
		return NodeLeft, true
	case Increment:
		return NodeInc, true
	case Decrement:
		return NodeDec, true
	case Read:
		return NodeRead, true
	case Write:
		return NodeWrite, true
	default:
		return "", false
	}
}

// Parse tokenizes and parses src.
func Parse(src string) (*Program, error) {
	return ParseTokens(Tokenize(src))
}

// ParseTokens builds a syntax tree in a single left-to-right pass.
//
// Open loops are kept on an explicit stack rather than the call stack, so
// nesting depth is limited only by memory. Returns a *SyntaxError for an
// unmatched ']' (at that bracket) or for input ending inside a loop (at the
// outermost unterminated '[').
func ParseTokens(tokens []Token) (*Program, error) {
	// open[0] is the top-level sequence; every later entry is a loop whose
	// closing bracket has not been seen yet.
	open := []*Node{{Kind: NodeLoop}}

	for _, tok := range tokens {
		cur := open[len(open)-1]
		if kind, ok := scalarKind(tok.Kind); ok {
			cur.Body = append(cur.Body, &Node{Kind: kind, Pos: tok.Pos})
			continue
		}

		switch tok.Kind {
		case LoopStart:
			loop := &Node{Kind: NodeLoop, Pos: tok.Pos, Body: []*Node{}}
			open = append(open, loop)
		case LoopEnd:
			if len(open) == 1 {
				return nil, &SyntaxError{Kind: UnopenedLoop, Pos: tok.Pos}
			}
			open = open[:len(open)-1]
			parent := open[len(open)-1]
			parent.Body = append(parent.Body, cur)
		}
	}

	if len(open) > 1 {
		return nil, &SyntaxError{Kind: UnclosedLoop, Pos: open[1].Pos}
	}
	return &Program{Nodes: open[0].Body}, nil
}

// Flatten returns the scalar instructions of prog in source order,
// dropping the loop wrappers.
func Flatten(prog *Program) []NodeKind {
	var kinds []NodeKind
	Walk(prog, func(n *Node) {
		if n.Kind != NodeLoop {
			kinds = append(kinds, n.Kind)
		}
	})
	return kinds
}

// Walk calls fn for every node in prog in pre-order.
func Walk(prog *Program, fn func(*Node)) {
	type frame struct {
		nodes []*Node
		i     int
	}
	stack := []frame{{nodes: prog.Nodes}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[top.i]
		top.i++
		fn(n)
		if n.Kind == NodeLoop {
			stack = append(stack, frame{nodes: n.Body})
		}
	}
}

// ToSExpr converts a program to its s-expression representation
func ToSExpr(prog *Program) string {
	var b strings.Builder
	b.WriteString("(program")
	writeNodes(&b, prog.Nodes)
	b.WriteString(")")
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		b.WriteString(" ")
		b.WriteString(nodeSExpr(n))
	}
}

// nodeSExpr renders one node, including loop bodies. Recursion depth
// follows loop nesting, which is fine for diagnostics.
func nodeSExpr(n *Node) string {
	switch n.Kind {
	case NodeRight:
		return "(right)"
	case NodeLeft:
		return "(left)"
	case NodeInc:
		return "(inc)"
	case NodeDec:
		return "(dec)"
	case NodeRead:
		return "(read)"
	case NodeWrite:
		return "(write)"
	case NodeLoop:
		var b strings.Builder
		b.WriteString("(loop")
		writeNodes(&b, n.Body)
		b.WriteString(")")
		return b.String()
	default:
		return ""
	}
}
