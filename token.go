package main

import (
	"strconv"
	"strings"
)

// Position is a 1-based line/column location in the program source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind classifies a single source character.
type TokenKind int

const (
	Comment TokenKind = iota // anything that is not an instruction
	MoveRight                // >
	MoveLeft                 // <
	Increment                // +
	Decrement                // -
	Read                     // ,
	Write                    // .
	LoopStart                // [
	LoopEnd                  // ]
)

func (k TokenKind) String() string {
	switch k {
	case Comment:
		return "Comment"
	case MoveRight:
		return "MoveRight"
	case MoveLeft:
		return "MoveLeft"
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case LoopStart:
		return "LoopStart"
	case LoopEnd:
		return "LoopEnd"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is one classified source character.
type Token struct {
	Kind TokenKind
	Pos  Position
}

// ClassifyRune maps a character to its token kind. Every character has one.
func ClassifyRune(r rune) TokenKind {
	switch r {
	case '>':
		return MoveRight
	case '<':
		return MoveLeft
	case '+':
		return Increment
	case '-':
		return Decrement
	case ',':
		return Read
	case '.':
		return Write
	case '[':
		return LoopStart
	case ']':
		return LoopEnd
	default:
		return Comment
	}
}

// Tokenize produces one token per character of src, in source order.
// Line terminators end a line and do not produce tokens; a "\r\n" pair
// counts as a single terminator.
func Tokenize(src string) []Token {
	tokens := make([]Token, 0, len(src))
	line := 0
	for len(src) > 0 {
		line++
		var text string
		if i := strings.IndexByte(src, '\n'); i >= 0 {
			text, src = src[:i], src[i+1:]
		} else {
			text, src = src, ""
		}
		text = strings.TrimSuffix(text, "\r")

		col := 0
		for _, r := range text {
			col++
			tokens = append(tokens, Token{
				Kind: ClassifyRune(r),
				Pos:  Position{Line: line, Column: col},
			})
		}
	}
	return tokens
}
