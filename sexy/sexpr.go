package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
	NodeMap
	NodeArray
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	case NodeMap:
		return "map"
	case NodeArray:
		return "array"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node represents any Sexy data structure
type Node struct {
	Type NodeType

	// Atoms
	Text string // NodeSymbol, NodeString, NodeInteger

	// Collections
	Items []*Node  // NodeList, NodeArray, NodeMap
	Keys  []string // NodeMap - parallel to Items

	// Metadata for NodeList - stored as parallel slices like maps
	MetaKeys  []string
	MetaItems []*Node
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return fmt.Sprintf("\"%s\"", escaped)
	case NodeEllipsis:
		return "..."
	case NodeList:
		var parts []string
		if len(n.MetaKeys) > 0 {
			parts = append(parts, "^"+mapString(n.MetaKeys, n.MetaItems))
		}
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))
	case NodeMap:
		return mapString(n.Keys, n.Items)
	case NodeArray:
		var parts []string
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, " "))
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func mapString(keys []string, items []*Node) string {
	var parts []string
	for i, key := range keys {
		if i < len(items) {
			parts = append(parts, fmt.Sprintf("%s: %s", key, items[i].String()))
		}
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// Helper constructors for common node types
func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

func NewListWithMeta(items []*Node, metaKeys []string, metaItems []*Node) *Node {
	return &Node{Type: NodeList, Items: items, MetaKeys: metaKeys, MetaItems: metaItems}
}

func NewMap(keys []string, items []*Node) *Node {
	return &Node{Type: NodeMap, Keys: keys, Items: items}
}

func NewArray(items []*Node) *Node {
	return &Node{Type: NodeArray, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type == NodeSymbol || n.Type == NodeString || n.Type == NodeInteger || n.Type == NodeEllipsis
}

// Meta returns the metadata value for key, or nil.
func (n *Node) Meta(key string) *Node {
	for i, k := range n.MetaKeys {
		if k == key && i < len(n.MetaItems) {
			return n.MetaItems[i]
		}
	}
	return nil
}

// Get returns the map value for key, or nil.
func (n *Node) Get(key string) *Node {
	for i, k := range n.Keys {
		if k == key && i < len(n.Items) {
			return n.Items[i]
		}
	}
	return nil
}

type parser struct {
	lexer        *lexer
	currentToken token
	peekToken    token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()

	result, err := p.ParseDatum()
	if len(p.lexer.errors) > 0 {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, fmt.Errorf("%s", p.lexer.errors[0])
	}
	if err != nil {
		return nil, err
	}

	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("expected EOF but got %s", p.currentToken.Type)
	}

	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.nextToken()
}

func (p *parser) ParseDatum() (*Node, error) {
	switch p.currentToken.Type {
	case tokenSymbol:
		return p.atom(NewSymbol(p.currentToken.Value))
	case tokenString:
		return p.atom(NewString(p.currentToken.Value))
	case tokenInteger:
		// Callers validate the integer when they need its value.
		return p.atom(NewInteger(p.currentToken.Value))
	case tokenEllipsis:
		return p.atom(NewEllipsis())
	case tokenLParen:
		return p.parseList()
	case tokenLBrace:
		return p.parseMap()
	case tokenLBracket:
		return p.parseArray()
	default:
		return nil, fmt.Errorf("unexpected token: %s", p.currentToken.Type)
	}
}

func (p *parser) atom(n *Node) (*Node, error) {
	p.nextToken()
	return n, nil
}

func (p *parser) parseList() (*Node, error) {
	var items []*Node
	var metaKeys []string
	var metaItems []*Node
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type != tokenCaret {
			item, err := p.ParseDatum()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		p.nextToken() // consume '^'
		if p.currentToken.Type != tokenLBrace {
			return nil, fmt.Errorf("expected '{' after '^' but got %s", p.currentToken.Type)
		}
		meta, err := p.parseMap()
		if err != nil {
			return nil, err
		}
		// Later values win.
		for i, key := range meta.Keys {
			found := false
			for j, existing := range metaKeys {
				if existing == key {
					metaItems[j] = meta.Items[i]
					found = true
					break
				}
			}
			if !found {
				metaKeys = append(metaKeys, key)
				metaItems = append(metaItems, meta.Items[i])
			}
		}
	}

	if p.currentToken.Type != tokenRParen {
		return nil, fmt.Errorf("expected ')' but got %s", p.currentToken.Type)
	}
	p.nextToken() // consume ')'

	if len(metaKeys) > 0 {
		return NewListWithMeta(items, metaKeys, metaItems), nil
	}
	return NewList(items), nil
}

func (p *parser) parseMap() (*Node, error) {
	var keys []string
	var items []*Node
	p.nextToken() // consume '{'

	for p.currentToken.Type != tokenRBrace && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type != tokenSymbol {
			return nil, fmt.Errorf("expected symbol for map key but got %s", p.currentToken.Type)
		}
		keys = append(keys, p.currentToken.Value)
		p.nextToken()

		if p.currentToken.Type != tokenColon {
			return nil, fmt.Errorf("expected ':' after map key but got %s", p.currentToken.Type)
		}
		p.nextToken()

		value, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		if p.currentToken.Type == tokenComma {
			p.nextToken()
		} else if p.currentToken.Type != tokenRBrace {
			return nil, fmt.Errorf("expected ',' or '}' in map but got %s", p.currentToken.Type)
		}
	}

	if p.currentToken.Type != tokenRBrace {
		return nil, fmt.Errorf("expected '}' but got %s", p.currentToken.Type)
	}
	p.nextToken() // consume '}'

	return NewMap(keys, items), nil
}

func (p *parser) parseArray() (*Node, error) {
	var items []*Node
	p.nextToken() // consume '['

	for p.currentToken.Type != tokenRBracket && p.currentToken.Type != tokenEOF {
		item, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRBracket {
		return nil, fmt.Errorf("expected ']' but got %s", p.currentToken.Type)
	}
	p.nextToken() // consume ']'

	return NewArray(items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenEllipsis
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenColon
	tokenComma
	tokenCaret
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenEllipsis:
		return "ellipsis"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenCaret:
		return "'^'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type     tokenType
	Value    string
	Position int
}

type lexer struct {
	input    string
	position int
	current  rune
	errors   []string
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.position >= len(l.input) {
		l.current = 0
	} else {
		l.current = rune(l.input[l.position])
	}
	l.position++
}

func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) skipWhitespace() {
	for unicode.IsSpace(l.current) {
		l.readChar()
	}
}

func (l *lexer) skipComment() {
	for l.current != '\n' && l.current != '\r' && l.current != 0 {
		l.readChar()
	}
}

func (l *lexer) readSymbol() string {
	start := l.position - 1
	for isSymbolChar(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) readString() (string, error) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.readChar()
			switch l.current {
			case '"':
				result.WriteByte('"')
			case '\\':
				result.WriteByte('\\')
			case 'n':
				result.WriteByte('\n')
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", l.current)
			}
		} else {
			result.WriteByte(byte(l.current))
		}
		l.readChar()
	}

	if l.current != '"' {
		return "", fmt.Errorf("unterminated string")
	}
	l.readChar() // skip closing quote

	return result.String(), nil
}

func (l *lexer) readInteger() string {
	start := l.position - 1
	if l.current == '+' || l.current == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) punct(typ tokenType, pos int) token {
	value := string(l.current)
	l.readChar()
	return token{Type: typ, Value: value, Position: pos}
}

func (l *lexer) nextToken() token {
	for {
		l.skipWhitespace()

		pos := l.position - 1

		switch l.current {
		case 0:
			return token{Type: tokenEOF, Position: pos}
		case ';':
			l.skipComment()
			continue
		case '(':
			return l.punct(tokenLParen, pos)
		case ')':
			return l.punct(tokenRParen, pos)
		case '{':
			return l.punct(tokenLBrace, pos)
		case '}':
			return l.punct(tokenRBrace, pos)
		case '[':
			return l.punct(tokenLBracket, pos)
		case ']':
			return l.punct(tokenRBracket, pos)
		case ':':
			return l.punct(tokenColon, pos)
		case ',':
			return l.punct(tokenComma, pos)
		case '^':
			return l.punct(tokenCaret, pos)
		case '"':
			str, err := l.readString()
			if err != nil {
				l.errors = append(l.errors, err.Error())
				return token{Type: tokenEOF, Position: pos}
			}
			return token{Type: tokenString, Value: str, Position: pos}
		case '.':
			if l.peekChar() == '.' {
				l.readChar()
				if l.peekChar() == '.' {
					l.readChar()
					l.readChar()
					return token{Type: tokenEllipsis, Value: "...", Position: pos}
				}
			}
			l.errors = append(l.errors, "unexpected character '.'")
			return token{Type: tokenEOF, Position: pos}
		default:
			if unicode.IsLetter(l.current) {
				symbol := l.readSymbol()
				return token{Type: tokenSymbol, Value: symbol, Position: pos}
			} else if unicode.IsDigit(l.current) || l.current == '+' || l.current == '-' {
				if (l.current == '+' || l.current == '-') && !unicode.IsDigit(l.peekChar()) {
					// Single + or - is a symbol
					return l.punct(tokenSymbol, pos)
				}
				integer := l.readInteger()
				return token{Type: tokenInteger, Value: integer, Position: pos}
			} else {
				l.errors = append(l.errors, fmt.Sprintf("unexpected character '%c'", l.current))
				return token{Type: tokenEOF, Position: pos}
			}
		}
	}
}

func isSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
