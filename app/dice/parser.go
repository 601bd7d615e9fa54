package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the type of a token in a roll expression
type TokenType int

const (
	TokenNumber TokenType = iota // A run of digits
	TokenLetter                  // A single letter (d, w, f, x, h, k, l, ...)
	TokenSymbol                  // An operator, comparator, brace or paren
	TokenEOF                     // End of expression
)

// Token represents a token in a roll expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Tokenizer tokenizes a roll expression
type Tokenizer struct {
	input    string
	pos      int
	tokens   []Token
	tokenPos int
}

// NewTokenizer creates a new tokenizer for a roll expression
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	t.tokenize()
	return t
}

// tokenize splits the input into tokens
func (t *Tokenizer) tokenize() {
	t.tokens = nil
	t.pos = 0

	for t.pos < len(t.input) {
		if t.isWhitespace(t.input[t.pos]) {
			t.pos++
			continue
		}

		start := t.pos
		c := t.input[t.pos]
		switch {
		case c >= '0' && c <= '9':
			for t.pos < len(t.input) && t.input[t.pos] >= '0' && t.input[t.pos] <= '9' {
				t.pos++
			}
			t.tokens = append(t.tokens, Token{Type: TokenNumber, Value: t.input[start:t.pos], Pos: start})

		case isLetter(c):
			t.pos++
			t.tokens = append(t.tokens, Token{Type: TokenLetter, Value: t.input[start:t.pos], Pos: start})

		case (c == '>' || c == '<' || c == '!') && t.pos+1 < len(t.input) && t.input[t.pos+1] == '=':
			t.pos += 2
			t.tokens = append(t.tokens, Token{Type: TokenSymbol, Value: t.input[start:t.pos], Pos: start})

		default:
			t.pos++
			t.tokens = append(t.tokens, Token{Type: TokenSymbol, Value: t.input[start:t.pos], Pos: start})
		}
	}

	t.tokens = append(t.tokens, Token{Type: TokenEOF, Value: "", Pos: len(t.input)})
}

func (t *Tokenizer) isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Peek returns the current token without consuming it
func (t *Tokenizer) Peek() Token {
	if t.tokenPos >= len(t.tokens) {
		return Token{Type: TokenEOF, Value: "", Pos: len(t.input)}
	}
	return t.tokens[t.tokenPos]
}

// Next returns the current token and advances to the next
func (t *Tokenizer) Next() Token {
	tok := t.Peek()
	t.tokenPos++
	return tok
}

// Parser parses roll expressions into terms
type Parser struct {
	tokenizer *Tokenizer
}

// Parse parses a complete roll expression with its optional "# label"
// suffix. Whitespace runs inside the label collapse to single spaces.
func Parse(input string) (*Labeled, error) {
	exprText := input
	label := ""
	if idx := strings.IndexByte(input, '#'); idx >= 0 {
		exprText = input[:idx]
		label = strings.Join(strings.Fields(input[idx+1:]), " ")
	}
	expr, err := ParseExpression(exprText)
	if err != nil {
		return nil, err
	}
	return &Labeled{Expression: *expr, Label: label}, nil
}

// ParseExpression parses a term or an N{term} list. The input must be fully
// consumed, trailing input is an error.
func ParseExpression(input string) (*Expression, error) {
	p := &Parser{tokenizer: NewTokenizer(input)}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseTerm parses a bare term without list or label syntax.
func ParseTerm(input string) (Term, error) {
	p := &Parser{tokenizer: NewTokenizer(input)}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return term, nil
}

func (p *Parser) parseExpression() (*Expression, error) {
	// a list needs two tokens of lookahead: a count followed by a brace
	if p.tokenizer.Peek().Type == TokenNumber {
		save := p.tokenizer.tokenPos
		count := p.tokenizer.Next()
		if tok := p.tokenizer.Peek(); tok.Type == TokenSymbol && tok.Value == "{" {
			n, err := parseU32(count)
			if err != nil {
				return nil, err
			}
			p.tokenizer.Next() // consume {
			term, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			if err := p.expect("}"); err != nil {
				return nil, err
			}
			return &Expression{Count: n, Term: term}, nil
		}
		p.tokenizer.tokenPos = save
	}

	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &Expression{Term: term}, nil
}

func (p *Parser) parseTerm() (Term, error) {
	return p.parseSum()
}

// parseSum parses + and - chains (lowest precedence)
func (p *Parser) parseSum() (Term, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tokenizer.Peek()
		if tok.Type != TokenSymbol || (tok.Value != "+" && tok.Value != "-") {
			return left, nil
		}
		p.tokenizer.Next() // consume operator
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		op := OpAdd
		if tok.Value == "-" {
			op = OpSub
		}
		left = &Binary{Left: left, Op: op, Right: right}
	}
}

// parseProduct parses * and / chains (higher precedence)
func (p *Parser) parseProduct() (Term, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tokenizer.Peek()
		if tok.Type != TokenSymbol || (tok.Value != "*" && tok.Value != "/") {
			return left, nil
		}
		p.tokenizer.Next() // consume operator
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		op := OpMul
		if tok.Value == "/" {
			op = OpDiv
		}
		left = &Binary{Left: left, Op: op, Right: right}
	}
}

// parsePrimary parses a parenthesized term, a constant, or a dice atom
func (p *Parser) parsePrimary() (Term, error) {
	tok := p.tokenizer.Peek()
	switch {
	case tok.Type == TokenSymbol && tok.Value == "(":
		p.tokenizer.Next() // consume (
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &Paren{Term: term}, nil

	case tok.Type == TokenSymbol && (tok.Value == "+" || tok.Value == "-"):
		return p.parseSignedConstant()

	case tok.Type == TokenNumber:
		num := p.tokenizer.Next()
		if next := p.tokenizer.Peek(); letterIs(next, 'd') || letterIs(next, 'w') {
			throws, err := parseU32(num)
			if err != nil {
				return nil, err
			}
			return p.parseRoll(throws)
		}
		value, err := strconv.ParseInt(num.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("constant %q out of range at position %d", num.Value, num.Pos)
		}
		return Constant(value), nil

	case letterIs(tok, 'd') || letterIs(tok, 'w'):
		return p.parseRoll(1)
	}
	return nil, fmt.Errorf("unexpected %s at position %d", describe(tok), tok.Pos)
}

func (p *Parser) parseSignedConstant() (Term, error) {
	sign := p.tokenizer.Next()
	num := p.tokenizer.Peek()
	// the sign must touch its digits, "- 1" is not a constant
	if num.Type != TokenNumber || num.Pos != sign.Pos+1 {
		return nil, fmt.Errorf("expected digits right after %q at position %d", sign.Value, sign.Pos)
	}
	p.tokenizer.Next() // consume digits
	value, err := strconv.ParseInt(sign.Value+num.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("constant %q out of range at position %d", sign.Value+num.Value, sign.Pos)
	}
	return Constant(value), nil
}

// parseRoll parses a dice atom after its throw count: the d or w marker, the
// die kind, then the optional filter and keep suffixes.
func (p *Parser) parseRoll(throws uint32) (Term, error) {
	p.tokenizer.Next() // consume the dice marker
	die, err := p.parseDie()
	if err != nil {
		return nil, err
	}
	roll := &Roll{Dice: Dice{Throws: throws, Die: die}}
	if roll.Filter, err = p.parseFilter(); err != nil {
		return nil, err
	}
	if roll.Keep, err = p.parseKeep(); err != nil {
		return nil, err
	}
	return roll, nil
}

func (p *Parser) parseDie() (Die, error) {
	tok := p.tokenizer.Peek()
	switch {
	case tok.Type == TokenNumber:
		p.tokenizer.Next() // consume faces
		faces, err := parseU32(tok)
		if err != nil {
			return Die{}, err
		}
		if letterIs(p.tokenizer.Peek(), 'x') {
			p.tokenizer.Next() // consume x
			return Die{Kind: KindMultiply, Faces: faces}, nil
		}
		return Die{Kind: KindNumber, Faces: faces}, nil

	case tok.Type == TokenSymbol && tok.Value == "%":
		p.tokenizer.Next() // consume %
		return Die{Kind: KindNumber, Faces: 100}, nil

	case letterIs(tok, 'f'):
		p.tokenizer.Next() // consume f
		return Die{Kind: KindFudge}, nil
	}
	return Die{}, fmt.Errorf("expected die faces, %% or f, got %s at position %d", describe(tok), tok.Pos)
}

// parseFilter parses an optional filter suffix, returning nil without one
func (p *Parser) parseFilter() (*Filter, error) {
	tok := p.tokenizer.Peek()
	if tok.Type != TokenSymbol {
		return nil, nil
	}
	var op FilterOp
	switch tok.Value {
	case ">":
		op = FilterBigger
	case ">=":
		op = FilterBiggerEq
	case "<":
		op = FilterSmaller
	case "<=":
		op = FilterSmallerEq
	case "!=":
		op = FilterNotEq
	default:
		return nil, nil
	}
	p.tokenizer.Next() // consume comparator
	target, err := parseU32(p.tokenizer.Next())
	if err != nil {
		return nil, err
	}
	return &Filter{Op: op, Target: target}, nil
}

// parseKeep parses an optional keep suffix, returning nil without one
func (p *Parser) parseKeep() (*Keep, error) {
	tok := p.tokenizer.Peek()
	var mode KeepMode
	switch {
	case letterIs(tok, 'h') || letterIs(tok, 'k'):
		mode = KeepHigher
	case letterIs(tok, 'l'):
		mode = KeepLower
	default:
		return nil, nil
	}
	p.tokenizer.Next() // consume selector
	count, err := parseU32(p.tokenizer.Next())
	if err != nil {
		return nil, err
	}
	return &Keep{Mode: mode, Count: count}, nil
}

func (p *Parser) expect(symbol string) error {
	tok := p.tokenizer.Next()
	if tok.Type != TokenSymbol || tok.Value != symbol {
		return fmt.Errorf("expected %q, got %s at position %d", symbol, describe(tok), tok.Pos)
	}
	return nil
}

func (p *Parser) expectEOF() error {
	if tok := p.tokenizer.Peek(); tok.Type != TokenEOF {
		return fmt.Errorf("unexpected %s at position %d", describe(tok), tok.Pos)
	}
	return nil
}

// parseU32 parses a count between 1 and 4294967295 inclusive
func parseU32(tok Token) (uint32, error) {
	if tok.Type != TokenNumber {
		return 0, fmt.Errorf("expected a number, got %s at position %d", describe(tok), tok.Pos)
	}
	v, err := strconv.ParseUint(tok.Value, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("expected an integer between 1 and 4294967295, got %q at position %d", tok.Value, tok.Pos)
	}
	return uint32(v), nil
}

func letterIs(tok Token, c byte) bool {
	return tok.Type == TokenLetter && len(tok.Value) == 1 && tok.Value[0]|0x20 == c
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Value)
}
