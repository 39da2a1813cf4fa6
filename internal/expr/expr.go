// Package expr evaluates arithmetic and boolean expressions over a fixed
// variable namespace. Expressions come from schema configuration data, so
// evaluation is restricted to pure arithmetic: no function calls, no
// assignment, no side effects of any kind.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrSyntax          = errors.New("syntax error")
)

// Eval evaluates an arithmetic expression and returns its numeric value.
// Comparison and logical operators are allowed and yield 1 or 0.
func Eval(expression string, vars map[string]float64) (float64, error) {
	p, err := newParser(expression, vars)
	if err != nil {
		return 0, err
	}
	v, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	if !p.atEnd() {
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.peek().text)
	}
	return v, nil
}

// EvalBool evaluates a boolean condition: any non-zero result is true.
func EvalBool(expression string, vars map[string]float64) (bool, error) {
	v, err := Eval(expression, vars)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Vars returns the identifiers an expression references, in order of first
// appearance. Used for provenance checks; a malformed expression simply
// yields the identifiers found before the bad token.
func Vars(expression string) []string {
	tokens, _ := tokenize(expression)
	seen := make(map[string]bool)
	var out []string
	for _, t := range tokens {
		if t.kind == tokenIdent && !seen[t.text] {
			seen[t.text] = true
			out = append(out, t.text)
		}
	}
	return out
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOp
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return tokens, fmt.Errorf("%w: bad number %q", ErrSyntax, text)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, num: num})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[i:j])})
			i = j
		case r == '&' || r == '|' || r == '=':
			if i+1 >= len(runes) || runes[i+1] != r {
				return tokens, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(r))
			}
			tokens = append(tokens, token{kind: tokenOp, text: string(r) + string(r)})
			i += 2
		case r == '<' || r == '>' || r == '!':
			text := string(r)
			if i+1 < len(runes) && runes[i+1] == '=' {
				text += "="
				i++
			} else if r == '!' {
				return tokens, fmt.Errorf("%w: unexpected %q", ErrSyntax, "!")
			}
			tokens = append(tokens, token{kind: tokenOp, text: text})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '(' || r == ')':
			tokens = append(tokens, token{kind: tokenOp, text: string(r)})
			i++
		default:
			return tokens, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(r))
		}
	}
	tokens = append(tokens, token{kind: tokenEOF})
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	vars   map[string]float64
}

func newParser(input string, vars map[string]float64) (*parser, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens, vars: vars}, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) atEnd() bool { return p.peek().kind == tokenEOF }

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokenOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (float64, error) {
	left, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		left = boolToFloat(left != 0 || right != 0)
	}
}

func (p *parser) parseAnd() (float64, error) {
	left, err := p.parseComparison()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return 0, err
		}
		left = boolToFloat(left != 0 && right != 0)
	}
}

func (p *parser) parseComparison() (float64, error) {
	left, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	op, ok := p.acceptOp("<=", ">=", "==", "!=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	switch op {
	case "<":
		return boolToFloat(left < right), nil
	case ">":
		return boolToFloat(left > right), nil
	case "<=":
		return boolToFloat(left <= right), nil
	case ">=":
		return boolToFloat(left >= right), nil
	case "==":
		return boolToFloat(left == right), nil
	default:
		return boolToFloat(left != right), nil
	}
}

func (p *parser) parseSum() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.acceptOp("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			left *= right
		} else {
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	if _, ok := p.acceptOp("-"); ok {
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	t := p.peek()
	switch t.kind {
	case tokenNumber:
		p.pos++
		return t.num, nil
	case tokenIdent:
		p.pos++
		v, ok := p.vars[t.text]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, t.text)
		}
		return v, nil
	case tokenOp:
		if t.text == "(" {
			p.pos++
			v, err := p.parseOr()
			if err != nil {
				return 0, err
			}
			if _, ok := p.acceptOp(")"); !ok {
				return 0, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, t.text)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
