// Package query implements the row-filter predicate language used by the
// query operation. An expression combines column comparisons with boolean
// operators and is evaluated against one row at a time, e.g.
//
//	age > 30 and department == 'Sales'
//	B == '1' or not (A < 'y')
//
// Comparisons are numeric when both operands parse as numbers, otherwise
// they fall back to string ordering.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Predicate is a compiled boolean expression over a row of named columns.
type Predicate struct {
	root node
	src  string
}

// Compile parses an expression. A parse failure reports the offending
// position in the source.
func Compile(expr string) (*Predicate, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, src: expr}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	return &Predicate{root: root, src: expr}, nil
}

// Source returns the original expression text.
func (p *Predicate) Source() string { return p.src }

// Eval reports whether the row satisfies the predicate. Referencing a column
// the row does not have is an error.
func (p *Predicate) Eval(row map[string]string) (bool, error) {
	return p.root.eval(row)
}

type node interface {
	eval(row map[string]string) (bool, error)
}

type binaryNode struct {
	op          string // "and" or "or"
	left, right node
}

func (n *binaryNode) eval(row map[string]string) (bool, error) {
	left, err := n.left.eval(row)
	if err != nil {
		return false, err
	}
	if n.op == "and" && !left {
		return false, nil
	}
	if n.op == "or" && left {
		return true, nil
	}
	return n.right.eval(row)
}

type notNode struct {
	inner node
}

func (n *notNode) eval(row map[string]string) (bool, error) {
	v, err := n.inner.eval(row)
	if err != nil {
		return false, err
	}
	return !v, nil
}

type compareNode struct {
	op          string
	left, right operand
}

func (n *compareNode) eval(row map[string]string) (bool, error) {
	lv, err := n.left.value(row)
	if err != nil {
		return false, err
	}
	rv, err := n.right.value(row)
	if err != nil {
		return false, err
	}

	if lf, lok := parseNumber(lv); lok {
		if rf, rok := parseNumber(rv); rok {
			return compareFloats(n.op, lf, rf), nil
		}
	}
	return compareStrings(n.op, lv, rv), nil
}

func compareFloats(op string, a, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

type operand struct {
	column  string
	literal string
	isLit   bool
}

func (o operand) value(row map[string]string) (string, error) {
	if o.isLit {
		return o.literal, nil
	}
	v, ok := row[o.column]
	if !ok {
		return "", fmt.Errorf("unknown column %q", o.column)
	}
	return v, nil
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenOp     // == != < <= > >=
	tokenAnd    // and, &&
	tokenOr     // or, ||
	tokenNot    // not, !
	tokenLParen // (
	tokenRParen // )
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string literal at position %d", i)
			}
			tokens = append(tokens, token{tokenString, src[i+1 : i+1+end], i})
			i += end + 2
		case c == '`':
			end := strings.IndexByte(src[i+1:], '`')
			if end < 0 {
				return nil, fmt.Errorf("unterminated column reference at position %d", i)
			}
			tokens = append(tokens, token{tokenIdent, src[i+1 : i+1+end], i})
			i += end + 2
		case c == '&' || c == '|':
			if i+1 >= len(src) || src[i+1] != c {
				return nil, fmt.Errorf("unexpected %q at position %d", string(c), i)
			}
			kind := tokenAnd
			if c == '|' {
				kind = tokenOr
			}
			tokens = append(tokens, token{kind, src[i : i+2], i})
			i += 2
		case c == '=' || c == '!' || c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				tokens = append(tokens, token{tokenOp, src[i : i+2], i})
				i += 2
				break
			}
			switch c {
			case '=':
				return nil, fmt.Errorf("single '=' at position %d (use '==')", i)
			case '!':
				tokens = append(tokens, token{tokenNot, "!", i})
				i++
			default:
				tokens = append(tokens, token{tokenOp, string(c), i})
				i++
			}
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && (isDigit(src[j]) || src[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokenNumber, src[i:j], i})
			i = j
		case isIdentStart(rune(c)):
			j := i + 1
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "and":
				tokens = append(tokens, token{tokenAnd, word, i})
			case "or":
				tokens = append(tokens, token{tokenOr, word, i})
			case "not":
				tokens = append(tokens, token{tokenNot, word, i})
			default:
				tokens = append(tokens, token{tokenIdent, word, i})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", string(c), i)
		}
	}
	return tokens, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type parser struct {
	tokens []token
	src    string
	idx    int
}

func (p *parser) atEnd() bool { return p.idx >= len(p.tokens) }

func (p *parser) peek() token {
	if p.atEnd() {
		return token{pos: len(p.src)}
	}
	return p.tokens[p.idx]
}

func (p *parser) next() token {
	t := p.peek()
	p.idx++
	return t
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() && p.peek().kind == tokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() && p.peek().kind == tokenAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if !p.atEnd() && p.peek().kind == tokenNot {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	if !p.atEnd() && p.peek().kind == tokenLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.atEnd() || p.peek().kind != tokenRParen {
			return nil, fmt.Errorf("missing ')' at position %d", p.peek().pos)
		}
		p.next()
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.atEnd() || p.peek().kind != tokenOp {
		return nil, fmt.Errorf("expected comparison operator at position %d", p.peek().pos)
	}
	op := p.next().text
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &compareNode{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (operand, error) {
	if p.atEnd() {
		return operand{}, fmt.Errorf("expression ends where a value was expected")
	}
	t := p.next()
	switch t.kind {
	case tokenIdent:
		return operand{column: t.text}, nil
	case tokenString, tokenNumber:
		return operand{literal: t.text, isLit: true}, nil
	default:
		return operand{}, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
