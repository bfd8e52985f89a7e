package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp    // + - * / // % ^
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an expression into tokens. Any character outside the
// grammar fails immediately - this is the outer layer of the deny-by-default
// boundary.
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
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if strings.Count(text, ".") > 1 {
				return nil, fmt.Errorf("%w: malformed number %q", ErrEvaluation, text)
			}
			tokens = append(tokens, token{tokNumber, text})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			tokens = append(tokens, token{tokIdent, string(runes[start:i])})
		case r == '/':
			if i+1 < len(runes) && runes[i+1] == '/' {
				tokens = append(tokens, token{tokOp, "//"})
				i += 2
			} else {
				tokens = append(tokens, token{tokOp, "/"})
				i++
			}
		case r == '+' || r == '-' || r == '*' || r == '%' || r == '^':
			tokens = append(tokens, token{tokOp, string(r)})
			i++
		case r == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case r == ',':
			tokens = append(tokens, token{tokComma, ","})
			i++
		default:
			return nil, fmt.Errorf("%w: invalid character %q", ErrEvaluation, string(r))
		}
	}

	tokens = append(tokens, token{tokEOF, ""})
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

// Parse builds the restricted AST for an expression. Identifiers are checked
// against the allow-lists at parse time, so an unknown name never reaches
// evaluation.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrEvaluation)
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q", ErrEvaluation, p.peek().text)
	}
	return node, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseAddSub() (Node, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMulDiv() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp {
		op := p.peek().text
		if op != "*" && op != "/" && op != "//" && op != "%" {
			break
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokOp && p.peek().text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Operand: operand}, nil
	}
	if p.peek().kind == tokOp && p.peek().text == "+" {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	// Right-associative; the exponent goes through parseUnary so 2^-3 works
	if p.peek().kind == tokOp && p.peek().text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Binary{Op: "^", Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number %q", ErrEvaluation, t.text)
		}
		return Number{Value: value}, nil

	case tokIdent:
		name := strings.ToLower(t.text)
		if p.peek().kind == tokLParen {
			if _, ok := functions[name]; !ok {
				return nil, fmt.Errorf("%w: unknown function %q", ErrEvaluation, t.text)
			}
			p.next() // consume (
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Name: name, Args: args}, nil
		}
		if _, ok := constants[name]; !ok {
			return nil, fmt.Errorf("%w: unknown name %q", ErrEvaluation, t.text)
		}
		return Constant{Name: name}, nil

	case tokLParen:
		node, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrEvaluation)
		}
		return node, nil

	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrEvaluation, t.text)
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	if p.peek().kind == tokRParen {
		return nil, fmt.Errorf("%w: function call with no arguments", ErrEvaluation)
	}

	var args []Node
	for {
		arg, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch p.next().kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrEvaluation)
		}
	}
}
