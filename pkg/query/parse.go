package query

import (
	"strconv"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// Parse parses a textual path query into a tree.
//
// Grammar (whitespace is ignored):
//
//	path := term ('/' term)*
//	term := '(' path ')' | label ('+' | '-')
//	label := [0-9]+
//
// Concatenation is left-associative: "0+/1+/2+" parses as ((0+/1+)/2+).
// Syntax errors are INVALID_QUERY errors naming the byte offset.
func Parse(s string) (*Node, error) {
	if err := errors.ValidateQueryText(s); err != nil {
		return nil, err
	}
	p := &parser{src: s}
	n, err := p.path()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return n, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// fixed queries known to be valid.
func MustParse(s string) *Node {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	src string
	pos int
}

func (p *parser) path() (*Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = Concat(left, right)
	}
}

func (p *parser) term() (*Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of query")
	}

	if p.src[p.pos] == '(' {
		p.pos++
		n, err := p.path()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return n, nil
	}

	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, p.errorf("expected label, got %q", p.src[p.pos])
	}
	label, err := strconv.ParseUint(p.src[start:p.pos], 10, 32)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidQuery, err, "label at offset %d", start)
	}

	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("missing direction after label %d", label)
	}
	var dir Direction
	switch p.src[p.pos] {
	case '+':
		dir = Forward
	case '-':
		dir = Inverse
	default:
		return nil, p.errorf("expected '+' or '-' after label %d, got %q", label, p.src[p.pos])
	}
	p.pos++
	return Leaf(Step{Label: uint32(label), Dir: dir}), nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	args = append([]any{p.pos}, args...)
	return errors.New(errors.ErrCodeInvalidQuery, "offset %d: "+format, args...)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
