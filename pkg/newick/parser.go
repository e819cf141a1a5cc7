package newick

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyInput is returned by [Parse] for an empty or all-space string.
	ErrEmptyInput = errors.New("empty tree description")

	// ErrMissingSemicolon is returned by [Parse] when the description does
	// not end with the ';' terminator.
	ErrMissingSemicolon = errors.New("tree description does not end with ';'")

	// ErrUnbalancedBracket is returned by [Parse] when parentheses do not
	// balance or input remains after the outermost subtree.
	ErrUnbalancedBracket = errors.New("unbalanced brackets")

	// ErrBadLength is returned by [Parse] when the text after a ':' cannot
	// be parsed as a non-negative real number.
	ErrBadLength = errors.New("unparsable branch length")
)

// Parse converts a tree-description string into a Node tree with parent
// back-references assigned. Every returned error wraps one of the sentinel
// errors above; a failed parse is always fatal for that call.
func Parse(s string) (*Node, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, fmt.Errorf("parse: %w", ErrEmptyInput)
	}
	if !strings.HasSuffix(t, ";") {
		return nil, fmt.Errorf("parse: %w", ErrMissingSemicolon)
	}
	p := &parser{in: t[:len(t)-1]}
	root, _, err := p.subtree()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.in) {
		return nil, fmt.Errorf("parse: trailing input at offset %d: %w", p.pos, ErrUnbalancedBracket)
	}
	assignParents(root, nil)
	return root, nil
}

type parser struct {
	in  string
	pos int
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.in) {
		return 0, false
	}
	return p.in[p.pos], true
}

// subtree parses one subtree and its optional trailing ':'-length.
func (p *parser) subtree() (*Node, float64, error) {
	c, ok := p.peek()
	if !ok {
		return nil, 0, fmt.Errorf("parse: unexpected end of input: %w", ErrUnbalancedBracket)
	}
	if c != '(' {
		return p.leaf()
	}

	p.pos++ // consume '('
	n := &Node{}
	for {
		child, length, err := p.subtree()
		if err != nil {
			return nil, 0, err
		}
		n.Children = append(n.Children, &Branch{Child: child, Length: length})

		c, ok := p.peek()
		if !ok {
			return nil, 0, fmt.Errorf("parse: missing ')' at offset %d: %w", p.pos, ErrUnbalancedBracket)
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ')' {
			p.pos++
			break
		}
		return nil, 0, fmt.Errorf("parse: unexpected %q at offset %d: %w", c, p.pos, ErrUnbalancedBracket)
	}

	// Optional interior label and/or branch length on the closing bracket.
	n.Label = p.name()
	length, err := p.length()
	if err != nil {
		return nil, 0, err
	}
	return n, length, nil
}

func (p *parser) leaf() (*Node, float64, error) {
	name := p.name()
	length, err := p.length()
	if err != nil {
		return nil, 0, err
	}
	return &Node{Label: name}, length, nil
}

// name consumes characters up to the next structural symbol.
func (p *parser) name() string {
	start := p.pos
	for p.pos < len(p.in) {
		switch p.in[p.pos] {
		case ',', ')', '(', ':':
			return p.in[start:p.pos]
		}
		p.pos++
	}
	return p.in[start:]
}

// length consumes an optional ':'-prefixed non-negative branch length.
func (p *parser) length() (float64, error) {
	c, ok := p.peek()
	if !ok || c != ':' {
		return 0, nil
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.in[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("parse: %q at offset %d: %w", p.in[start:p.pos], start, ErrBadLength)
	}
	return v, nil
}
