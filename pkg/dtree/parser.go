package dtree

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/spf13/afero"
)

// Parser reads tree artifacts.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new tree artifact parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(TreeLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("dtree: failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses and compiles an artifact read from r.
func (p *Parser) Parse(name string, r io.Reader) (*Tree, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("dtree: parse error: %w", err)
	}
	return compile(file)
}

// ParseString parses and compiles an artifact held in a string.
func (p *Parser) ParseString(name, input string) (*Tree, error) {
	file, err := p.parser.ParseString(name, input)
	if err != nil {
		return nil, fmt.Errorf("dtree: parse error: %w", err)
	}
	return compile(file)
}

// ParseFile parses and compiles an artifact stored in fsys.
func (p *Parser) ParseFile(fsys afero.Fs, name string) (*Tree, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("dtree: failed to open file: %w", err)
	}
	return p.Parse(name, bytes.NewReader(data))
}
