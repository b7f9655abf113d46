package netlist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

// ErrMalformed is returned for input the grammar rejects.
var ErrMalformed = errors.New("malformed declaration")

// Parser parses network descriptions.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(NetlistLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("netlist: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a network description from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w: %w", ErrMalformed, err)
	}
	return f, nil
}

// ParseString parses a network description from a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w: %w", ErrMalformed, err)
	}
	return f, nil
}

// ParseFile parses a network description from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("netlist: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Load parses and builds the network stored at path.
func Load(path string) (*network.Network, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	f, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return build(f)
}

// LoadString parses and builds a network from its text form.
func LoadString(input string) (*network.Network, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	f, err := p.ParseString(input)
	if err != nil {
		return nil, err
	}
	return build(f)
}

func build(f *File) (*network.Network, error) {
	decls, err := f.Declarations()
	if err != nil {
		return nil, err
	}
	return network.Build(decls)
}

// Format writes net in canonical text form, one declaration per line in the
// original order.
func Format(w io.Writer, net *network.Network) error {
	for _, d := range net.Declarations() {
		line := d.Kind.Prefix() + d.Name + " ->"
		if len(d.Outputs) > 0 {
			line += " " + strings.Join(d.Outputs, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("netlist: format: %w", err)
		}
	}
	return nil
}
