package netlist

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

// File is a parsed network description.
type File struct {
	Decls []*Decl `parser:"( @@ | Newline )*"`
}

// Decl is a single module declaration.
// Example: &inv -> a, b
type Decl struct {
	Pos lexer.Position

	Prefix  string   `parser:"@Prefix?"`
	Name    string   `parser:"@Ident Arrow"`
	Outputs []string `parser:"( @Ident ( Comma @Ident )* )?"`
}

// Kind resolves the declaration prefix.
func (d *Decl) Kind() (module.Kind, error) {
	return module.KindFromPrefix(d.Prefix)
}

// Declarations converts the parse tree into builder input. It rejects two
// declarations sharing a line and any untyped module other than the broadcaster.
func (f *File) Declarations() ([]network.Declaration, error) {
	out := make([]network.Declaration, 0, len(f.Decls))
	lastLine := 0
	for _, d := range f.Decls {
		if d.Pos.Line == lastLine {
			return nil, fmt.Errorf("netlist: %s: %w: %s must start a new line", d.Pos, ErrMalformed, d.Name)
		}
		lastLine = d.Pos.Line

		kind, err := d.Kind()
		if err != nil {
			return nil, fmt.Errorf("netlist: %s: %w", d.Pos, err)
		}
		if kind == module.Broadcast && d.Name != network.Entry {
			return nil, fmt.Errorf("netlist: %s: %w: %s needs a %% or & prefix", d.Pos, network.ErrUnknownKind, d.Name)
		}

		out = append(out, network.Declaration{
			Name:    d.Name,
			Kind:    kind,
			Outputs: append([]string(nil), d.Outputs...),
			Line:    d.Pos.Line,
		})
	}
	return out, nil
}
