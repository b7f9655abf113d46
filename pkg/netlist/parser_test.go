package netlist

import (
	"bytes"
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

func TestParseDeclarations(t *testing.T) {
	input := `broadcaster -> a, b, c
%a -> b
&inv -> a
`

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	f, err := parser.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if len(f.Decls) != 3 {
		t.Fatalf("Expected 3 declarations, got %d", len(f.Decls))
	}

	first := f.Decls[0]
	if first.Prefix != "" || first.Name != "broadcaster" {
		t.Errorf("Expected untyped broadcaster, got %q%q", first.Prefix, first.Name)
	}
	if len(first.Outputs) != 3 || first.Outputs[2] != "c" {
		t.Errorf("Unexpected outputs %v", first.Outputs)
	}

	if f.Decls[1].Prefix != "%" || f.Decls[2].Prefix != "&" {
		t.Errorf("Prefixes not captured: %q %q", f.Decls[1].Prefix, f.Decls[2].Prefix)
	}
	if f.Decls[2].Pos.Line != 3 {
		t.Errorf("Expected &inv on line 3, got %d", f.Decls[2].Pos.Line)
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	input := `
# leading comment

broadcaster -> a   # trailing comment
	%a ->
`

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	f, err := parser.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	decls, err := f.Declarations()
	if err != nil {
		t.Fatalf("Declarations: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Line != 4 {
		t.Errorf("Expected broadcaster on line 4, got %d", decls[0].Line)
	}
	if decls[1].Kind != module.FlipFlop || len(decls[1].Outputs) != 0 {
		t.Errorf("Expected flip-flop without outputs, got %+v", decls[1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"missing arrow", "broadcaster a, b\n", ErrMalformed},
		{"trailing comma", "broadcaster -> a,\n", ErrMalformed},
		{"unknown prefix", "!a -> b\n", ErrMalformed},
		{"two per line", "broadcaster -> a %a -> b\n", ErrMalformed},
		{"untyped module", "broadcaster -> a\na -> b\n", network.ErrUnknownKind},
		{"missing broadcaster", "%a -> b\n", network.ErrMissingEntry},
		{"duplicate", "broadcaster -> a\n%a -> b\n&a -> b\n", network.ErrDuplicateModule},
		{"empty input", "", network.ErrMissingEntry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadString(tc.input)
			if err == nil {
				t.Fatalf("Expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadTestdata(t *testing.T) {
	files := map[string]int{
		"../../testdata/chain.txt":    5,
		"../../testdata/inverter.txt": 5,
		"../../testdata/counters.txt": 11,
	}

	for path, modules := range files {
		net, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if got := len(net.Names()); got != modules {
			t.Errorf("%s: expected %d modules, got %d", path, modules, got)
		}
	}

	if _, err := Load("../../testdata/does-not-exist.txt"); err == nil {
		t.Fatalf("Expected error for missing file")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	input := "broadcaster -> a, b\n%a -> con\n&con -> output, b\n%b ->\n"

	net, err := LoadString(input)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	var buf bytes.Buffer
	if err := Format(&buf, net); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != input {
		t.Fatalf("Format mismatch:\n got: %q\nwant: %q", buf.String(), input)
	}

	again, err := LoadString(buf.String())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.EdgeCount() != net.EdgeCount() {
		t.Fatalf("edge count changed: %d != %d", again.EdgeCount(), net.EdgeCount())
	}
}
