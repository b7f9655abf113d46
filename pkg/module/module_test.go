package module

import "testing"

func TestFlipFlopTransitions(t *testing.T) {
	type step struct {
		in     Level
		out    Level
		emits  bool
		wantOn bool
	}

	cases := []step{
		{High, Low, false, false},
		{Low, High, true, true},
		{High, Low, false, true},
		{High, Low, false, true},
		{Low, Low, true, false},
		{Low, High, true, true},
	}

	ff := NewFlipFlop("a", []string{"b"})
	for i, tc := range cases {
		out, ok := ff.Receive("x", tc.in)
		if ok != tc.emits {
			t.Fatalf("step %d: emits = %v, want %v", i, ok, tc.emits)
		}
		if ok && out != tc.out {
			t.Fatalf("step %d: out = %s, want %s", i, out, tc.out)
		}
		if ff.On() != tc.wantOn {
			t.Fatalf("step %d: on = %v, want %v", i, ff.On(), tc.wantOn)
		}
	}
}

func TestConjunctionMemory(t *testing.T) {
	c := NewConjunction("c", []string{"out"}, []string{"b", "a"})

	if got := c.Inputs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("inputs = %v, want [a b]", got)
	}

	steps := []struct {
		from string
		in   Level
		out  Level
	}{
		{"a", High, High},
		{"b", High, Low},
		{"b", Low, High},
		{"b", High, Low},
		{"a", High, Low},
		{"a", Low, High},
	}
	for i, s := range steps {
		out, ok := c.Receive(s.from, s.in)
		if !ok {
			t.Fatalf("step %d: conjunction stayed silent", i)
		}
		if out != s.out {
			t.Fatalf("step %d: out = %s, want %s", i, out, s.out)
		}
		if mem, _ := c.Memory(s.from); mem != s.in {
			t.Fatalf("step %d: memory[%s] = %s, want %s", i, s.from, mem, s.in)
		}
	}
}

func TestSingleInputConjunctionInverts(t *testing.T) {
	c := NewConjunction("inv", nil, []string{"a"})
	if out, _ := c.Receive("a", High); out != Low {
		t.Fatalf("high in: out = %s, want low", out)
	}
	if out, _ := c.Receive("a", Low); out != High {
		t.Fatalf("low in: out = %s, want high", out)
	}
}

func TestConjunctionUnknownSenderPanics(t *testing.T) {
	c := NewConjunction("c", nil, []string{"a"})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown sender")
		}
	}()
	c.Receive("z", Low)
}

func TestBroadcastRepeats(t *testing.T) {
	b := NewBroadcast("broadcaster", []string{"a", "b"})
	for _, l := range []Level{Low, High} {
		out, ok := b.Receive("button", l)
		if !ok || out != l {
			t.Fatalf("broadcast(%s) = %s, %v", l, out, ok)
		}
	}
}

func TestCloneAndReset(t *testing.T) {
	c := NewConjunction("c", []string{"x"}, []string{"a", "b"})
	c.Receive("a", High)

	clone := c.Clone()
	clone.Receive("b", High)

	if mem, _ := c.Memory("b"); mem != Low {
		t.Fatalf("original memory changed through clone")
	}
	if mem, _ := clone.Memory("b"); mem != High {
		t.Fatalf("clone memory = %s, want high", mem)
	}

	clone.Reset()
	if out, _ := clone.Receive("a", High); out != High {
		t.Fatalf("after reset: out = %s, want high", out)
	}

	outs := c.Outputs()
	outs[0] = "mutated"
	if c.Outputs()[0] != "x" {
		t.Fatalf("Outputs returned shared slice")
	}
}

func TestAppendStateDistinguishes(t *testing.T) {
	ff := NewFlipFlop("f", nil)
	before := string(ff.AppendState(nil))
	ff.Receive("x", Low)
	after := string(ff.AppendState(nil))
	if before == after {
		t.Fatalf("flip-flop state encoding did not change")
	}

	b := NewBroadcast("broadcaster", nil)
	if len(b.AppendState(nil)) != 0 {
		t.Fatalf("broadcast has no state")
	}
}

func TestKindPrefixes(t *testing.T) {
	cases := []struct {
		prefix string
		kind   Kind
	}{
		{"", Broadcast},
		{"%", FlipFlop},
		{"&", Conjunction},
	}
	for _, tc := range cases {
		k, err := KindFromPrefix(tc.prefix)
		if err != nil {
			t.Fatalf("KindFromPrefix(%q): %v", tc.prefix, err)
		}
		if k != tc.kind {
			t.Fatalf("KindFromPrefix(%q) = %s, want %s", tc.prefix, k, tc.kind)
		}
		if k.Prefix() != tc.prefix {
			t.Fatalf("%s.Prefix() = %q", k, k.Prefix())
		}
	}
	if _, err := KindFromPrefix("!"); err == nil {
		t.Fatalf("expected error for unknown prefix")
	}
	if Kind(9).Valid() {
		t.Fatalf("Kind(9) should not be valid")
	}
	if Kind(9).String() != "Kind(9)" {
		t.Fatalf("unexpected String for invalid kind: %s", Kind(9))
	}
}
