package newick

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two leaves", "(A,B);"},
		{"nested", "((A,B),C);"},
		{"five taxa", "(((A,B),C),(D,E));"},
		{"branch lengths", "((A:0.1,B:0.2):0.3,C:0.4);"},
		{"interior label", "((A,B)ab:0.5,C);"},
		{"single leaf", "A;"},
		{"multifurcation", "(A,B,C,D);"},
		{"whitespace padding", "  ((A,B),C);\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if n == nil {
				t.Fatalf("Parse(%q) returned nil root", tt.input)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyInput},
		{"spaces only", "   ", ErrEmptyInput},
		{"no terminator", "(A,B)", ErrMissingSemicolon},
		{"unbalanced open", "((A,B);", ErrUnbalancedBracket},
		{"unbalanced close", "(A,B));", ErrUnbalancedBracket},
		{"bad length", "(A:x,B);", ErrBadLength},
		{"negative length", "(A:-1,B);", ErrBadLength},
		{"empty length", "(A:,B);", ErrBadLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseAssignsParents(t *testing.T) {
	root, err := Parse("((A,B),C);")
	if err != nil {
		t.Fatal(err)
	}
	if root.Parent != nil {
		t.Error("root should have no parent")
	}
	for _, b := range root.Children {
		if b.Parent != root {
			t.Error("child branch parent not set to root")
		}
		if b.Child.Parent != b {
			t.Error("child node parent not set to its branch")
		}
	}
}

func TestParseBranchLengths(t *testing.T) {
	root, err := Parse("(A:0.25,B:2);")
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]float64{}
	for _, b := range root.Children {
		got[b.Child.Label] = b.Length
	}
	if got["A"] != 0.25 || got["B"] != 2 {
		t.Errorf("lengths = %v, want A:0.25 B:2", got)
	}
}

func TestRoundTrip(t *testing.T) {
	// parse(str(parse(s))) must equal parse(s) structurally.
	inputs := []string{
		"(((A,B),C),(D,E));",
		"((A:0.1,B:0.2):0.3,(C:0.1,D:0.1));",
		"((E,D),(C,(B,A)));",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		second, err := Parse(Newick(first))
		if err != nil {
			t.Fatalf("reparse of %q: %v", Newick(first), err)
		}
		if Newick(first) != Newick(second) {
			t.Errorf("round trip of %q: %q != %q", in, Newick(first), Newick(second))
		}
	}
}

func TestCanonicalOrdering(t *testing.T) {
	a, err := Parse("((A,B),C);")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("(C,(B,A));")
	if err != nil {
		t.Fatal(err)
	}
	if Structure(a) != Structure(b) {
		t.Errorf("structures differ: %q vs %q", Structure(a), Structure(b))
	}
}
