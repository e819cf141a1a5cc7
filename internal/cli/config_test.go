package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treescape.toml")
	content := `
operator = "nni"
weight = 2.5
landscape = "primates.landscape.json"

[sequences]
human = "ACGT"
chimp = "ACGA"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Operator != "nni" {
		t.Errorf("Operator = %q, want %q", cfg.Operator, "nni")
	}
	if cfg.Weight != 2.5 {
		t.Errorf("Weight = %v, want 2.5", cfg.Weight)
	}
	if cfg.Landscape != "primates.landscape.json" {
		t.Errorf("Landscape = %q", cfg.Landscape)
	}
	if len(cfg.Sequences) != 2 || cfg.Sequences["human"] != "ACGT" {
		t.Errorf("Sequences = %v", cfg.Sequences)
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	// A missing default config is not an error.
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg.Operator != "" || len(cfg.Sequences) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("operator = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestNewScorerNoSequences(t *testing.T) {
	scorer, closer, err := newScorer(&Config{}, true)
	if err != nil {
		t.Fatalf("newScorer() error: %v", err)
	}
	if scorer != nil || closer != nil {
		t.Error("expected nil scorer without sequences")
	}
}

func TestNewScorerSequences(t *testing.T) {
	cfg := &Config{Sequences: map[string]string{
		"A": "GG", "B": "GA", "C": "AA", "D": "AA",
	}}
	scorer, closer, err := newScorer(cfg, true)
	if err != nil {
		t.Fatalf("newScorer() error: %v", err)
	}
	if scorer == nil {
		t.Fatal("expected scorer with sequences")
	}
	defer closer()

	score, err := scorer.ScoreCheap("(((C,D),B),A);")
	if err != nil {
		t.Fatalf("ScoreCheap() error: %v", err)
	}
	if score.Parsimony == nil {
		t.Error("expected parsimony score")
	}
}

func TestReadTreeLiteral(t *testing.T) {
	text, err := readTree("(A,(B,C),D);")
	if err != nil {
		t.Fatalf("readTree() error: %v", err)
	}
	if text != "(A,(B,C),D);" {
		t.Errorf("readTree() = %q", text)
	}
}

func TestReadTreeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.nwk")
	if err := os.WriteFile(path, []byte("(A,B,C);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := readTree(path)
	if err != nil {
		t.Fatalf("readTree() error: %v", err)
	}
	if text != "(A,B,C);" {
		t.Errorf("readTree() = %q, want trimmed contents", text)
	}
}

func TestReadTreeBadArg(t *testing.T) {
	_, err := readTree("no-such-file.nwk")
	if err == nil {
		t.Fatal("expected error for missing file that is not a Newick string")
	}
	if !strings.Contains(err.Error(), "no-such-file.nwk") {
		t.Errorf("error should name the argument: %v", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "a", "b"); got != "a" {
		t.Errorf("firstNonEmpty() = %q, want %q", got, "a")
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
