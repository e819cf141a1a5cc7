package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/treescape/treescape/pkg/landscape"
)

func seedLandscape(t *testing.T) *landscape.Landscape {
	t.Helper()
	l := landscape.New()
	if _, err := l.Add("(A,(B,C),D);"); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestExploreFull(t *testing.T) {
	l := seedLandscape(t)

	if err := exploreFull(context.Background(), l, 1); err != nil {
		t.Fatalf("exploreFull() error: %v", err)
	}

	// Four taxa have exactly three unrooted shapes.
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if len(l.Frontier()) != 2 {
		t.Errorf("Frontier() = %d, want 2", len(l.Frontier()))
	}

	// A second round exhausts the space.
	if err := exploreFull(context.Background(), l, 1); err != nil {
		t.Fatalf("exploreFull() round 2 error: %v", err)
	}
	if len(l.Frontier()) != 0 {
		t.Errorf("Frontier() = %d after full expansion, want 0", len(l.Frontier()))
	}
}

func TestExploreFullCancelled(t *testing.T) {
	l := seedLandscape(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := exploreFull(ctx, l, 1); err == nil {
		t.Fatal("expected context error")
	}
}

func TestExploreRandom(t *testing.T) {
	l := seedLandscape(t)

	if err := exploreRandom(context.Background(), l, 10); err != nil {
		t.Fatalf("exploreRandom() error: %v", err)
	}

	// Ten steps over a three-shape space must terminate early; the walk
	// may revisit but never duplicates.
	if l.Len() > 3 {
		t.Errorf("Len() = %d, want at most 3", l.Len())
	}
	if l.Len() < 2 {
		t.Errorf("Len() = %d, want at least one discovery", l.Len())
	}
}

func TestSaveAndLoadLandscape(t *testing.T) {
	l := seedLandscape(t)
	if err := exploreFull(context.Background(), l, 1); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "test.landscape.json")
	if err := saveLandscape(path, l, nil); err != nil {
		t.Fatalf("saveLandscape() error: %v", err)
	}

	got, doc, err := loadLandscape(path, nil)
	if err != nil {
		t.Fatalf("loadLandscape() error: %v", err)
	}
	if got.Len() != l.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), l.Len())
	}
	if len(got.Edges()) != len(l.Edges()) {
		t.Errorf("Edges() = %d, want %d", len(got.Edges()), len(l.Edges()))
	}
	if doc.ID == "" {
		t.Error("document id should be assigned")
	}

	// Saving over an existing document keeps its identity.
	if err := saveLandscape(path, got, doc); err != nil {
		t.Fatal(err)
	}
	_, doc2, err := loadLandscape(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc2.ID != doc.ID {
		t.Errorf("document id changed on rewrite: %q != %q", doc2.ID, doc.ID)
	}
}

func TestLoadLandscapeMissing(t *testing.T) {
	_, _, err := loadLandscape(filepath.Join(t.TempDir(), "nope.json"), nil)
	if err == nil {
		t.Fatal("expected error for missing landscape")
	}
}

func TestSeedTreeFromSequences(t *testing.T) {
	cfg := &Config{Sequences: map[string]string{
		"A": "G", "B": "G", "C": "A", "D": "A",
	}}
	text, err := seedTree(cfg, "")
	if err != nil {
		t.Fatalf("seedTree() error: %v", err)
	}
	if text != "(((A,B),C),D);" {
		t.Errorf("seedTree() = %q", text)
	}
}

func TestSeedTreeMissing(t *testing.T) {
	if _, err := seedTree(&Config{}, ""); err == nil {
		t.Fatal("expected error without tree or sequences")
	}
}

func TestOpenLandscapeFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.landscape.json")
	opts := &exploreOpts{tree: "(A,(B,C),D);", operator: "nni", name: "fresh", seed: 1}

	l, doc, err := openLandscape(path, &Config{}, nil, opts)
	if err != nil {
		t.Fatalf("openLandscape() error: %v", err)
	}
	if doc != nil {
		t.Error("fresh landscape should have no prior document")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1 seed", l.Len())
	}
	if l.Name() != "fresh" {
		t.Errorf("Name() = %q", l.Name())
	}
	if l.Operator().String() != "nni" {
		t.Errorf("Operator() = %q", l.Operator())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("openLandscape should not create the file")
	}
}
