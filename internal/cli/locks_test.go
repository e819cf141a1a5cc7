package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treescape/treescape/pkg/landscape"
	"github.com/treescape/treescape/pkg/topology"
)

func TestLockItems(t *testing.T) {
	rec := &landscape.Record{Newick: "((((C,D),E),B),A);"}

	items, err := lockItems(nil, rec)
	if err != nil {
		t.Fatalf("lockItems() error: %v", err)
	}

	// Five taxa yield two non-trivial splits.
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.locked {
			t.Errorf("%s should start unlocked", it.partition.Short())
		}
	}
}

func TestLockItemsMarksExisting(t *testing.T) {
	rec := &landscape.Record{Newick: "((((C,D),E),B),A);"}
	lock := topology.FromSides([]string{"C", "D"}, []string{"A", "B", "E"})

	items, err := lockItems([]*topology.Bipartition{lock}, rec)
	if err != nil {
		t.Fatalf("lockItems() error: %v", err)
	}

	locked := 0
	for _, it := range items {
		if it.locked {
			locked++
			if !it.partition.Equal(lock) {
				t.Errorf("wrong partition marked: %s", it.partition.Short())
			}
		}
	}
	if locked != 1 {
		t.Errorf("locked = %d, want 1", locked)
	}
}

func TestLockItemsEmpty(t *testing.T) {
	if _, err := lockItems(nil, nil); err == nil {
		t.Fatal("expected error for empty landscape")
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLockListModelToggle(t *testing.T) {
	rec := &landscape.Record{Newick: "((((C,D),E),B),A);"}
	items, err := lockItems(nil, rec)
	if err != nil {
		t.Fatal(err)
	}

	m := newLockListModel(items)

	// Space toggles the item under the cursor.
	next, _ := m.Update(keyMsg(" "))
	m = next.(lockListModel)
	if !m.Items[0].locked {
		t.Error("space should lock the first item")
	}

	// Move down and toggle the second.
	next, _ = m.Update(keyMsg("j"))
	m = next.(lockListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	next, _ = m.Update(keyMsg(" "))
	m = next.(lockListModel)
	if !m.Items[1].locked {
		t.Error("space should lock the second item")
	}

	// Toggle off again.
	next, _ = m.Update(keyMsg(" "))
	m = next.(lockListModel)
	if m.Items[1].locked {
		t.Error("space should unlock on second press")
	}

	// Enter saves.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(lockListModel)
	if !m.Saved {
		t.Error("enter should mark the model saved")
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestLockListModelQuitWithoutSave(t *testing.T) {
	m := newLockListModel(nil)
	next, cmd := m.Update(keyMsg("q"))
	m = next.(lockListModel)
	if m.Saved {
		t.Error("q should not save")
	}
	if cmd == nil {
		t.Error("q should quit")
	}
}
