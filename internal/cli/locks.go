package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/treescape/treescape/pkg/landfile"
	"github.com/treescape/treescape/pkg/landscape"
	"github.com/treescape/treescape/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listLockedStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

// locksOpts holds the command-line flags for the locks command.
type locksOpts struct {
	config    string // config file path
	landscape string // landscape document path
	list      bool   // print locks without the interactive picker
}

// newLocksCmd creates the locks command. It pins bipartitions of the
// landscape's best tree so that exploration only proposes moves preserving
// them. Lock changes are written back into the landscape document.
func newLocksCmd() *cobra.Command {
	var opts locksOpts

	cmd := &cobra.Command{
		Use:   "locks",
		Short: "Pin bipartitions that exploration must preserve",
		Long: `Toggle locks on the bipartitions of the landscape's best tree.

A locked bipartition survives every rearrangement: moves that would break
it are never proposed. Locks are stored in the landscape document.

Examples:
  treescape locks
  treescape locks --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocks(&opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default: treescape.toml)")
	cmd.Flags().StringVarP(&opts.landscape, "landscape", "l", "", "landscape document path")
	cmd.Flags().BoolVar(&opts.list, "list", false, "print current locks without the picker")

	return cmd
}

func runLocks(opts *locksOpts) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	path := firstNonEmpty(opts.landscape, cfg.Landscape, defaultLandscapePath)

	l, doc, err := loadLandscape(path, nil)
	if err != nil {
		return err
	}

	items, err := lockItems(l.Locks(), referenceTopology(l))
	if err != nil {
		return err
	}

	if opts.list {
		printInfo("%d lockable bipartitions", len(items))
		for _, it := range items {
			marker := " "
			if it.locked {
				marker = listLockedStyle.Render("locked")
			}
			printDetail("%-12s %s", it.partition.Short(), marker)
		}
		return nil
	}

	model := newLockListModel(items)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	m, ok := final.(lockListModel)
	if !ok || !m.Saved {
		printInfo("Locks unchanged")
		return nil
	}

	doc.Locks = nil
	for _, it := range m.Items {
		if !it.locked {
			continue
		}
		left, right := it.partition.Sides()
		doc.Locks = append(doc.Locks, landfile.Lock{Left: left, Right: right})
	}
	if err := writeDocument(path, doc); err != nil {
		return err
	}

	printSuccess("Saved %d locks", len(doc.Locks))
	printFile(path)
	return nil
}

// referenceTopology picks the tree whose bipartitions the picker offers:
// the global optimum when scores exist, the first vertex otherwise.
func referenceTopology(l *landscape.Landscape) *landscape.Record {
	if id, ok := l.GlobalOptimum(); ok {
		rec, _ := l.Record(id)
		return rec
	}
	ids := l.IDs()
	if len(ids) == 0 {
		return nil
	}
	rec, _ := l.Record(ids[0])
	return rec
}

// lockItem pairs a bipartition with its lock state.
type lockItem struct {
	partition *topology.Bipartition
	locked    bool
}

// lockItems lists the reference tree's non-trivial bipartitions, marking
// the ones the landscape already locks.
func lockItems(locks []*topology.Bipartition, rec *landscape.Record) ([]lockItem, error) {
	if rec == nil {
		return nil, fmt.Errorf("landscape is empty")
	}
	top, err := topology.FromNewick(rec.Newick)
	if err != nil {
		return nil, err
	}
	var items []lockItem
	for _, bp := range top.Bipartitions() {
		if bp.Trivial() {
			continue
		}
		it := lockItem{partition: bp}
		for _, lk := range locks {
			if bp.Equal(lk) {
				it.locked = true
				break
			}
		}
		items = append(items, it)
	}
	return items, nil
}

// writeDocument rewrites the landscape document at path.
func writeDocument(path string, doc *landfile.Document) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return landfile.Write(out, doc)
}

// =============================================================================
// lockListModel - Interactive lock selection
// =============================================================================

// lockListModel is the bubbletea model for toggling locks.
type lockListModel struct {
	Items  []lockItem
	Cursor int
	Saved  bool
	Height int
	Offset int
}

// newLockListModel creates a new lock list model.
func newLockListModel(items []lockItem) lockListModel {
	return lockListModel{
		Items:  items,
		Height: 15,
	}
}

func (m lockListModel) Init() tea.Cmd {
	return nil
}

func (m lockListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if len(m.Items) > 0 {
				m.Items[m.Cursor].locked = !m.Items[m.Cursor].locked
			}
		case "enter":
			m.Saved = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m lockListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Lock Bipartitions"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  ⏎ save  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	for i := m.Offset; i < end; i++ {
		it := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		box := "[ ]"
		if it.locked {
			box = listLockedStyle.Render("[x]")
		}

		style := listNormalStyle
		if i == m.Cursor {
			style = listSelectedStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, style.Render(it.partition.Short()))
	}

	if len(m.Items) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d", m.Cursor+1, len(m.Items))))
	}

	return b.String()
}
