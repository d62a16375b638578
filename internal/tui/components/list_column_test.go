package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/printandread/shelf/internal/domain"
)

func subjects(names ...string) []domain.ListItem {
	items := make([]domain.ListItem, len(names))
	for i, n := range names {
		items[i] = domain.Subject{ID: int64(i + 1), Name: n, Code: "C" + n[:1]}
	}
	return items
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestListColumnNavigation(t *testing.T) {
	col := NewListColumn(LevelSubjects, "")
	col.SetFocused(true)
	col.SetSize(40, 12)
	col.SetItems(subjects("Algorithms", "Databases", "Networks"))

	col.Update(keyMsg("j"))
	col.Update(keyMsg("j"))
	col.Update(keyMsg("j")) // clamps at the end
	if got := col.SelectedItem().GetTitle(); got != "Networks" {
		t.Fatalf("expected Networks, got %s", got)
	}
	col.Update(keyMsg("g"))
	if col.SelectedIndex() != 0 {
		t.Fatalf("expected cursor at top, got %d", col.SelectedIndex())
	}
}

func TestListColumnIgnoresKeysWhenUnfocused(t *testing.T) {
	col := NewListColumn(LevelSubjects, "")
	col.SetItems(subjects("Algorithms", "Databases"))
	col.Update(keyMsg("j"))
	if col.SelectedIndex() != 0 {
		t.Fatal("unfocused column must not move")
	}
}

func TestListColumnFilter(t *testing.T) {
	col := NewListColumn(LevelSubjects, "")
	col.SetFocused(true)
	col.SetSize(40, 12)
	col.SetItems(subjects("Algorithms", "Databases", "Distributed Systems"))

	col.ToggleFilter()
	for _, r := range "dis" {
		col.Update(keyMsg(string(r)))
	}
	if col.ItemCount() != 1 || col.SelectedItem().GetTitle() != "Distributed Systems" {
		t.Fatalf("expected only Distributed Systems, got %d items", col.ItemCount())
	}

	col.Update(keyMsg("enter"))
	if col.IsFilterTyping() {
		t.Fatal("enter should accept the filter and blur the input")
	}
	col.Update(keyMsg("esc"))
	if col.ItemCount() != 3 {
		t.Fatalf("esc should clear the filter, got %d items", col.ItemCount())
	}
}

func TestListColumnSetItemsKeepsSelection(t *testing.T) {
	col := NewListColumn(LevelSubjects, "")
	col.SetFocused(true)
	col.SetItems(subjects("Algorithms", "Databases", "Networks"))
	col.SetSelectedIndex(2)

	// same ids, new order
	col.SetItems([]domain.ListItem{
		domain.Subject{ID: 3, Name: "Networks"},
		domain.Subject{ID: 1, Name: "Algorithms"},
	})
	if got := col.SelectedItem().GetID(); got != 3 {
		t.Fatalf("expected selection to follow id 3, got %d", got)
	}
}

func TestListColumnRenderStates(t *testing.T) {
	col := NewListColumn(LevelMaterials, "Data Structures")
	col.SetSize(50, 10)

	col.SetLoading(true)
	if !strings.Contains(col.View(), "Loading") {
		t.Fatal("expected loading indicator")
	}
	col.SetError("catalogue server is unreachable")
	if !strings.Contains(col.View(), "unreachable") {
		t.Fatal("expected error text")
	}
	col.SetItems(nil)
	if !strings.Contains(col.View(), "No items") {
		t.Fatal("expected empty state")
	}
	col.SetItems([]domain.ListItem{domain.Material{ID: 1, Title: "Unit 1 notes", MaterialType: "notes"}})
	if v := col.View(); !strings.Contains(v, "Unit 1 notes") || !strings.Contains(v, "Data Structures") {
		t.Fatalf("expected title and item in view:\n%s", v)
	}
}

func TestLevelChild(t *testing.T) {
	if l, ok := LevelBranches.Child(); !ok || l != LevelRegulations {
		t.Fatalf("branches child = %v, %v", l, ok)
	}
	if _, ok := LevelMaterials.Child(); ok {
		t.Fatal("materials are leaves")
	}
	if _, ok := LevelFrequent.Child(); ok {
		t.Fatal("frequent column has no fixed child level")
	}
}
