package tui

import (
	"github.com/printandread/shelf/internal/tui/components"
)

// ColumnStack manages the stack of navigable columns in Miller Columns layout.
//
//	Root:      [Branches]
//	Branch:    [Branches | Regulations]
//	Semester:  [Years | Semesters | Subjects]
//
// The top of the stack is always focused; the column below it shows parent context.
type ColumnStack struct {
	columns     []*components.ListColumn
	cursorStack []int // saved cursor positions for back navigation
}

// NewColumnStack creates a stack holding root
func NewColumnStack(root *components.ListColumn) *ColumnStack {
	cs := &ColumnStack{}
	cs.Reset(root)
	return cs
}

// Len returns the number of columns in the stack
func (cs *ColumnStack) Len() int {
	return len(cs.columns)
}

// Get returns the column at the given index (0 = root)
func (cs *ColumnStack) Get(idx int) *components.ListColumn {
	if idx < 0 || idx >= len(cs.columns) {
		return nil
	}
	return cs.columns[idx]
}

// Top returns the focused column
func (cs *ColumnStack) Top() *components.ListColumn {
	if len(cs.columns) == 0 {
		return nil
	}
	return cs.columns[len(cs.columns)-1]
}

// Parent returns the column below the top, or nil at the root
func (cs *ColumnStack) Parent() *components.ListColumn {
	if len(cs.columns) < 2 {
		return nil
	}
	return cs.columns[len(cs.columns)-2]
}

// Push adds a column on top, saving the current cursor for Pop
func (cs *ColumnStack) Push(col *components.ListColumn) {
	saved := 0
	if top := cs.Top(); top != nil {
		saved = top.SelectedIndex()
		top.SetFocused(false)
	}
	cs.cursorStack = append(cs.cursorStack, saved)

	col.SetFocused(true)
	cs.columns = append(cs.columns, col)
}

// Pop removes the top column and restores the parent's cursor.
// The root column is never popped.
func (cs *ColumnStack) Pop() *components.ListColumn {
	if len(cs.columns) <= 1 {
		return nil
	}

	popped := cs.columns[len(cs.columns)-1]
	popped.SetFocused(false)
	cs.columns = cs.columns[:len(cs.columns)-1]

	top := cs.Top()
	top.SetFocused(true)
	if n := len(cs.cursorStack); n > 0 {
		top.SetSelectedIndex(cs.cursorStack[n-1])
		cs.cursorStack = cs.cursorStack[:n-1]
	}
	return popped
}

// Reset replaces the whole stack with a single root column
func (cs *ColumnStack) Reset(root *components.ListColumn) {
	for _, col := range cs.columns {
		col.SetFocused(false)
	}
	root.SetFocused(true)
	cs.columns = []*components.ListColumn{root}
	cs.cursorStack = nil
}

// Find returns the column showing level under parentID, if it is on the stack
func (cs *ColumnStack) Find(level components.Level, parentID int64) *components.ListColumn {
	for _, col := range cs.columns {
		if col.Level() == level && col.ParentID == parentID {
			return col
		}
	}
	return nil
}

// Depth returns the navigation depth (0 = root)
func (cs *ColumnStack) Depth() int {
	return max(len(cs.columns)-1, 0)
}

// Breadcrumb joins the titles of the columns from root to top
func (cs *ColumnStack) Breadcrumb() []string {
	crumbs := make([]string, 0, len(cs.columns))
	for _, col := range cs.columns {
		crumbs = append(crumbs, col.Title())
	}
	return crumbs
}

// UpdateSpinnerFrame updates the spinner frame for all columns
func (cs *ColumnStack) UpdateSpinnerFrame(frame int) {
	for _, col := range cs.columns {
		col.SetSpinnerFrame(frame)
	}
}
