package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// ListColumn is a scrollable, filterable list of catalogue items.
type ListColumn struct {
	items []domain.ListItem
	level Level

	// ParentID is the id of the item this column was drilled from (0 at the root)
	ParentID int64

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	loading      bool
	spinnerFrame int
	errMsg       string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewListColumn creates an empty column for level
func NewListColumn(level Level, title string) *ListColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	if title == "" {
		title = level.String()
	}
	return &ListColumn{
		level:       level,
		title:       title,
		filterInput: ti,
	}
}

// Update handles navigation and filter keys when the column is focused
func (c *ListColumn) Update(msg tea.Msg) (*ListColumn, tea.Cmd) {
	if !c.focused {
		return c, nil
	}

	// Typing into the filter
	if c.filterActive && c.filterInput.Focused() {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				c.clearFilter()
				return c, nil
			case "enter":
				// Accept filter, blur input to allow navigation
				c.filterInput.Blur()
				return c, nil
			case "backspace":
				if c.filterInput.Value() == "" {
					c.clearFilter()
					return c, nil
				}
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return c, cmd
	}

	// Filter applied but blurred
	if c.filterActive {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				c.clearFilter()
				return c, nil
			case "/":
				c.filterInput.Focus()
				return c, nil
			}
		}
	}

	count := c.ItemCount()
	if count == 0 {
		return c, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j", "down":
			if c.cursor < count-1 {
				c.cursor++
				c.ensureVisible()
			}
		case "k", "up":
			if c.cursor > 0 {
				c.cursor--
				c.ensureVisible()
			}
		case "g", "home":
			c.cursor = 0
			c.offset = 0
		case "G", "end":
			c.cursor = count - 1
			c.ensureVisible()
		case "ctrl+d":
			c.cursor = min(c.cursor+c.maxVisible/2, count-1)
			c.ensureVisible()
		case "ctrl+u":
			c.cursor = max(c.cursor-c.maxVisible/2, 0)
			c.ensureVisible()
		}
	}
	return c, nil
}

// View renders the bordered column
func (c *ListColumn) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame (border) size so total rendered size equals c.width x c.height
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

// SetSize sets the outer dimensions of the column
func (c *ListColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *ListColumn) SetFocused(focused bool) { c.focused = focused }
func (c *ListColumn) IsFocused() bool         { return c.focused }
func (c *ListColumn) Title() string           { return c.title }
func (c *ListColumn) Level() Level            { return c.level }

// SetItems replaces the column contents and clears loading, error and filter state.
// The cursor stays on the same item id when it is still present.
func (c *ListColumn) SetItems(items []domain.ListItem) {
	var selectedID int64 = -1
	if sel := c.SelectedItem(); sel != nil {
		selectedID = sel.GetID()
	}

	c.items = items
	c.loading = false
	c.errMsg = ""
	c.clearFilter()

	c.cursor = 0
	for i, item := range items {
		if item.GetID() == selectedID {
			c.cursor = i
			break
		}
	}
	c.offset = 0
	c.ensureVisible()
}

// Items returns the unfiltered contents
func (c *ListColumn) Items() []domain.ListItem {
	return c.items
}

// SelectedItem returns the item under the cursor, or nil
func (c *ListColumn) SelectedItem() domain.ListItem {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count {
		return nil
	}
	return c.items[c.mapIndex(c.cursor)]
}

func (c *ListColumn) SelectedIndex() int {
	return c.cursor
}

func (c *ListColumn) SetSelectedIndex(idx int) {
	c.cursor = max(min(idx, c.ItemCount()-1), 0)
	c.ensureVisible()
}

// ItemCount returns the number of visible (filtered) items
func (c *ListColumn) ItemCount() int {
	if c.filteredIdx != nil {
		return len(c.filteredIdx)
	}
	return len(c.items)
}

// CanDrillInto reports whether the selected item has a child level
func (c *ListColumn) CanDrillInto() bool {
	item := c.SelectedItem()
	return item != nil && item.CanDrillDown()
}

func (c *ListColumn) SetLoading(loading bool) { c.loading = loading }
func (c *ListColumn) IsLoading() bool         { return c.loading }

// SetError shows msg in place of the items
func (c *ListColumn) SetError(msg string) {
	c.loading = false
	c.errMsg = msg
}

// SetSpinnerFrame updates the spinner animation frame
func (c *ListColumn) SetSpinnerFrame(frame int) {
	c.spinnerFrame = frame
}

// ToggleFilter activates the filter input
func (c *ListColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFilterTyping returns true if filter is active AND input is focused
func (c *ListColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

func (c *ListColumn) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	c.maxVisible = c.height - BorderHeight - ScrollIndicatorLines - 1
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *ListColumn) ensureVisible() {
	// Size not known yet
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

func (c *ListColumn) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.filteredIdx = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
}

// titleSource adapts the items to fuzzy.Source with lower-cased titles
type titleSource []domain.ListItem

func (s titleSource) String(i int) string { return strings.ToLower(s[i].GetTitle()) }
func (s titleSource) Len() int            { return len(s) }

func (c *ListColumn) applyFilter() {
	query := c.filterInput.Value()
	c.filterQuery = query
	c.cursor = 0
	c.offset = 0

	if query == "" {
		c.filteredIdx = nil
		return
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), titleSource(c.items))
	c.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		c.filteredIdx[i] = match.Index
	}
}

func (c *ListColumn) mapIndex(i int) int {
	if c.filteredIdx != nil && i < len(c.filteredIdx) {
		return c.filteredIdx[i]
	}
	return i
}

// Rendering

func (c *ListColumn) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	if c.loading {
		spinner := styles.SpinnerFrames[c.spinnerFrame%len(styles.SpinnerFrames)]
		return titleLine + "\n \n" + styles.DimStyle.Render(spinner+" Loading...") + "\n "
	}
	if c.errMsg != "" {
		return titleLine + "\n \n" + styles.ErrorStyle.Render(styles.Truncate(c.errMsg, itemWidth)) + "\n "
	}

	count := c.ItemCount()
	if count == 0 {
		emptyMsg := "No items"
		if c.filterActive && c.filterQuery != "" {
			emptyMsg = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(emptyMsg) + "\n "
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, renderItem(c.items[c.mapIndex(i)], i == c.cursor, itemWidth))
	}

	// Always reserve header/footer lines to prevent layout shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func renderItem(item domain.ListItem, selected bool, width int) string {
	marker := styles.TypeMarkers[item.GetItemType()]
	if marker == "" {
		marker = "·"
	}
	accent := styles.ShelfTeal
	dim := styles.DimGray

	title := item.GetTitle()
	desc := item.GetDescription()

	// marker(1) + space(1) + margins(2)
	available := max(width-4, 5)
	title = styles.Truncate(title, available)
	parts := []styles.RowPart{
		{Text: marker, Foreground: &accent},
		{Text: " " + title},
	}
	if rest := available - lipgloss.Width(title) - 3; desc != "" && rest > 4 {
		parts = append(parts, styles.RowPart{Text: "  " + styles.Truncate(desc, rest), Foreground: &dim})
	}
	// Drill arrow only when it fits
	if item.CanDrillDown() && partsWidth(parts)+2 < width-2 {
		parts = append(parts, styles.RowPart{Text: " ›", Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func partsWidth(parts []styles.RowPart) int {
	n := 0
	for _, p := range parts {
		n += lipgloss.Width(p.Text)
	}
	return n
}

func (c *ListColumn) renderFilterBar() string {
	countStr := ""
	if c.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", c.ItemCount(), len(c.items)))
	}
	return c.filterInput.View() + countStr
}
