package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/printandread/shelf/internal/search"
	"github.com/printandread/shelf/internal/tui/styles"
)

// maxSearchResults is how many results the modal lists
const maxSearchResults = 10

var globalSearchKeys = struct {
	Up, Down, Enter, Escape key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+k", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+j", "ctrl+n")),
	Enter:  key.NewBinding(key.WithKeys("enter")),
	Escape: key.NewBinding(key.WithKeys("esc")),
}

// GlobalSearch is the fuzzy search modal over the cached catalogue
type GlobalSearch struct {
	input     textinput.Model
	results   []search.FilterResult
	cursor    int
	visible   bool
	width     int
	height    int
	prevQuery string
}

// NewGlobalSearch creates a hidden search modal
func NewGlobalSearch() GlobalSearch {
	ti := textinput.New()
	ti.Placeholder = "Type to search cached branches, subjects, materials..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return GlobalSearch{input: ti}
}

// Show makes the modal visible with an empty query
func (o *GlobalSearch) Show() {
	o.visible = true
	o.input.Focus()
	o.input.SetValue("")
	o.results = nil
	o.cursor = 0
	o.prevQuery = ""
}

// Hide hides the modal
func (o *GlobalSearch) Hide() {
	o.visible = false
	o.input.Blur()
}

func (o GlobalSearch) IsVisible() bool { return o.visible }
func (o GlobalSearch) Query() string   { return o.input.Value() }
func (o GlobalSearch) ResultCount() int {
	return len(o.results)
}

// SetResults replaces the results and moves the cursor to the top
func (o *GlobalSearch) SetResults(results []search.FilterResult) {
	o.results = results
	o.cursor = 0
}

// SetSize updates the area the modal is centred in
func (o *GlobalSearch) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.input.Width = max(width/2, 20)
}

// QueryChanged reports whether the query changed since the last call
func (o *GlobalSearch) QueryChanged() bool {
	current := o.input.Value()
	if current != o.prevQuery {
		o.prevQuery = current
		return true
	}
	return false
}

// Selected returns the result under the cursor
func (o GlobalSearch) Selected() (search.FilterResult, bool) {
	if o.cursor >= len(o.results) {
		return search.FilterResult{}, false
	}
	return o.results[o.cursor], true
}

// Update handles keys; the bool reports that a result was chosen
func (o GlobalSearch) Update(msg tea.Msg) (GlobalSearch, tea.Cmd, bool) {
	if !o.visible {
		return o, nil, false
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, globalSearchKeys.Escape):
			o.Hide()
			return o, nil, false
		case key.Matches(msg, globalSearchKeys.Enter):
			return o, nil, len(o.results) > 0
		case key.Matches(msg, globalSearchKeys.Down):
			if o.cursor < min(len(o.results), maxSearchResults)-1 {
				o.cursor++
			}
			return o, nil, false
		case key.Matches(msg, globalSearchKeys.Up):
			if o.cursor > 0 {
				o.cursor--
			}
			return o, nil, false
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd, false
}

// View renders the centred modal
func (o GlobalSearch) View() string {
	if !o.visible {
		return ""
	}
	modalWidth := min(max(o.width*2/3, 40), 80)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")
	o.renderResults(&b, modalWidth)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(b.String())
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, modal)
}

func (o GlobalSearch) renderResults(b *strings.Builder, modalWidth int) {
	if len(o.results) == 0 {
		if strings.TrimSpace(o.input.Value()) != "" {
			b.WriteString(styles.DimStyle.Render("No matches in the cache"))
		}
		return
	}

	shown := min(len(o.results), maxSearchResults)
	for i := 0; i < shown; i++ {
		r := o.results[i]
		selected := i == o.cursor

		badge := strings.ToUpper(string(r.Type))
		if len(badge) > 3 {
			badge = badge[:3]
		}
		b.WriteString(styles.BadgeStyle.Render(badge))
		b.WriteString(" ")

		title := styles.Truncate(r.Title, modalWidth-20)
		b.WriteString(highlightMatches(title, r.MatchedIndexes, selected))
		if r.Code != "" {
			b.WriteString(styles.DimStyle.Render("  " + r.Code))
		}
		b.WriteString("\n")
	}
	if len(o.results) > shown {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", len(o.results)-shown)))
	}
}

// highlightMatches renders text with the matched rune positions emphasised
func highlightMatches(text string, matched []int, selected bool) string {
	normal := lipgloss.NewStyle().Foreground(styles.LightGray)
	match := lipgloss.NewStyle().Foreground(styles.ShelfTeal).Bold(true)
	if selected {
		normal = normal.Foreground(styles.White).Background(styles.SlateLight)
		match = match.Background(styles.SlateLight)
	}

	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	// Batch consecutive runes with the same style
	var out strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); {
		isMatch := set[i]
		j := i
		for j < len(runes) && set[j] == isMatch {
			j++
		}
		style := normal
		if isMatch {
			style = match
		}
		out.WriteString(style.Render(string(runes[i:j])))
		i = j
	}
	return out.String()
}
