// Package tui is the interactive catalogue browser: Miller columns that
// drill branch → regulation → year → semester → subject → material.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/printandread/shelf/internal/access"
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/search"
	"github.com/printandread/shelf/internal/state"
	"github.com/printandread/shelf/internal/tui/components"
	"github.com/printandread/shelf/internal/tui/styles"
)

// maxVisibleColumns is how many columns of the stack are drawn side by side
const maxVisibleColumns = 3

// Tracker records visits and serves the ranked shortcuts.
type Tracker interface {
	TrackAccess(id int64, name string, typ domain.EntityType, meta *domain.AccessMetadata) error
	GetGroupedRecords() map[domain.EntityType][]domain.AccessRecord
}

// Bookmark keeps the "continue learning" pointer.
type Bookmark interface {
	SaveLastViewed(m domain.Material)
	Resume(ctx context.Context, load access.MaterialLoader) (domain.Material, bool, error)
}

// Opener hands a document URL to an external viewer.
type Opener interface {
	Open(url string) error
}

// Searcher matches a query against the cached catalogue.
type Searcher interface {
	FilterLocal(query string, types []domain.EntityType) []search.FilterResult
}

// SnapshotSource publishes catalogue snapshots.
type SnapshotSource interface {
	Snapshot() *state.State
	Subscribe() (<-chan *state.State, func())
}

// selection is the path of ids picked so far
type selection struct {
	BranchID     int64
	RegulationID int64
	YearID       int64
	SemesterID   int64
	SubjectID    int64
}

// Model is the Bubble Tea model of the browser
type Model struct {
	catalog  domain.CatalogLoaders
	tracker  Tracker
	bookmark Bookmark
	opener   Opener
	searcher Searcher

	globalSearch components.GlobalSearch

	snapshot  *state.State
	snapshots <-chan *state.State
	unsub     func()

	stack *ColumnStack
	sel   selection

	keys     KeyMap
	help     help.Model
	showHelp bool

	width  int
	height int

	status    string
	statusErr bool

	spinnerFrame int
	spinning     bool
}

// NewModel creates the browser and subscribes to catalogue snapshots.
// tracker, bookmark and opener may be nil.
func NewModel(catalog domain.CatalogLoaders, store SnapshotSource, tracker Tracker, bookmark Bookmark, opener Opener) *Model {
	ch, unsub := store.Subscribe()
	return &Model{
		catalog:   catalog,
		tracker:   tracker,
		bookmark:  bookmark,
		opener:    opener,
		snapshot:  store.Snapshot(),
		snapshots: ch,
		unsub:     unsub,
		stack:     NewColumnStack(components.NewListColumn(components.LevelBranches, "")),
		keys:      DefaultKeyMap(),
		help:      help.New(),

		globalSearch: components.NewGlobalSearch(),
	}
}

// WithSearcher enables the search modal
func (m *Model) WithSearcher(s Searcher) *Model {
	m.searcher = s
	return m
}

// Init loads the root column and starts listening for snapshots
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.snapshots), m.fill(m.stack.Top(), false))
}

// Close cancels the snapshot subscription
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.globalSearch.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case SnapshotMsg:
		m.snapshot = msg.State
		m.refreshFromSnapshot()
		return m, waitForSnapshot(m.snapshots)

	case LevelLoadedMsg:
		col := m.stack.Find(msg.Level, msg.ParentID)
		if col == nil {
			// navigated away before the load finished
			return m, nil
		}
		if msg.Err != nil {
			col.SetError(msg.Err.Error())
			m.setStatus("", msg.Err)
			return m, nil
		}
		col.SetItems(msg.Items)
		return m, nil

	case MaterialOpenedMsg:
		if msg.Err != nil {
			m.setStatus("", msg.Err)
		} else {
			m.setStatus("Opened "+msg.Material.Title, nil)
		}
		return m, nil

	case StatusMsg:
		m.setStatus(msg.Text, msg.Err)
		return m, nil

	case SpinnerTickMsg:
		if !m.anyLoading() {
			m.spinning = false
			return m, nil
		}
		m.spinnerFrame++
		m.stack.UpdateSpinnerFrame(m.spinnerFrame)
		return m, spinnerTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.globalSearch.IsVisible() {
		return m.handleSearchKey(msg)
	}

	top := m.stack.Top()

	// Filter input owns the keyboard while typing
	if top.IsFilterTyping() {
		_, cmd := top.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		top.ToggleFilter()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m, m.drill(top.SelectedItem())
	case key.Matches(msg, m.keys.Back):
		if m.stack.Pop() != nil {
			m.layout()
		}
		return m, nil
	case key.Matches(msg, m.keys.Search):
		if m.searcher == nil {
			return m, nil
		}
		m.globalSearch.Show()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fill(top, true)
	case key.Matches(msg, m.keys.Frequent):
		return m, m.pushFrequent()
	case key.Matches(msg, m.keys.Continue):
		m.setStatus("Resuming...", nil)
		return m, m.resumeCmd()
	case key.Matches(msg, m.keys.Home):
		m.sel = selection{}
		m.stack.Reset(components.NewListColumn(components.LevelBranches, ""))
		m.layout()
		return m, m.fill(m.stack.Top(), false)
	}

	_, cmd := top.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gs, cmd, selected := m.globalSearch.Update(msg)
	m.globalSearch = gs
	if selected {
		result, ok := m.globalSearch.Selected()
		m.globalSearch.Hide()
		if !ok {
			return m, nil
		}
		return m, m.jump(result.Item)
	}
	if m.globalSearch.QueryChanged() {
		m.globalSearch.SetResults(m.searcher.FilterLocal(m.globalSearch.Query(), nil))
	}
	return m, cmd
}

// jump starts a fresh path at a search hit. Materials open in place.
func (m *Model) jump(item domain.ListItem) tea.Cmd {
	if _, ok := item.(domain.Material); ok {
		return m.drill(item)
	}
	m.sel = selection{}
	m.stack.Reset(components.NewListColumn(components.LevelBranches, ""))
	m.layout()
	return tea.Batch(m.fill(m.stack.Top(), false), m.drill(item))
}

// drill opens item: pushes its child column, or opens a material document
func (m *Model) drill(item domain.ListItem) tea.Cmd {
	switch v := item.(type) {
	case domain.Branch:
		m.sel = selection{BranchID: v.ID}
		meta := &domain.AccessMetadata{BranchID: domain.Int64(v.ID), Code: &v.Code}
		return tea.Batch(m.trackCmd(v, domain.EntityBranch, meta), m.push(components.LevelRegulations, v.ID, v.Name))

	case domain.Regulation:
		m.sel = selection{BranchID: m.sel.BranchID, RegulationID: v.ID}
		meta := &domain.AccessMetadata{RegulationID: domain.Int64(v.ID), Code: &v.Code}
		if m.sel.BranchID != 0 {
			meta.BranchID = domain.Int64(m.sel.BranchID)
		}
		return tea.Batch(m.trackCmd(v, domain.EntityRegulation, meta), m.push(components.LevelYears, v.ID, v.Name))

	case domain.Year:
		m.sel.YearID, m.sel.SemesterID, m.sel.SubjectID = v.ID, 0, 0
		return m.push(components.LevelSemesters, v.ID, v.GetTitle())

	case domain.Semester:
		m.sel.SemesterID, m.sel.SubjectID = v.ID, 0
		return m.push(components.LevelSubjects, v.ID, v.GetTitle())

	case domain.Subject:
		m.sel.SubjectID = v.ID
		return tea.Batch(m.trackCmd(v, domain.EntitySubject, m.subjectMeta(v)), m.push(components.LevelMaterials, v.ID, v.Name))

	case domain.Material:
		meta := m.pathMeta()
		meta.SubjectID = domain.Int64(v.SubjectID)
		meta.MaterialID = domain.Int64(v.ID)
		return m.openMaterialCmd(v, meta)

	case accessItem:
		return m.drillRecord(v.AccessRecord)
	}
	return nil
}

// drillRecord jumps from a frequently accessed shortcut into the hierarchy
func (m *Model) drillRecord(rec domain.AccessRecord) tea.Cmd {
	meta := rec.Metadata
	if meta == nil {
		meta = &domain.AccessMetadata{}
	}
	idOr := func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	}

	item := accessItem{rec}
	switch rec.Type {
	case domain.EntityBranch:
		m.sel = selection{BranchID: rec.ID}
		return tea.Batch(m.trackCmd(item, rec.Type, meta), m.push(components.LevelRegulations, rec.ID, rec.DisplayName))
	case domain.EntityRegulation:
		m.sel = selection{BranchID: idOr(meta.BranchID), RegulationID: rec.ID}
		return tea.Batch(m.trackCmd(item, rec.Type, meta), m.push(components.LevelYears, rec.ID, rec.DisplayName))
	case domain.EntitySubject:
		m.sel = selection{
			BranchID:     idOr(meta.BranchID),
			RegulationID: idOr(meta.RegulationID),
			YearID:       idOr(meta.YearID),
			SemesterID:   idOr(meta.SemesterID),
			SubjectID:    rec.ID,
		}
		return tea.Batch(m.trackCmd(item, rec.Type, meta), m.push(components.LevelMaterials, rec.ID, rec.DisplayName))
	case domain.EntityMaterial:
		return m.openMaterialByIDCmd(rec.ID, meta)
	}
	return nil
}

// push adds a child column, filling it from the snapshot or loading it
func (m *Model) push(level components.Level, parentID int64, title string) tea.Cmd {
	col := components.NewListColumn(level, title)
	col.ParentID = parentID
	m.stack.Push(col)
	m.layout()
	return m.fill(col, false)
}

// fill shows cached items immediately; otherwise it starts a load
func (m *Model) fill(col *components.ListColumn, force bool) tea.Cmd {
	if col.Level() == components.LevelFrequent {
		col.SetItems(m.frequent())
		return nil
	}
	if !force {
		if items, ok := m.cachedItems(m.snapshot, col.Level(), col.ParentID); ok {
			col.SetItems(items)
			return nil
		}
	}
	col.SetLoading(true)
	return tea.Batch(m.loadLevelCmd(col.Level(), col.ParentID, force), m.startSpinner())
}

func (m *Model) pushFrequent() tea.Cmd {
	if top := m.stack.Top(); top.Level() == components.LevelFrequent {
		top.SetItems(m.frequent())
		return nil
	}
	col := components.NewListColumn(components.LevelFrequent, "")
	m.stack.Push(col)
	m.layout()
	return m.fill(col, false)
}

func (m *Model) frequent() []domain.ListItem {
	if m.tracker == nil {
		return nil
	}
	return frequentItems(m.tracker.GetGroupedRecords())
}

// refreshFromSnapshot re-renders every column whose entry changed in the snapshot
func (m *Model) refreshFromSnapshot() {
	for i := 0; i < m.stack.Len(); i++ {
		col := m.stack.Get(i)
		if col.IsFilterTyping() {
			continue
		}
		items, ok := m.cachedItems(m.snapshot, col.Level(), col.ParentID)
		if !ok || sameItems(col.Items(), items) {
			continue
		}
		col.SetItems(items)
	}
}

func sameItems(a, b []domain.ListItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].GetID() != b[i].GetID() || a[i].GetTitle() != b[i].GetTitle() ||
			a[i].GetDescription() != b[i].GetDescription() {
			return false
		}
	}
	return true
}

func (m *Model) subjectKey() domain.SubjectKey {
	return domain.SubjectKey{
		BranchID:     m.sel.BranchID,
		RegulationID: m.sel.RegulationID,
		YearID:       m.sel.YearID,
		SemesterID:   m.sel.SemesterID,
	}
}

// pathMeta records the ids selected so far as navigation hints
func (m *Model) pathMeta() *domain.AccessMetadata {
	meta := &domain.AccessMetadata{}
	set := func(dst **int64, id int64) {
		if id != 0 {
			*dst = domain.Int64(id)
		}
	}
	set(&meta.BranchID, m.sel.BranchID)
	set(&meta.RegulationID, m.sel.RegulationID)
	set(&meta.YearID, m.sel.YearID)
	set(&meta.SemesterID, m.sel.SemesterID)
	return meta
}

func (m *Model) subjectMeta(s domain.Subject) *domain.AccessMetadata {
	meta := m.pathMeta()
	meta.SubjectID = domain.Int64(s.ID)
	meta.Code = &s.Code
	return meta
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return spinnerTick()
}

func (m *Model) anyLoading() bool {
	for i := 0; i < m.stack.Len(); i++ {
		if m.stack.Get(i).IsLoading() {
			return true
		}
	}
	return false
}

func (m *Model) setStatus(text string, err error) {
	m.statusErr = err != nil
	if err != nil {
		text = err.Error()
	}
	m.status = text
}

// visibleColumns returns the rightmost columns of the stack
func (m *Model) visibleColumns() []*components.ListColumn {
	n := m.stack.Len()
	start := max(n-maxVisibleColumns, 0)
	cols := make([]*components.ListColumn, 0, n-start)
	for i := start; i < n; i++ {
		cols = append(cols, m.stack.Get(i))
	}
	return cols
}

// layout sizes the visible columns to the window
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	footer := 2 // status + help
	if m.showHelp {
		rows := 0
		for _, group := range m.keys.FullHelp() {
			rows = max(rows, len(group))
		}
		footer = 1 + rows
	}
	height := max(m.height-footer, 3)

	cols := m.visibleColumns()
	width := m.width / len(cols)
	for i, col := range cols {
		w := width
		if i == len(cols)-1 {
			// last column absorbs the remainder
			w = m.width - width*(len(cols)-1)
		}
		col.SetSize(w, height)
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.globalSearch.IsVisible() {
		return m.globalSearch.View()
	}

	cols := m.visibleColumns()
	views := make([]string, len(cols))
	for i, col := range cols {
		views[i] = col.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, views...)

	crumbs := strings.Join(m.stack.Breadcrumb(), " › ")
	status := styles.DimStyle.Render(styles.Truncate(crumbs, m.width-2))
	if room := m.width - lipgloss.Width(crumbs) - 4; m.status != "" && room > 0 {
		style := styles.SuccessStyle
		if m.statusErr {
			style = styles.ErrorStyle
		}
		status += "  " + style.Render(styles.Truncate(m.status, room))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		styles.StatusBarStyle.Render(status),
		m.help.View(m.keys),
	)
}
