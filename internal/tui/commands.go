package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
	"github.com/printandread/shelf/internal/tui/components"
)

// loadTimeout bounds a single column load
const loadTimeout = 30 * time.Second

// listItems converts a typed slice to list items
func listItems[T domain.ListItem](in []T) []domain.ListItem {
	out := make([]domain.ListItem, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// loadLevelCmd loads the items of one column through the catalogue cache
func (m *Model) loadLevelCmd(level components.Level, parentID int64, force bool) tea.Cmd {
	catalog := m.catalog
	key := m.subjectKey()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			items []domain.ListItem
			err   error
		)
		switch level {
		case components.LevelBranches:
			var v []domain.Branch
			v, err = catalog.LoadBranches(ctx, force)
			items = listItems(v)
		case components.LevelRegulations:
			var v []domain.Regulation
			v, err = catalog.LoadRegulations(ctx, force)
			items = listItems(v)
		case components.LevelYears:
			var v []domain.Year
			v, err = catalog.LoadYears(ctx, force)
			items = listItems(v)
		case components.LevelSemesters:
			var v []domain.Semester
			v, err = catalog.LoadSemesters(ctx, parentID, force)
			items = listItems(v)
		case components.LevelSubjects:
			var v []domain.Subject
			v, err = catalog.LoadSubjects(ctx, key, force)
			items = listItems(v)
		case components.LevelMaterials:
			var v []domain.Material
			v, err = catalog.LoadMaterials(ctx, parentID, force)
			items = listItems(v)
		default:
			err = fmt.Errorf("level %s cannot be loaded", level)
		}
		return LevelLoadedMsg{Level: level, ParentID: parentID, Items: items, Err: err}
	}
}

// cachedItems reads a column from the snapshot without touching the network
func (m *Model) cachedItems(st *state.State, level components.Level, parentID int64) ([]domain.ListItem, bool) {
	switch level {
	case components.LevelBranches:
		v, ok := st.Branches()
		return listItems(v), ok
	case components.LevelRegulations:
		v, ok := st.Regulations()
		return listItems(v), ok
	case components.LevelYears:
		v, ok := st.Years()
		return listItems(v), ok
	case components.LevelSemesters:
		v, ok := st.Semesters(parentID)
		return listItems(v), ok
	case components.LevelSubjects:
		v, ok := st.Subjects(m.subjectKey())
		return listItems(v), ok
	case components.LevelMaterials:
		v, ok := st.Materials(parentID)
		return listItems(v), ok
	default:
		return nil, false
	}
}

// waitForSnapshot blocks on the store subscription and relays the next snapshot
func waitForSnapshot(ch <-chan *state.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{State: st}
	}
}

// trackCmd records a visit in the frequently accessed list
func (m *Model) trackCmd(item domain.ListItem, typ domain.EntityType, meta *domain.AccessMetadata) tea.Cmd {
	tracker := m.tracker
	if tracker == nil {
		return nil
	}
	return func() tea.Msg {
		if err := tracker.TrackAccess(item.GetID(), item.GetTitle(), typ, meta); err != nil {
			return StatusMsg{Err: fmt.Errorf("track %s: %w", typ, err)}
		}
		return nil
	}
}

// openMaterialCmd records the visit, saves the continue pointer and opens the document
func (m *Model) openMaterialCmd(mat domain.Material, meta *domain.AccessMetadata) tea.Cmd {
	tracker, bookmark, opener := m.tracker, m.bookmark, m.opener
	return func() tea.Msg {
		if tracker != nil {
			// Tracking failures never block opening
			_ = tracker.TrackAccess(mat.ID, mat.Title, domain.EntityMaterial, meta)
		}
		if bookmark != nil {
			bookmark.SaveLastViewed(mat)
		}
		var err error
		if opener != nil {
			err = opener.Open(mat.URL)
		}
		return MaterialOpenedMsg{Material: mat, Err: err}
	}
}

// openMaterialByIDCmd loads a material by id, then opens it
func (m *Model) openMaterialByIDCmd(id int64, meta *domain.AccessMetadata) tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		mat, err := catalog.LoadMaterialByID(ctx, id, false)
		if err != nil {
			return StatusMsg{Err: fmt.Errorf("load material %d: %w", id, err)}
		}
		return m.openMaterialCmd(mat, meta)()
	}
}

// resumeCmd reopens the last viewed material
func (m *Model) resumeCmd() tea.Cmd {
	bookmark, catalog := m.bookmark, m.catalog
	if bookmark == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		mat, ok, err := bookmark.Resume(ctx, func(ctx context.Context, id int64) (domain.Material, error) {
			return catalog.LoadMaterialByID(ctx, id, false)
		})
		switch {
		case err != nil:
			return StatusMsg{Err: fmt.Errorf("continue: %w", err)}
		case !ok:
			return StatusMsg{Text: "Nothing to continue yet"}
		}
		meta := &domain.AccessMetadata{SubjectID: domain.Int64(mat.SubjectID), MaterialID: domain.Int64(mat.ID)}
		return m.openMaterialCmd(mat, meta)()
	}
}

// spinnerTick schedules the next spinner frame
func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// accessItem shows an access record in a column
type accessItem struct {
	domain.AccessRecord
}

func (a accessItem) GetID() int64        { return a.ID }
func (a accessItem) GetTitle() string    { return a.DisplayName }
func (a accessItem) GetItemType() string { return string(a.Type) }
func (a accessItem) CanDrillDown() bool  { return a.Type != domain.EntityMaterial }
func (a accessItem) GetDescription() string {
	visits := "1 visit"
	if a.AccessCount != 1 {
		visits = fmt.Sprintf("%d visits", a.AccessCount)
	}
	return visits + " · " + a.LastAccessedAt.Format("Jan 2 15:04")
}

// frequentItems flattens the grouped ranking in fixed type order
func frequentItems(groups map[domain.EntityType][]domain.AccessRecord) []domain.ListItem {
	var items []domain.ListItem
	for _, typ := range domain.EntityTypes {
		for _, rec := range groups[typ] {
			items = append(items, accessItem{rec})
		}
	}
	return items
}
