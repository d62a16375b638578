package catalog

import (
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
)

// Queries provides synchronous, cache-only reads.
// Implements domain.CatalogQueries.
type Queries struct {
	store *state.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store *state.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) CachedBranches() ([]domain.Branch, bool) {
	return q.store.Snapshot().Branches()
}

func (q *Queries) CachedRegulations() ([]domain.Regulation, bool) {
	return q.store.Snapshot().Regulations()
}

func (q *Queries) CachedYears() ([]domain.Year, bool) {
	return q.store.Snapshot().Years()
}

func (q *Queries) CachedSemesters(yearID int64) ([]domain.Semester, bool) {
	return q.store.Snapshot().Semesters(yearID)
}

func (q *Queries) CachedSubjects(key domain.SubjectKey) ([]domain.Subject, bool) {
	return q.store.Snapshot().Subjects(key)
}

func (q *Queries) CachedSubBranches(branchID int64) ([]domain.SubBranch, bool) {
	return q.store.Snapshot().SubBranches(branchID)
}

func (q *Queries) CachedMaterials(subjectID int64) ([]domain.Material, bool) {
	return q.store.Snapshot().Materials(subjectID)
}

func (q *Queries) MaterialByID(id int64) (domain.Material, bool) {
	return q.store.Snapshot().MaterialByID(id)
}

func (q *Queries) SubjectByID(id int64) (domain.Subject, bool) {
	return q.store.Snapshot().SubjectByID(id)
}

func (q *Queries) IsLoading(key string) bool {
	return q.store.IsLoading(key)
}

var (
	_ domain.CatalogQueries = (*Queries)(nil)
	_ domain.CatalogLoaders = (*Service)(nil)
)
