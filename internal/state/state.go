// Package state holds the in-memory catalogue cache: a versioned,
// copy-on-write snapshot of everything the loaders have fetched.
//
// A *State is immutable once published. Writers go through Store.Update,
// which hands the callback a Txn over a private copy; readers holding an
// older *State keep seeing a consistent, if stale, view.
package state

import (
	"github.com/printandread/shelf/internal/domain"
)

// State is one snapshot of the cache.
//
// Flat collections carry a presence flag so "never loaded" and
// "loaded, server returned nothing" stay distinct. Keyed collections use
// map membership for the same purpose.
type State struct {
	version uint64

	branches       []domain.Branch
	regulations    []domain.Regulation
	years          []domain.Year
	hasBranches    bool
	hasRegulations bool
	hasYears       bool

	semesters   map[int64][]domain.Semester
	subjects    map[domain.SubjectKey][]domain.Subject
	subBranches map[int64][]domain.SubBranch
	materials   map[int64][]domain.Material

	materialsByID map[int64]domain.Material
	subjectsByID  map[int64]domain.Subject
}

func emptyState() *State {
	return &State{
		semesters:     map[int64][]domain.Semester{},
		subjects:      map[domain.SubjectKey][]domain.Subject{},
		subBranches:   map[int64][]domain.SubBranch{},
		materials:     map[int64][]domain.Material{},
		materialsByID: map[int64]domain.Material{},
		subjectsByID:  map[int64]domain.Subject{},
	}
}

// Version increases by one on every published mutation.
func (s *State) Version() uint64 { return s.version }

// Returned slices are shared with the snapshot and must not be modified.

func (s *State) Branches() ([]domain.Branch, bool) {
	return s.branches, s.hasBranches
}

func (s *State) Regulations() ([]domain.Regulation, bool) {
	return s.regulations, s.hasRegulations
}

func (s *State) Years() ([]domain.Year, bool) {
	return s.years, s.hasYears
}

func (s *State) Semesters(yearID int64) ([]domain.Semester, bool) {
	v, ok := s.semesters[yearID]
	return v, ok
}

func (s *State) Subjects(key domain.SubjectKey) ([]domain.Subject, bool) {
	v, ok := s.subjects[key]
	return v, ok
}

func (s *State) SubBranches(branchID int64) ([]domain.SubBranch, bool) {
	v, ok := s.subBranches[branchID]
	return v, ok
}

func (s *State) Materials(subjectID int64) ([]domain.Material, bool) {
	v, ok := s.materials[subjectID]
	return v, ok
}

func (s *State) MaterialByID(id int64) (domain.Material, bool) {
	v, ok := s.materialsByID[id]
	return v, ok
}

func (s *State) SubjectByID(id int64) (domain.Subject, bool) {
	v, ok := s.subjectsByID[id]
	return v, ok
}

// SubjectKeys lists the subject listings currently cached.
func (s *State) SubjectKeys() []domain.SubjectKey {
	keys := make([]domain.SubjectKey, 0, len(s.subjects))
	for k := range s.subjects {
		keys = append(keys, k)
	}
	return keys
}

// IndexedMaterials returns every material in the point index, unordered.
func (s *State) IndexedMaterials() []domain.Material {
	out := make([]domain.Material, 0, len(s.materialsByID))
	for _, m := range s.materialsByID {
		out = append(out, m)
	}
	return out
}

// IndexedSubjects returns every subject in the point index, unordered.
func (s *State) IndexedSubjects() []domain.Subject {
	out := make([]domain.Subject, 0, len(s.subjectsByID))
	for _, sub := range s.subjectsByID {
		out = append(out, sub)
	}
	return out
}
