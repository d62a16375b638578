package state

import (
	"maps"
	"slices"

	"github.com/printandread/shelf/internal/domain"
)

// owned map bits: a Txn clones each map at most once, on first write.
const (
	ownSemesters = 1 << iota
	ownSubjects
	ownSubBranches
	ownMaterials
	ownMaterialsByID
	ownSubjectsByID
)

// Txn mutates a private copy of a snapshot inside Store.Update.
// Keyed setters replace the whole entry for their key; nothing merges
// into an existing collection except the point indexes, which only grow.
type Txn struct {
	st    *State
	owned int
}

func newTxn(from *State) *Txn {
	next := *from
	return &Txn{st: &next}
}

// State exposes the snapshot being built, for read-modify-write callbacks.
func (t *Txn) State() *State { return t.st }

func (t *Txn) SetBranches(v []domain.Branch) {
	t.st.branches = v
	t.st.hasBranches = true
}

func (t *Txn) SetRegulations(v []domain.Regulation) {
	t.st.regulations = v
	t.st.hasRegulations = true
}

func (t *Txn) SetYears(v []domain.Year) {
	t.st.years = v
	t.st.hasYears = true
}

func (t *Txn) SetSemesters(yearID int64, v []domain.Semester) {
	if t.owned&ownSemesters == 0 {
		t.st.semesters = maps.Clone(t.st.semesters)
		t.owned |= ownSemesters
	}
	t.st.semesters[yearID] = v
}

func (t *Txn) SetSubjects(key domain.SubjectKey, v []domain.Subject) {
	if t.owned&ownSubjects == 0 {
		t.st.subjects = maps.Clone(t.st.subjects)
		t.owned |= ownSubjects
	}
	t.st.subjects[key] = v
	for _, s := range v {
		t.PutSubject(s)
	}
}

func (t *Txn) SetSubBranches(branchID int64, v []domain.SubBranch) {
	if t.owned&ownSubBranches == 0 {
		t.st.subBranches = maps.Clone(t.st.subBranches)
		t.owned |= ownSubBranches
	}
	t.st.subBranches[branchID] = v
}

func (t *Txn) SetMaterials(subjectID int64, v []domain.Material) {
	if t.owned&ownMaterials == 0 {
		t.st.materials = maps.Clone(t.st.materials)
		t.owned |= ownMaterials
	}
	t.st.materials[subjectID] = v
	for _, m := range v {
		t.PutMaterial(m)
	}
}

// PutMaterial adds or overwrites one entry of the material index.
func (t *Txn) PutMaterial(m domain.Material) {
	if t.owned&ownMaterialsByID == 0 {
		t.st.materialsByID = maps.Clone(t.st.materialsByID)
		t.owned |= ownMaterialsByID
	}
	t.st.materialsByID[m.ID] = m
}

// PutSubject adds or overwrites one entry of the subject index.
func (t *Txn) PutSubject(s domain.Subject) {
	if t.owned&ownSubjectsByID == 0 {
		t.st.subjectsByID = maps.Clone(t.st.subjectsByID)
		t.owned |= ownSubjectsByID
	}
	t.st.subjectsByID[s.ID] = s
}

// AppendMaterial indexes m and appends it to its subject's cached list
// when that list is loaded and does not already hold m.
func (t *Txn) AppendMaterial(m domain.Material) {
	t.PutMaterial(m)
	if m.SubjectID == 0 {
		return
	}
	list, ok := t.st.materials[m.SubjectID]
	if !ok {
		return
	}
	if slices.ContainsFunc(list, func(x domain.Material) bool { return x.ID == m.ID }) {
		return
	}
	if t.owned&ownMaterials == 0 {
		t.st.materials = maps.Clone(t.st.materials)
		t.owned |= ownMaterials
	}
	// Clip so append never writes into the previous snapshot's backing array.
	t.st.materials[m.SubjectID] = append(slices.Clip(list), m)
}

func (t *Txn) InvalidateBranches() {
	t.st.branches, t.st.hasBranches = nil, false
}

func (t *Txn) InvalidateRegulations() {
	t.st.regulations, t.st.hasRegulations = nil, false
}

func (t *Txn) InvalidateYears() {
	t.st.years, t.st.hasYears = nil, false
}

// ClearSubjects drops every subject listing. The subject index is kept.
func (t *Txn) ClearSubjects() {
	t.st.subjects = map[domain.SubjectKey][]domain.Subject{}
	t.owned |= ownSubjects
}

// ClearMaterials drops every material listing and the material index.
func (t *Txn) ClearMaterials() {
	t.st.materials = map[int64][]domain.Material{}
	t.st.materialsByID = map[int64]domain.Material{}
	t.owned |= ownMaterials | ownMaterialsByID
}

// Reset returns the snapshot to its initial empty contents.
func (t *Txn) Reset() {
	version := t.st.version
	t.st = emptyState()
	t.st.version = version
	t.owned = ownSemesters | ownSubjects | ownSubBranches | ownMaterials | ownMaterialsByID | ownSubjectsByID
}
