package state

import (
	"strconv"

	"github.com/printandread/shelf/internal/domain"
)

// Cache key names. They identify an entry for loading flags, in-flight
// deduplication and metrics; the snapshot itself is keyed by typed ids.
const (
	// KeyBranches is the cache key for the branch list
	KeyBranches = "branches"

	// KeyRegulations is the cache key for the regulation list
	KeyRegulations = "regulations"

	// KeyYears is the cache key for the year list
	KeyYears = "years"

	// PrefixSemesters is the prefix for semester caches (semesters:{yearID})
	PrefixSemesters = "semesters:"

	// PrefixSubjects is the prefix for subject caches (subjects:{branch-regulation-year-semester})
	PrefixSubjects = "subjects:"

	// PrefixSubBranches is the prefix for sub-branch caches (subBranches:{branchID})
	PrefixSubBranches = "subBranches:"

	// PrefixMaterials is the prefix for a subject's material caches (materials:{subjectID})
	PrefixMaterials = "materials:"

	// PrefixMaterial is the prefix for point material lookups (material:{id})
	PrefixMaterial = "material:"

	// PrefixSubject is the prefix for point subject lookups (subject:{id})
	PrefixSubject = "subject:"
)

func SemestersKey(yearID int64) string {
	return PrefixSemesters + strconv.FormatInt(yearID, 10)
}

func SubjectsKey(k domain.SubjectKey) string {
	return PrefixSubjects + k.String()
}

func SubBranchesKey(branchID int64) string {
	return PrefixSubBranches + strconv.FormatInt(branchID, 10)
}

func MaterialsKey(subjectID int64) string {
	return PrefixMaterials + strconv.FormatInt(subjectID, 10)
}

func MaterialByIDKey(id int64) string {
	return PrefixMaterial + strconv.FormatInt(id, 10)
}

func SubjectByIDKey(id int64) string {
	return PrefixSubject + strconv.FormatInt(id, 10)
}
