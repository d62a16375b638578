package domain

import (
	"fmt"
)

// SubjectKey identifies one subject listing: the subjects of a
// branch/regulation/year/semester combination.
type SubjectKey struct {
	BranchID     int64
	RegulationID int64
	YearID       int64
	SemesterID   int64
}

// String returns the composite form "branchId-regulationId-yearId-semesterId".
func (k SubjectKey) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", k.BranchID, k.RegulationID, k.YearID, k.SemesterID)
}

// Filter converts the key to the API filter that lists its subjects.
func (k SubjectKey) Filter() SubjectFilter {
	return SubjectFilter{
		BranchID:     Int64(k.BranchID),
		RegulationID: Int64(k.RegulationID),
		YearID:       Int64(k.YearID),
		SemesterID:   Int64(k.SemesterID),
	}
}

// ParseSubjectKey parses the composite form produced by String.
func ParseSubjectKey(s string) (SubjectKey, error) {
	var k SubjectKey
	n, err := fmt.Sscanf(s, "%d-%d-%d-%d", &k.BranchID, &k.RegulationID, &k.YearID, &k.SemesterID)
	if err != nil || n != 4 {
		return SubjectKey{}, fmt.Errorf("invalid subject key %q", s)
	}
	return k, nil
}
