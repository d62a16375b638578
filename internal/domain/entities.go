package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Branch is the top level of the catalogue (e.g. "CSE").
type Branch struct {
	ID   int64
	Name string
	Code string
}

func (b Branch) GetID() int64           { return b.ID }
func (b Branch) GetTitle() string       { return b.Name }
func (b Branch) GetDescription() string { return b.Code }
func (b Branch) GetItemType() string    { return "branch" }
func (b Branch) CanDrillDown() bool     { return true }

// Regulation is a syllabus revision a branch is studied under (e.g. "R22").
type Regulation struct {
	ID          int64
	Name        string
	Code        string
	StartYear   int
	EndYear     *int // nil while the regulation is still active
	Description string
}

// Active reports whether the regulation has no end year.
func (r Regulation) Active() bool {
	return r.EndYear == nil
}

// Span returns "2022-2026" or "2022-present".
func (r Regulation) Span() string {
	if r.EndYear == nil {
		return fmt.Sprintf("%d-present", r.StartYear)
	}
	return fmt.Sprintf("%d-%d", r.StartYear, *r.EndYear)
}

func (r Regulation) GetID() int64     { return r.ID }
func (r Regulation) GetTitle() string { return r.Name }
func (r Regulation) GetDescription() string {
	return r.Code + " · " + r.Span()
}
func (r Regulation) GetItemType() string { return "regulation" }
func (r Regulation) CanDrillDown() bool  { return true }

// Year is an academic year level (1-4).
type Year struct {
	ID         int64
	YearNumber int
}

func (y Year) GetID() int64           { return y.ID }
func (y Year) GetTitle() string       { return "Year " + strconv.Itoa(y.YearNumber) }
func (y Year) GetDescription() string { return "" }
func (y Year) GetItemType() string    { return "year" }
func (y Year) CanDrillDown() bool     { return true }

// Semester belongs to a year; semesters are numbered 1-8 across all years.
type Semester struct {
	ID          int64
	SemNumber   int
	DisplayName string
	YearID      int64
	YearNumber  int
}

func (s Semester) GetID() int64 { return s.ID }
func (s Semester) GetTitle() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return "Semester " + strconv.Itoa(s.SemNumber)
}
func (s Semester) GetDescription() string { return "Year " + strconv.Itoa(s.YearNumber) }
func (s Semester) GetItemType() string    { return "semester" }
func (s Semester) CanDrillDown() bool     { return true }

// SubBranch is a specialisation within a branch (e.g. "CSE-AIML").
type SubBranch struct {
	ID         int64
	Name       string
	Code       string
	BranchID   int64
	BranchCode string
	BranchName string
}

// Subject is a course taught in one semester of one regulation.
type Subject struct {
	ID                  int64
	Name                string
	Code                string
	BranchCode          string
	BranchName          string
	RegulationID        int64
	RegulationCode      string
	RegulationName      string
	YearNumber          int
	SemNumber           int
	SemesterDisplayName string
	SubBranchID         *int64
	SubBranchCode       string
	SubBranchName       string
	MaterialCount       int
}

func (s Subject) GetID() int64     { return s.ID }
func (s Subject) GetTitle() string { return s.Name }
func (s Subject) GetDescription() string {
	switch s.MaterialCount {
	case 0:
		return s.Code
	case 1:
		return s.Code + " · 1 material"
	default:
		return fmt.Sprintf("%s · %d materials", s.Code, s.MaterialCount)
	}
}
func (s Subject) GetItemType() string { return "subject" }
func (s Subject) CanDrillDown() bool  { return true }

// Material is the leaf content item: an uploaded document.
type Material struct {
	ID           int64
	Title        string
	MaterialType string // "notes", "pyq", "assignment", ...
	URL          string
	UploadedOn   time.Time
	SubjectName  string
	SubjectID    int64
}

func (m Material) GetID() int64     { return m.ID }
func (m Material) GetTitle() string { return m.Title }
func (m Material) GetDescription() string {
	if m.UploadedOn.IsZero() {
		return m.MaterialType
	}
	return m.MaterialType + " · " + m.UploadedOn.Format("2006-01-02")
}
func (m Material) GetItemType() string { return "material" }
func (m Material) CanDrillDown() bool  { return false }

// SubjectFilter narrows a subject listing. Nil fields are not sent.
type SubjectFilter struct {
	BranchID     *int64
	RegulationID *int64
	SubBranchID  *int64
	YearID       *int64
	SemesterID   *int64
}

// SearchResult is the server-side search response.
type SearchResult struct {
	Query       string
	Subjects    []Subject
	Materials   []Material
	Branches    []Branch
	Regulations []Regulation
}

// Empty reports whether nothing matched.
func (r SearchResult) Empty() bool {
	return len(r.Subjects) == 0 && len(r.Materials) == 0 &&
		len(r.Branches) == 0 && len(r.Regulations) == 0
}

// Int64 returns a pointer to v, for optional ids.
func Int64(v int64) *int64 {
	return &v
}
