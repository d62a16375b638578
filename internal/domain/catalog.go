package domain

import (
	"context"
	"io"
)

// CatalogQueries: Synchronous, cache-only reads.
// All methods return instantly. NEVER block on network.
// The bool reports whether the entry has been loaded, which is distinct
// from a loaded-but-empty collection.
type CatalogQueries interface {
	CachedBranches() ([]Branch, bool)
	CachedRegulations() ([]Regulation, bool)
	CachedYears() ([]Year, bool)
	CachedSemesters(yearID int64) ([]Semester, bool)
	CachedSubjects(key SubjectKey) ([]Subject, bool)
	CachedSubBranches(branchID int64) ([]SubBranch, bool)
	CachedMaterials(subjectID int64) ([]Material, bool)
	MaterialByID(id int64) (Material, bool)
	SubjectByID(id int64) (Subject, bool)
	IsLoading(key string) bool
}

// CatalogLoaders: read-through operations that may hit the network.
// force=false serves a cached entry without fetching.
type CatalogLoaders interface {
	LoadBranches(ctx context.Context, force bool) ([]Branch, error)
	LoadRegulations(ctx context.Context, force bool) ([]Regulation, error)
	LoadYears(ctx context.Context, force bool) ([]Year, error)
	LoadSemesters(ctx context.Context, yearID int64, force bool) ([]Semester, error)
	LoadSubjects(ctx context.Context, key SubjectKey, force bool) ([]Subject, error)
	LoadSubBranches(ctx context.Context, branchID int64, force bool) ([]SubBranch, error)
	LoadMaterials(ctx context.Context, subjectID int64, force bool) ([]Material, error)
	LoadMaterialByID(ctx context.Context, id int64, force bool) (Material, error)
	LoadSubjectByID(ctx context.Context, id int64, force bool) (Subject, error)
}

// CatalogClient: network reads (implemented by the catalogue API client).
// Every operation is idempotent.
type CatalogClient interface {
	FetchBranches(ctx context.Context) ([]Branch, error)
	FetchRegulations(ctx context.Context) ([]Regulation, error)
	FetchYears(ctx context.Context) ([]Year, error)
	FetchSemestersByYear(ctx context.Context, yearID int64) ([]Semester, error)
	FetchSubjectsFiltered(ctx context.Context, filter SubjectFilter) ([]Subject, error)
	FetchSubjectByID(ctx context.Context, id int64) (Subject, error)
	FetchMaterialsBySubject(ctx context.Context, subjectID int64) ([]Material, error)
	FetchMaterialByID(ctx context.Context, id int64) (Material, error)
	FetchRecentMaterials(ctx context.Context, limit int) ([]Material, error)
	FetchSubBranches(ctx context.Context, branchID *int64) ([]SubBranch, error)
}

// SearchClient provides server-side search.
type SearchClient interface {
	Search(ctx context.Context, query string) (SearchResult, error)
}

// AdminClient: network writes that create catalogue entities.
type AdminClient interface {
	CreateBranch(ctx context.Context, req CreateBranchRequest) (Branch, error)
	CreateRegulation(ctx context.Context, req CreateRegulationRequest) (Regulation, error)
	CreateSubject(ctx context.Context, req CreateSubjectRequest) (Subject, error)
	UploadMaterial(ctx context.Context, req UploadMaterialRequest) (Material, error)
}

// Fetcher combines everything the catalogue API client must implement.
type Fetcher interface {
	CatalogClient
	SearchClient
	AdminClient
}

// CreateBranchRequest creates a branch.
type CreateBranchRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Code string `json:"code" validate:"required,max=20"`
}

// CreateRegulationRequest creates a regulation. The server provisions
// years 1-4 and two semesters per year alongside it.
type CreateRegulationRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Code        string `json:"code" validate:"required,max=20"`
	StartYear   int    `json:"startYear" validate:"required,min=1900,max=2200"`
	EndYear     *int   `json:"endYear,omitempty" validate:"omitempty,gtefield=StartYear"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// CreateSubjectRequest creates a subject under a branch/regulation/year/semester.
type CreateSubjectRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Code         string `json:"code" validate:"required,max=20"`
	BranchID     int64  `json:"branchId" validate:"required,gt=0"`
	RegulationID int64  `json:"regulationId" validate:"required,gt=0"`
	YearID       int64  `json:"yearId" validate:"required,gt=0"`
	SemesterID   int64  `json:"semesterId" validate:"required,gt=0"`
	SubBranchID  *int64 `json:"subBranchId,omitempty" validate:"omitempty,gt=0"`
}

// UploadMaterialRequest is the metadata half of a material upload.
// File carries the document body and is sent as a separate multipart part.
type UploadMaterialRequest struct {
	SubjectID    int64     `json:"subjectId" validate:"required,gt=0"`
	MaterialType string    `json:"materialType" validate:"required,oneof=notes pyq assignment syllabus lab other"`
	Title        string    `json:"title" validate:"required,max=200"`
	FileName     string    `json:"-" validate:"required"`
	File         io.Reader `json:"-" validate:"-"`
}
