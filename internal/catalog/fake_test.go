package catalog

import (
	"context"
	"sync"

	"github.com/printandread/shelf/internal/domain"
)

// fakeFetcher serves canned data and counts calls per operation.
// When gate is set, FetchBranches signals started and waits for gate
// to close before returning.
type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int

	branches  []domain.Branch
	years     []domain.Year
	yearsErr  error
	subjects  []domain.Subject
	materials []domain.Material
	material  domain.Material
	search    domain.SearchResult
	createErr error

	gate    chan struct{}
	started chan struct{}

	lastFilter domain.SubjectFilter
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int)}
}

func (f *fakeFetcher) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeFetcher) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeFetcher) FetchBranches(ctx context.Context) ([]domain.Branch, error) {
	f.record("branches")
	if f.gate != nil {
		f.started <- struct{}{}
		<-f.gate
	}
	return f.branches, nil
}

func (f *fakeFetcher) FetchRegulations(ctx context.Context) ([]domain.Regulation, error) {
	f.record("regulations")
	return []domain.Regulation{{ID: 1, Code: "R22", StartYear: 2022}}, nil
}

func (f *fakeFetcher) FetchYears(ctx context.Context) ([]domain.Year, error) {
	f.record("years")
	if f.yearsErr != nil {
		return nil, f.yearsErr
	}
	return f.years, nil
}

func (f *fakeFetcher) FetchSemestersByYear(ctx context.Context, yearID int64) ([]domain.Semester, error) {
	f.record("semesters")
	return []domain.Semester{{ID: yearID*2 - 1, YearID: yearID}, {ID: yearID * 2, YearID: yearID}}, nil
}

func (f *fakeFetcher) FetchSubjectsFiltered(ctx context.Context, filter domain.SubjectFilter) ([]domain.Subject, error) {
	f.record("subjects")
	f.mu.Lock()
	f.lastFilter = filter
	f.mu.Unlock()
	return f.subjects, nil
}

func (f *fakeFetcher) FetchSubjectByID(ctx context.Context, id int64) (domain.Subject, error) {
	f.record("subject")
	for _, s := range f.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Subject{}, domain.ErrNotFound
}

func (f *fakeFetcher) FetchMaterialsBySubject(ctx context.Context, subjectID int64) ([]domain.Material, error) {
	f.record("materials")
	return f.materials, nil
}

func (f *fakeFetcher) FetchMaterialByID(ctx context.Context, id int64) (domain.Material, error) {
	f.record("material")
	if f.material.ID != id {
		return domain.Material{}, domain.ErrNotFound
	}
	return f.material, nil
}

func (f *fakeFetcher) FetchRecentMaterials(ctx context.Context, limit int) ([]domain.Material, error) {
	f.record("recent")
	return f.materials, nil
}

func (f *fakeFetcher) FetchSubBranches(ctx context.Context, branchID *int64) ([]domain.SubBranch, error) {
	f.record("subBranches")
	return []domain.SubBranch{{ID: 1, Code: "CSE-AIML"}}, nil
}

func (f *fakeFetcher) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	f.record("search")
	return f.search, nil
}

func (f *fakeFetcher) CreateBranch(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	f.record("createBranch")
	if f.createErr != nil {
		return domain.Branch{}, f.createErr
	}
	return domain.Branch{ID: 99, Name: req.Name, Code: req.Code}, nil
}

func (f *fakeFetcher) CreateRegulation(ctx context.Context, req domain.CreateRegulationRequest) (domain.Regulation, error) {
	f.record("createRegulation")
	return domain.Regulation{ID: 7, Name: req.Name, Code: req.Code, StartYear: req.StartYear}, nil
}

func (f *fakeFetcher) CreateSubject(ctx context.Context, req domain.CreateSubjectRequest) (domain.Subject, error) {
	f.record("createSubject")
	return domain.Subject{ID: 50, Name: req.Name, Code: req.Code, RegulationID: req.RegulationID}, nil
}

func (f *fakeFetcher) UploadMaterial(ctx context.Context, req domain.UploadMaterialRequest) (domain.Material, error) {
	f.record("upload")
	return domain.Material{ID: 300, Title: req.Title, MaterialType: req.MaterialType}, nil
}

var _ domain.Fetcher = (*fakeFetcher)(nil)
