package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/printandread/shelf/internal/domain"
)

func TestCreateBranchNormalizesAndInvalidates(t *testing.T) {
	f := newFakeFetcher()
	f.branches = []domain.Branch{{ID: 1, Code: "CSE"}}
	svc, st := newTestService(f)
	ctx := context.Background()

	if _, err := svc.LoadBranches(ctx, false); err != nil {
		t.Fatal(err)
	}

	b, err := svc.CreateBranch(ctx, domain.CreateBranchRequest{Name: "  Electronics ", Code: " ece "})
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "Electronics" || b.Code != "ECE" {
		t.Fatalf("expected trimmed name and upper-case code, got %+v", b)
	}
	if _, ok := st.Snapshot().Branches(); ok {
		t.Fatal("expected branch list invalidated")
	}

	if _, err := svc.LoadBranches(ctx, false); err != nil {
		t.Fatal(err)
	}
	if n := f.count("branches"); n != 2 {
		t.Fatalf("expected a reload after create, got %d fetches", n)
	}
}

func TestCreateRegulationInvalidatesYears(t *testing.T) {
	f := newFakeFetcher()
	f.years = []domain.Year{{ID: 1, YearNumber: 1}}
	svc, st := newTestService(f)
	ctx := context.Background()

	if _, err := svc.LoadYears(ctx, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LoadRegulations(ctx, false); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreateRegulation(ctx, domain.CreateRegulationRequest{Name: "Regulation 2024", Code: "r24", StartYear: 2024}); err != nil {
		t.Fatal(err)
	}
	snap := st.Snapshot()
	if _, ok := snap.Years(); ok {
		t.Fatal("expected years invalidated")
	}
	if _, ok := snap.Regulations(); ok {
		t.Fatal("expected regulations invalidated")
	}
}

func TestCreateSubjectIndexesAndClearsListings(t *testing.T) {
	f := newFakeFetcher()
	f.subjects = []domain.Subject{{ID: 11}}
	svc, st := newTestService(f)
	ctx := context.Background()
	key := domain.SubjectKey{BranchID: 1, RegulationID: 2, YearID: 3, SemesterID: 5}

	if _, err := svc.LoadSubjects(ctx, key, false); err != nil {
		t.Fatal(err)
	}

	sub, err := svc.CreateSubject(ctx, domain.CreateSubjectRequest{
		Name: "Compilers", Code: "cs401", BranchID: 1, RegulationID: 2, YearID: 3, SemesterID: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Code != "CS401" {
		t.Fatalf("expected upper-case code, got %q", sub.Code)
	}

	snap := st.Snapshot()
	if _, ok := snap.Subjects(key); ok {
		t.Fatal("expected subject listings cleared")
	}
	if _, ok := snap.SubjectByID(50); !ok {
		t.Fatal("expected created subject indexed")
	}
}

func TestUploadMaterialAddsToLoadedList(t *testing.T) {
	f := newFakeFetcher()
	f.materials = []domain.Material{{ID: 1, SubjectID: 4}}
	svc, st := newTestService(f)
	ctx := context.Background()

	if _, err := svc.LoadMaterials(ctx, 4, false); err != nil {
		t.Fatal(err)
	}

	m, err := svc.UploadMaterial(ctx, domain.UploadMaterialRequest{
		SubjectID:    4,
		MaterialType: "Notes",
		Title:        " Unit 2 ",
		FileName:     "unit2.PDF",
		File:         strings.NewReader("%PDF-1.4"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Title != "Unit 2" || m.MaterialType != "notes" || m.SubjectID != 4 {
		t.Fatalf("unexpected material: %+v", m)
	}

	list, _ := st.Snapshot().Materials(4)
	if len(list) != 2 {
		t.Fatalf("expected uploaded material appended, got %d entries", len(list))
	}
}

func TestAdminWritesValidateBeforeFetching(t *testing.T) {
	tests := []struct {
		name      string
		call      func(*Service) error
		wantField string
	}{
		{
			name: "branch without code",
			call: func(s *Service) error {
				_, err := s.CreateBranch(context.Background(), domain.CreateBranchRequest{Name: "Civil", Code: "   "})
				return err
			},
			wantField: "code",
		},
		{
			name: "subject without semester",
			call: func(s *Service) error {
				_, err := s.CreateSubject(context.Background(), domain.CreateSubjectRequest{
					Name: "Compilers", Code: "CS401", BranchID: 1, RegulationID: 2, YearID: 3,
				})
				return err
			},
			wantField: "semesterId",
		},
		{
			name: "upload without file",
			call: func(s *Service) error {
				_, err := s.UploadMaterial(context.Background(), domain.UploadMaterialRequest{
					SubjectID: 4, MaterialType: "notes", Title: "Unit 1", FileName: "u1.pdf",
				})
				return err
			},
			wantField: "file",
		},
		{
			name: "upload of a non-PDF",
			call: func(s *Service) error {
				_, err := s.UploadMaterial(context.Background(), domain.UploadMaterialRequest{
					SubjectID: 4, MaterialType: "notes", Title: "Unit 1", FileName: "u1.docx",
					File: strings.NewReader("x"),
				})
				return err
			},
			wantField: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			svc, _ := newTestService(f)

			err := tt.call(svc)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Fatalf("expected field %q, got %v", tt.wantField, err)
			}
			for op, n := range f.calls {
				t.Fatalf("expected no API call, got %d %s", n, op)
			}
		})
	}
}

func TestCreateFailureKeepsCache(t *testing.T) {
	f := newFakeFetcher()
	f.branches = []domain.Branch{{ID: 1, Code: "CSE"}}
	f.createErr = &domain.APIError{Status: 409, Message: "Branch code already exists"}
	svc, st := newTestService(f)
	ctx := context.Background()

	if _, err := svc.LoadBranches(ctx, false); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateBranch(ctx, domain.CreateBranchRequest{Name: "Computer Science", Code: "CSE"})

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 409 {
		t.Fatalf("expected a 409 APIError, got %v", err)
	}
	if _, ok := st.Snapshot().Branches(); !ok {
		t.Fatal("expected branch list kept after a failed create")
	}
}
