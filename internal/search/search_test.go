package search

import (
	"context"
	"errors"
	"testing"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
)

func seededStore() *state.Store {
	st := state.NewStore(nil)
	st.Update(func(txn *state.Txn) {
		txn.SetBranches([]domain.Branch{
			{ID: 1, Name: "Computer Science", Code: "CSE"},
			{ID: 2, Name: "Electronics", Code: "ECE"},
		})
		txn.SetSubjects(domain.SubjectKey{BranchID: 1, RegulationID: 1, YearID: 2, SemesterID: 3}, []domain.Subject{
			{ID: 10, Name: "Data Structures", Code: "CS201"},
			{ID: 11, Name: "Database Systems", Code: "CS301"},
		})
		txn.SetMaterials(10, []domain.Material{
			{ID: 100, Title: "Data Structures Unit 1", SubjectID: 10},
			{ID: 101, Title: "Linked lists cheat sheet", SubjectID: 10},
		})
	})
	return st
}

func TestFilterLocalMatchesTitles(t *testing.T) {
	svc := NewService(seededStore(), nil, nil)

	results := svc.FilterLocal("data struct", nil)
	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}
	// The shorter title ranks first among equal matches.
	if results[0].Title != "Data Structures" {
		t.Fatalf("expected Data Structures first, got %q", results[0].Title)
	}
	if len(results[0].MatchedIndexes) == 0 {
		t.Fatal("expected matched indexes for highlighting")
	}
}

func TestFilterLocalByType(t *testing.T) {
	svc := NewService(seededStore(), nil, nil)

	results := svc.FilterLocal("data", []domain.EntityType{domain.EntityMaterial})
	for _, r := range results {
		if r.Type != domain.EntityMaterial {
			t.Fatalf("expected only materials, got %s", r.Type)
		}
	}
	if len(results) != 1 || results[0].Item.GetID() != 100 {
		t.Fatalf("expected material 100, got %+v", results)
	}
}

func TestFilterLocalExactCodeRanksFirst(t *testing.T) {
	svc := NewService(seededStore(), nil, nil)

	results := svc.FilterLocal("cs-301", nil)
	if len(results) == 0 {
		t.Fatal("expected a code match")
	}
	if results[0].Item.GetID() != 11 {
		t.Fatalf("expected subject 11 first, got %d (%q)", results[0].Item.GetID(), results[0].Title)
	}
}

func TestFilterLocalEmpty(t *testing.T) {
	svc := NewService(state.NewStore(nil), nil, nil)
	if got := svc.FilterLocal("anything", nil); got != nil {
		t.Fatalf("expected nil on empty cache, got %+v", got)
	}
	if got := NewService(seededStore(), nil, nil).FilterLocal("  ", nil); got != nil {
		t.Fatalf("expected nil for blank query, got %+v", got)
	}
}

func TestMatchCode(t *testing.T) {
	tests := []struct {
		query string
		code  string
		want  bool
	}{
		{"cs201", "CS201", true},
		{"cs-201", "CS201", true},
		{"cs2", "CS201", true},
		{"ece", "CSE", false},
		{"", "CSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.code, func(t *testing.T) {
			if got := MatchCode(tt.query, tt.code); got != tt.want {
				t.Fatalf("MatchCode(%q, %q) = %v, want %v", tt.query, tt.code, got, tt.want)
			}
		})
	}
}

type stubRemote struct {
	result domain.SearchResult
	err    error
	calls  int
}

func (s *stubRemote) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	s.calls++
	return s.result, s.err
}

func TestSearchPrefersServer(t *testing.T) {
	remote := &stubRemote{result: domain.SearchResult{Query: "x", Branches: []domain.Branch{{ID: 9}}}}
	svc := NewService(seededStore(), remote, nil)

	res, local, err := svc.Search(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if local || len(res.Branches) != 1 || res.Branches[0].ID != 9 {
		t.Fatalf("expected server result, got local=%v %+v", local, res)
	}
}

func TestSearchFallsBackWhenOffline(t *testing.T) {
	remote := &stubRemote{err: domain.ErrServerOffline}
	svc := NewService(seededStore(), remote, nil)

	res, local, err := svc.Search(context.Background(), "electronics")
	if err != nil {
		t.Fatal(err)
	}
	if !local {
		t.Fatal("expected local fallback")
	}
	if len(res.Branches) != 1 || res.Branches[0].Code != "ECE" {
		t.Fatalf("expected ECE from cache, got %+v", res)
	}
}

func TestSearchReturnsOtherErrors(t *testing.T) {
	remote := &stubRemote{err: &domain.APIError{Status: 400, Message: "bad query"}}
	svc := NewService(seededStore(), remote, nil)

	_, _, err := svc.Search(context.Background(), "x")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}
