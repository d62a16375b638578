package state

import (
	"testing"

	"github.com/printandread/shelf/internal/domain"
)

func TestFlatCollectionPresence(t *testing.T) {
	s := NewStore(nil)

	if _, ok := s.Snapshot().Years(); ok {
		t.Fatal("expected years absent before any load")
	}

	s.Update(func(txn *Txn) { txn.SetYears([]domain.Year{}) })

	years, ok := s.Snapshot().Years()
	if !ok {
		t.Fatal("expected years present after loading an empty list")
	}
	if len(years) != 0 {
		t.Fatalf("expected 0 years, got %d", len(years))
	}
}

func TestUpdateLeavesOldSnapshotUntouched(t *testing.T) {
	s := NewStore(nil)
	s.Update(func(txn *Txn) {
		txn.SetMaterials(7, []domain.Material{{ID: 1, Title: "Unit 1", SubjectID: 7}})
	})
	before := s.Snapshot()

	s.Update(func(txn *Txn) {
		txn.SetMaterials(7, []domain.Material{{ID: 2, Title: "Unit 2", SubjectID: 7}})
		txn.SetSemesters(1, []domain.Semester{{ID: 10, SemNumber: 1}})
	})
	after := s.Snapshot()

	got, _ := before.Materials(7)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("old snapshot changed: %+v", got)
	}
	if _, ok := before.Semesters(1); ok {
		t.Fatal("old snapshot gained a semester entry")
	}
	if after.Version() != before.Version()+1 {
		t.Fatalf("expected version %d, got %d", before.Version()+1, after.Version())
	}

	// Point index only grows.
	if _, ok := after.MaterialByID(1); !ok {
		t.Fatal("expected material 1 to stay indexed after list replacement")
	}
	if _, ok := after.MaterialByID(2); !ok {
		t.Fatal("expected material 2 indexed")
	}
}

func TestSetSubjectsIndexesByID(t *testing.T) {
	s := NewStore(nil)
	key := domain.SubjectKey{BranchID: 1, RegulationID: 2, YearID: 3, SemesterID: 4}
	s.Update(func(txn *Txn) {
		txn.SetSubjects(key, []domain.Subject{{ID: 42, Name: "Data Structures"}})
	})

	sub, ok := s.Snapshot().SubjectByID(42)
	if !ok || sub.Name != "Data Structures" {
		t.Fatalf("expected subject 42 indexed, got %+v (ok=%v)", sub, ok)
	}
	if _, ok := s.Snapshot().Subjects(domain.SubjectKey{BranchID: 1}); ok {
		t.Fatal("expected a different key to be absent")
	}
}

func TestAddMaterial(t *testing.T) {
	tests := []struct {
		name     string
		seed     []domain.Material
		seeded   bool
		add      domain.Material
		wantList int
	}{
		{
			name:     "appends to loaded list",
			seed:     []domain.Material{{ID: 1, SubjectID: 5}},
			seeded:   true,
			add:      domain.Material{ID: 2, SubjectID: 5},
			wantList: 2,
		},
		{
			name:     "skips duplicate",
			seed:     []domain.Material{{ID: 1, SubjectID: 5}},
			seeded:   true,
			add:      domain.Material{ID: 1, SubjectID: 5},
			wantList: 1,
		},
		{
			name:     "does not create list",
			add:      domain.Material{ID: 3, SubjectID: 5},
			wantList: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil)
			if tt.seeded {
				s.Update(func(txn *Txn) { txn.SetMaterials(5, tt.seed) })
			}
			before := s.Snapshot()

			s.AddMaterial(tt.add)

			snap := s.Snapshot()
			if _, ok := snap.MaterialByID(tt.add.ID); !ok {
				t.Fatal("expected material indexed")
			}
			list, ok := snap.Materials(5)
			if tt.wantList < 0 {
				if ok {
					t.Fatal("expected no list to be created")
				}
				return
			}
			if len(list) != tt.wantList {
				t.Fatalf("expected %d materials, got %d", tt.wantList, len(list))
			}
			old, _ := before.Materials(5)
			if len(old) != len(tt.seed) {
				t.Fatalf("old snapshot changed: %d entries", len(old))
			}
		})
	}
}

func TestClearers(t *testing.T) {
	s := NewStore(nil)
	key := domain.SubjectKey{BranchID: 1, RegulationID: 1, YearID: 1, SemesterID: 1}
	s.Update(func(txn *Txn) {
		txn.SetBranches([]domain.Branch{{ID: 1, Code: "CSE"}})
		txn.SetSubjects(key, []domain.Subject{{ID: 9}})
		txn.SetMaterials(9, []domain.Material{{ID: 3, SubjectID: 9}})
	})

	s.ClearSubjects()
	snap := s.Snapshot()
	if _, ok := snap.Subjects(key); ok {
		t.Fatal("expected subject listing cleared")
	}
	if _, ok := snap.SubjectByID(9); !ok {
		t.Fatal("expected subject index kept")
	}

	s.ClearMaterials()
	snap = s.Snapshot()
	if _, ok := snap.Materials(9); ok {
		t.Fatal("expected material listing cleared")
	}
	if _, ok := snap.MaterialByID(3); ok {
		t.Fatal("expected material index cleared")
	}

	s.InvalidateBranches()
	if _, ok := s.Snapshot().Branches(); ok {
		t.Fatal("expected branches invalidated")
	}

	v := s.Snapshot().Version()
	s.Reset()
	snap = s.Snapshot()
	if snap.Version() != v+1 {
		t.Fatalf("expected version %d after reset, got %d", v+1, snap.Version())
	}
	if _, ok := snap.SubjectByID(9); ok {
		t.Fatal("expected reset to drop the subject index")
	}
}

func TestSubscribeDeliversLatest(t *testing.T) {
	s := NewStore(nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	if first.Version() != 0 {
		t.Fatalf("expected initial snapshot version 0, got %d", first.Version())
	}

	// Nobody reads while three updates land; only the last survives.
	for i := 0; i < 3; i++ {
		s.InvalidateYears()
	}

	got := <-ch
	if got.Version() != 3 {
		t.Fatalf("expected version 3, got %d", got.Version())
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected empty mailbox, got version %d", extra.Version())
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := NewStore(nil)
	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic.
	s.InvalidateBranches()
}

func TestLoadingFlags(t *testing.T) {
	s := NewStore(nil)
	key := MaterialsKey(4)

	if s.IsLoading(key) {
		t.Fatal("expected not loading")
	}
	s.SetLoading(key, true)
	s.SetLoading(key, true)
	if !s.IsLoading(key) {
		t.Fatal("expected loading")
	}
	s.SetLoading(key, false)
	if !s.IsLoading(key) {
		t.Fatal("expected loading while a second fetch is in flight")
	}
	s.SetLoading(key, false)
	if s.IsLoading(key) {
		t.Fatal("expected loading cleared")
	}
}
