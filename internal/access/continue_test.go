package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/store"
)

func TestLastViewedRoundTrip(t *testing.T) {
	b := NewBookmark(store.NewMemoryStore(), nil)

	if _, ok := b.LastViewed(); ok {
		t.Fatal("expected no last viewed material")
	}

	b.SaveLastViewed(domain.Material{ID: 12, Title: "Unit 3 notes", SubjectID: 4})

	lv, ok := b.LastViewed()
	if !ok {
		t.Fatal("expected last viewed material")
	}
	if lv.ID != 12 || lv.Title != "Unit 3 notes" || lv.SubjectID != 4 || lv.Timestamp.IsZero() {
		t.Fatalf("unexpected pointer: %+v", lv)
	}

	b.ClearLastViewed()
	if _, ok := b.LastViewed(); ok {
		t.Fatal("expected pointer cleared")
	}
}

func TestLastViewedMalformed(t *testing.T) {
	kv := store.NewMemoryStore()
	if err := kv.SetItem(LastViewedKey, "not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewBookmark(kv, nil).LastViewed(); ok {
		t.Fatal("expected malformed pointer to read as absent")
	}
}

func TestResume(t *testing.T) {
	tests := []struct {
		name     string
		loadErr  error
		wantOK   bool
		wantErr  bool
		wantKept bool
	}{
		{name: "material exists", wantOK: true, wantKept: true},
		{name: "material deleted", loadErr: fmt.Errorf("material 12: %w", domain.ErrNotFound)},
		{name: "server offline", loadErr: domain.ErrServerOffline, wantErr: true, wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBookmark(store.NewMemoryStore(), nil)
			b.SaveLastViewed(domain.Material{ID: 12, Title: "Unit 3 notes", SubjectID: 4})

			load := func(_ context.Context, id int64) (domain.Material, error) {
				if tt.loadErr != nil {
					return domain.Material{}, tt.loadErr
				}
				return domain.Material{ID: id, Title: "Unit 3 notes"}, nil
			}

			m, ok, err := b.Resume(context.Background(), load)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, tt.loadErr) {
				t.Fatalf("expected %v, got %v", tt.loadErr, err)
			}
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && m.ID != 12 {
				t.Fatalf("expected material 12, got %d", m.ID)
			}
			if _, kept := b.LastViewed(); kept != tt.wantKept {
				t.Fatalf("expected pointer kept=%v, got %v", tt.wantKept, kept)
			}
		})
	}
}
