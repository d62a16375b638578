package access

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/store"
)

// stepClock advances one second per call so every access has a distinct time.
func stepClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	opts = append([]Option{WithClock(stepClock())}, opts...)
	return NewTracker(kv, opts...), kv
}

func mustTrack(t *testing.T, tr *Tracker, id int64, name string, typ domain.EntityType) {
	t.Helper()
	if err := tr.TrackAccess(id, name, typ, nil); err != nil {
		t.Fatalf("track %d: %v", id, err)
	}
}

func storedRecords(t *testing.T, kv domain.KeyValueStore) []domain.AccessRecord {
	t.Helper()
	raw, ok, err := kv.GetItem(StorageKey)
	if err != nil || !ok {
		t.Fatalf("expected stored records, got ok=%v err=%v", ok, err)
	}
	var records []domain.AccessRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("decode stored records: %v", err)
	}
	return records
}

func TestTrackAccessMergesByIDAndType(t *testing.T) {
	tr, kv := newTestTracker(t)

	mustTrack(t, tr, 5, "CS", domain.EntityBranch)
	mustTrack(t, tr, 5, "CS-updated", domain.EntityBranch)

	records := storedRecords(t, kv)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != 5 || r.Type != domain.EntityBranch || r.AccessCount != 2 || r.DisplayName != "CS-updated" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestTrackAccessSameIDDifferentType(t *testing.T) {
	tr, kv := newTestTracker(t)

	mustTrack(t, tr, 5, "CSE", domain.EntityBranch)
	mustTrack(t, tr, 5, "Unit 1", domain.EntityMaterial)

	if got := len(storedRecords(t, kv)); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}
}

func TestTrackAccessCountIsMonotonic(t *testing.T) {
	tr, _ := newTestTracker(t)

	for want := 1; want <= 5; want++ {
		mustTrack(t, tr, 9, "Data Structures", domain.EntitySubject)
		typ := domain.EntitySubject
		got, err := tr.GetFrequentlyAccessed(&typ, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].AccessCount != want {
			t.Fatalf("expected count %d, got %+v", want, got)
		}
	}
}

func TestTrackAccessMergesMetadata(t *testing.T) {
	tr, kv := newTestTracker(t)
	code := "CS201"

	if err := tr.TrackAccess(9, "DS", domain.EntitySubject, &domain.AccessMetadata{BranchID: domain.Int64(1)}); err != nil {
		t.Fatal(err)
	}
	if err := tr.TrackAccess(9, "DS", domain.EntitySubject, &domain.AccessMetadata{Code: &code}); err != nil {
		t.Fatal(err)
	}

	m := storedRecords(t, kv)[0].Metadata
	if m == nil || m.BranchID == nil || *m.BranchID != 1 || m.Code == nil || *m.Code != code {
		t.Fatalf("expected merged metadata, got %+v", m)
	}
}

func TestRankingTieBreaksOnRecency(t *testing.T) {
	tr, _ := newTestTracker(t)

	mustTrack(t, tr, 1, "A", domain.EntityMaterial)
	mustTrack(t, tr, 2, "B", domain.EntityMaterial)
	mustTrack(t, tr, 3, "C", domain.EntityMaterial)
	mustTrack(t, tr, 1, "A", domain.EntityMaterial)

	got, err := tr.GetFrequentlyAccessed(nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestPerTypeTruncation(t *testing.T) {
	tr, kv := newTestTracker(t)

	for id := int64(1); id <= 15; id++ {
		mustTrack(t, tr, id, "m", domain.EntityMaterial)
	}

	records := storedRecords(t, kv)
	if len(records) != DefaultMaxItemsPerType {
		t.Fatalf("expected %d records, got %d", DefaultMaxItemsPerType, len(records))
	}
	// All counts are 1, so the ten most recent survive.
	for _, r := range records {
		if r.ID <= 5 {
			t.Fatalf("expected old record %d to be dropped", r.ID)
		}
	}
}

// Flat truncation after fixed-order concatenation: materials come first
// and take the whole total budget, leaving no room for subjects.
func TestTotalCapStarvesLaterTypes(t *testing.T) {
	tr, kv := newTestTracker(t, WithLimits(3, 4))

	mustTrack(t, tr, 100, "DS", domain.EntitySubject)
	mustTrack(t, tr, 200, "CSE", domain.EntityBranch)
	for id := int64(1); id <= 3; id++ {
		mustTrack(t, tr, id, "m", domain.EntityMaterial)
	}

	records := storedRecords(t, kv)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Type == domain.EntitySubject {
			t.Fatal("expected the subject to be starved out")
		}
	}
	if records[3].Type != domain.EntityBranch {
		t.Fatalf("expected branch after materials, got %s", records[3].Type)
	}
}

func TestPersistedListSurvivesNewTracker(t *testing.T) {
	kv := store.NewMemoryStore()
	first := NewTracker(kv, WithClock(stepClock()))
	if err := first.TrackAccess(7, "R22", domain.EntityRegulation, nil); err != nil {
		t.Fatal(err)
	}

	second := NewTracker(kv)
	got, err := second.GetFrequentlyAccessed(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 7 || got[0].DisplayName != "R22" {
		t.Fatalf("expected the record to round-trip, got %+v", got)
	}
}

func TestRecordListRoundTrip(t *testing.T) {
	kv := store.NewMemoryStore()
	tr := NewTracker(kv, WithClock(stepClock()))

	code := "CS201"
	visits := []struct {
		id   int64
		name string
		typ  domain.EntityType
		meta *domain.AccessMetadata
	}{
		{1, "Computer Science", domain.EntityBranch, &domain.AccessMetadata{BranchID: domain.Int64(1)}},
		{7, "R22", domain.EntityRegulation, &domain.AccessMetadata{BranchID: domain.Int64(1), RegulationID: domain.Int64(7)}},
		{5, "Data Structures", domain.EntitySubject, &domain.AccessMetadata{SubjectID: domain.Int64(5), Code: &code}},
		{31, "Unit 1 notes", domain.EntityMaterial, &domain.AccessMetadata{SubjectID: domain.Int64(5), MaterialID: domain.Int64(31)}},
		{31, "Unit 1 notes", domain.EntityMaterial, nil},
		{2, "Electronics", domain.EntityBranch, nil},
	}
	for _, v := range visits {
		if err := tr.TrackAccess(v.id, v.name, v.typ, v.meta); err != nil {
			t.Fatalf("track %d: %v", v.id, err)
		}
	}

	records := tr.Records()
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := decodeRecords(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, records) {
		t.Fatalf("round trip changed the list:\n got %+v\nwant %+v", decoded, records)
	}

	if reopened := NewTracker(kv).Records(); !reflect.DeepEqual(reopened, records) {
		t.Fatalf("persisted list differs:\n got %+v\nwant %+v", reopened, records)
	}
}

func TestMalformedStoreReadsAsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"object", `{"id":1}`},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, kv := newTestTracker(t)
			if err := kv.SetItem(StorageKey, tt.raw); err != nil {
				t.Fatal(err)
			}

			got, err := tr.GetFrequentlyAccessed(nil, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty list, got %d records", len(got))
			}

			// The next write replaces the bad value.
			mustTrack(t, tr, 1, "A", domain.EntityBranch)
			if got := len(storedRecords(t, kv)); got != 1 {
				t.Fatalf("expected 1 record after recovery, got %d", got)
			}
		})
	}
}

func TestDecodeRecordsDropsInvalidEntries(t *testing.T) {
	raw := `[{"id":1,"name":"a","type":"material","accessCount":2},
		{"id":2,"name":"b","type":"video","accessCount":1},
		{"id":3,"name":"c","type":"branch","accessCount":0}]`

	records, err := decodeRecords([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != 1 {
		t.Fatalf("expected only record 1, got %+v", records)
	}
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) SetItem(string, string) error { return errors.New("quota exceeded") }

func TestWriteFailureIsIgnored(t *testing.T) {
	tr := NewTracker(failingStore{store.NewMemoryStore()})

	if err := tr.TrackAccess(1, "A", domain.EntityMaterial, nil); err != nil {
		t.Fatalf("expected write failure to be swallowed, got %v", err)
	}
	got, err := tr.GetFrequentlyAccessed(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(got))
	}
}

func TestInvalidEntityType(t *testing.T) {
	tr, kv := newTestTracker(t)

	err := tr.TrackAccess(1, "A", domain.EntityType("video"), nil)
	if !errors.Is(err, domain.ErrInvalidEntityType) {
		t.Fatalf("expected ErrInvalidEntityType, got %v", err)
	}
	if _, ok, _ := kv.GetItem(StorageKey); ok {
		t.Fatal("expected nothing written")
	}

	bad := domain.EntityType("")
	if _, err := tr.GetFrequentlyAccessed(&bad, 1); !errors.Is(err, domain.ErrInvalidEntityType) {
		t.Fatalf("expected ErrInvalidEntityType, got %v", err)
	}
}

func TestClearTypeAndClearAll(t *testing.T) {
	tr, kv := newTestTracker(t)
	mustTrack(t, tr, 1, "A", domain.EntityMaterial)
	mustTrack(t, tr, 2, "CSE", domain.EntityBranch)

	if err := tr.ClearType(domain.EntityMaterial); err != nil {
		t.Fatal(err)
	}
	records := storedRecords(t, kv)
	if len(records) != 1 || records[0].Type != domain.EntityBranch {
		t.Fatalf("expected only the branch left, got %+v", records)
	}

	tr.ClearAll()
	if _, ok, _ := kv.GetItem(StorageKey); ok {
		t.Fatal("expected key removed")
	}
}

func TestGetGroupedRecords(t *testing.T) {
	tr, _ := newTestTracker(t, WithGroupedLimit(2))
	for id := int64(1); id <= 4; id++ {
		mustTrack(t, tr, id, "m", domain.EntityMaterial)
	}
	mustTrack(t, tr, 10, "CSE", domain.EntityBranch)

	grouped := tr.GetGroupedRecords()
	if got := len(grouped[domain.EntityMaterial]); got != 2 {
		t.Fatalf("expected 2 materials, got %d", got)
	}
	if got := len(grouped[domain.EntityBranch]); got != 1 {
		t.Fatalf("expected 1 branch, got %d", got)
	}
	if got := len(grouped[domain.EntitySubject]); got != 0 {
		t.Fatalf("expected no subjects, got %d", got)
	}
	if grouped[domain.EntityMaterial][0].ID != 4 {
		t.Fatalf("expected most recent material first, got %d", grouped[domain.EntityMaterial][0].ID)
	}
}
