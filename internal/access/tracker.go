// Package access keeps the "frequently accessed" ranking and the
// "continue learning" pointer in a durable key/value store.
//
// The persisted list is the only source of truth: every call reads and
// decodes it, so several processes sharing one store see each other's
// writes (last full write wins).
package access

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/metrics"
)

// StorageKey holds the JSON array of access records.
const StorageKey = "frequentlyAccessed"

const (
	DefaultMaxItemsPerType = 10
	DefaultMaxTotalItems   = 30
	DefaultGroupedLimit    = 6
	DefaultQueryLimit      = 6
)

// Tracker maintains the ranked access list.
type Tracker struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
	now    func() time.Time

	maxPerType   int
	maxTotal     int
	groupedLimit int

	mu sync.Mutex // serializes read-modify-write within this process
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLimits sets the per-type and total caps applied on every write.
func WithLimits(perType, total int) Option {
	return func(t *Tracker) {
		if perType > 0 {
			t.maxPerType = perType
		}
		if total > 0 {
			t.maxTotal = total
		}
	}
}

// WithGroupedLimit sets how many records per type GetGroupedRecords returns.
func WithGroupedLimit(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.groupedLimit = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a tracker over kv.
func NewTracker(kv domain.KeyValueStore, opts ...Option) *Tracker {
	t := &Tracker{
		kv:           kv,
		logger:       slog.Default(),
		now:          time.Now,
		maxPerType:   DefaultMaxItemsPerType,
		maxTotal:     DefaultMaxTotalItems,
		groupedLimit: DefaultGroupedLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrackAccess records one visit to (id, typ). An existing record gets its
// count incremented, its timestamp and name refreshed and metadata merged
// into it; otherwise a record with count 1 is added. The list is then
// re-ranked, capped per type in fixed type order, capped in total and
// written back. Storage failures are logged, not returned.
//
// The total cap is applied after concatenating the per-type groups in
// fixed order, so early types can use up the budget and leave later
// types with fewer than their per-type cap.
func (t *Tracker) TrackAccess(id int64, name string, typ domain.EntityType, meta *domain.AccessMetadata) error {
	if !typ.Valid() {
		return fmt.Errorf("track %d: %w: %q", id, domain.ErrInvalidEntityType, typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	records := t.load()
	now := t.now().UTC()

	i := slices.IndexFunc(records, func(r domain.AccessRecord) bool {
		return r.ID == id && r.Type == typ
	})
	if i >= 0 {
		r := &records[i]
		r.AccessCount++
		r.LastAccessedAt = now
		r.DisplayName = name
		r.Metadata = r.Metadata.Merge(meta)
	} else {
		records = append(records, domain.AccessRecord{
			ID:             id,
			DisplayName:    name,
			Type:           typ,
			LastAccessedAt: now,
			AccessCount:    1,
			Metadata:       meta,
		})
	}

	rankRecords(records)

	kept := make([]domain.AccessRecord, 0, len(records))
	for _, et := range domain.EntityTypes {
		kept = append(kept, firstOfType(records, et, t.maxPerType)...)
	}
	if len(kept) > t.maxTotal {
		kept = kept[:t.maxTotal]
	}

	t.save(kept)
	metrics.TrackerAccesses.WithLabelValues(string(typ)).Inc()
	return nil
}

// GetFrequentlyAccessed returns up to limit records ranked by count, then
// recency. A nil typ includes every type; limit <= 0 uses DefaultQueryLimit.
func (t *Tracker) GetFrequentlyAccessed(typ *domain.EntityType, limit int) ([]domain.AccessRecord, error) {
	if typ != nil && !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, *typ)
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	records := t.load()
	rankRecords(records)

	if typ != nil {
		return firstOfType(records, *typ, limit), nil
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetGroupedRecords returns the top records of each type, keyed by type.
func (t *Tracker) GetGroupedRecords() map[domain.EntityType][]domain.AccessRecord {
	records := t.load()
	rankRecords(records)

	grouped := make(map[domain.EntityType][]domain.AccessRecord, len(domain.EntityTypes))
	for _, et := range domain.EntityTypes {
		grouped[et] = firstOfType(records, et, t.groupedLimit)
	}
	return grouped
}

// Records returns the persisted list in stored order.
func (t *Tracker) Records() []domain.AccessRecord {
	return t.load()
}

// ClearAll removes the persisted list.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.kv.RemoveItem(StorageKey); err != nil {
		t.logger.Warn("failed to clear access records", "error", err)
		metrics.TrackerWriteFailures.Inc()
	}
}

// ClearType drops every record of typ and persists the rest.
func (t *Tracker) ClearType(typ domain.EntityType) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	records := slices.DeleteFunc(t.load(), func(r domain.AccessRecord) bool {
		return r.Type == typ
	})
	t.save(records)
	return nil
}

func (t *Tracker) load() []domain.AccessRecord {
	raw, ok, err := t.kv.GetItem(StorageKey)
	if err != nil {
		t.logger.Warn("failed to read access records", "error", err)
		return []domain.AccessRecord{}
	}
	if !ok {
		return []domain.AccessRecord{}
	}

	records, err := decodeRecords([]byte(raw))
	if err != nil {
		t.logger.Warn("failed to parse access records", "error", err)
		metrics.TrackerParseFailures.Inc()
		return []domain.AccessRecord{}
	}
	return records
}

func (t *Tracker) save(records []domain.AccessRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		t.logger.Warn("failed to encode access records", "error", err)
		return
	}
	if err := t.kv.SetItem(StorageKey, string(data)); err != nil {
		t.logger.Warn("failed to save access records", "error", err, "count", len(records))
		metrics.TrackerWriteFailures.Inc()
	}
}

var errNotArray = errors.New("access records are not a JSON array")

// decodeRecords parses a persisted list. Records with an unknown type or
// a non-positive count are dropped rather than failing the whole list.
func decodeRecords(data []byte) ([]domain.AccessRecord, error) {
	var records []domain.AccessRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errNotArray
	}
	return slices.DeleteFunc(records, func(r domain.AccessRecord) bool {
		return !r.Type.Valid() || r.AccessCount < 1
	}), nil
}

// rankRecords sorts by access count, then last access, both descending.
// The sort is stable so equal records keep their stored order.
func rankRecords(records []domain.AccessRecord) {
	slices.SortStableFunc(records, func(a, b domain.AccessRecord) int {
		if c := cmp.Compare(b.AccessCount, a.AccessCount); c != 0 {
			return c
		}
		return b.LastAccessedAt.Compare(a.LastAccessedAt)
	})
}

func firstOfType(records []domain.AccessRecord, typ domain.EntityType, n int) []domain.AccessRecord {
	out := make([]domain.AccessRecord, 0, min(n, len(records)))
	for _, r := range records {
		if len(out) == n {
			break
		}
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}
