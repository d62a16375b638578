package access

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/printandread/shelf/internal/domain"
)

// LastViewedKey holds the material offered under "continue learning".
const LastViewedKey = "lastViewedMaterial"

// Bookmark stores the last material opened, independent of the ranking.
type Bookmark struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
	now    func() time.Time
}

func NewBookmark(kv domain.KeyValueStore, logger *slog.Logger) *Bookmark {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bookmark{kv: kv, logger: logger, now: time.Now}
}

// SaveLastViewed points "continue learning" at m.
func (b *Bookmark) SaveLastViewed(m domain.Material) {
	data, err := json.Marshal(domain.LastViewed{
		ID:        m.ID,
		Title:     m.Title,
		SubjectID: m.SubjectID,
		Timestamp: b.now().UTC(),
	})
	if err != nil {
		b.logger.Warn("failed to encode last viewed material", "error", err)
		return
	}
	if err := b.kv.SetItem(LastViewedKey, string(data)); err != nil {
		b.logger.Warn("failed to save last viewed material", "error", err, "materialID", m.ID)
	}
}

// LastViewed returns the stored pointer. Unreadable data reads as absent.
func (b *Bookmark) LastViewed() (domain.LastViewed, bool) {
	raw, ok, err := b.kv.GetItem(LastViewedKey)
	if err != nil {
		b.logger.Warn("failed to read last viewed material", "error", err)
		return domain.LastViewed{}, false
	}
	if !ok {
		return domain.LastViewed{}, false
	}

	var lv domain.LastViewed
	if err := json.Unmarshal([]byte(raw), &lv); err != nil || lv.ID <= 0 {
		b.logger.Warn("failed to parse last viewed material", "error", err)
		return domain.LastViewed{}, false
	}
	return lv, true
}

func (b *Bookmark) ClearLastViewed() {
	if err := b.kv.RemoveItem(LastViewedKey); err != nil {
		b.logger.Warn("failed to clear last viewed material", "error", err)
	}
}

// MaterialLoader resolves a material by id, from cache or the API.
type MaterialLoader func(ctx context.Context, id int64) (domain.Material, error)

// Resume verifies the stored material still exists. A not-found answer
// clears the pointer; any other failure leaves it for the next attempt.
func (b *Bookmark) Resume(ctx context.Context, load MaterialLoader) (domain.Material, bool, error) {
	lv, ok := b.LastViewed()
	if !ok {
		return domain.Material{}, false, nil
	}

	m, err := load(ctx, lv.ID)
	if errors.Is(err, domain.ErrNotFound) {
		b.logger.Info("last viewed material is gone", "materialID", lv.ID)
		b.ClearLastViewed()
		return domain.Material{}, false, nil
	}
	if err != nil {
		return domain.Material{}, false, err
	}
	return m, true, nil
}
