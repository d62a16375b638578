package state

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/printandread/shelf/internal/domain"
)

// Store owns the current snapshot. Reads are lock-free; writes are
// serialized and each publishes a new snapshot to subscribers.
type Store struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[State]

	subMu  sync.Mutex
	subs   map[int]chan *State
	nextID int

	loadMu  sync.RWMutex
	loading map[string]int

	logger *slog.Logger
}

// NewStore creates a store holding an empty snapshot at version 0.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		subs:    make(map[int]chan *State),
		loading: make(map[string]int),
		logger:  logger,
	}
	s.current.Store(emptyState())
	return s
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *State {
	return s.current.Load()
}

// Update applies fn to a copy of the current snapshot, bumps the version
// and publishes the result. It returns the new snapshot.
func (s *Store) Update(fn func(*Txn)) *State {
	s.mu.Lock()
	prev := s.current.Load()
	txn := newTxn(prev)
	fn(txn)
	next := txn.st
	next.version = prev.version + 1
	s.current.Store(next)
	s.mu.Unlock()

	s.publish()
	return next
}

// Subscribe registers for snapshot updates. The current snapshot is
// delivered immediately. A slow subscriber only ever sees the latest
// snapshot; intermediate ones are dropped. Call cancel to unsubscribe;
// it closes the channel.
func (s *Store) Subscribe() (<-chan *State, func()) {
	ch := make(chan *State, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.current.Load()
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

// publish pushes the newest snapshot, not the caller's, so publishers
// racing after Update never deliver out of order.
func (s *Store) publish() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	st := s.current.Load()
	for _, ch := range s.subs {
		select {
		case <-ch: // drop the undelivered older snapshot
		default:
		}
		ch <- st
	}
}

// SetLoading marks a fetch for key as started (true) or finished (false).
// Calls nest: overlapping fetches of one key keep it loading until the
// last one finishes.
func (s *Store) SetLoading(key string, loading bool) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if loading {
		s.loading[key]++
		return
	}
	if s.loading[key] <= 1 {
		delete(s.loading, key)
		return
	}
	s.loading[key]--
}

// IsLoading reports whether a fetch for key is in flight.
func (s *Store) IsLoading(key string) bool {
	s.loadMu.RLock()
	defer s.loadMu.RUnlock()
	return s.loading[key] > 0
}

// AddMaterial indexes m and appends it to its subject's cached list if present.
func (s *Store) AddMaterial(m domain.Material) {
	s.Update(func(t *Txn) { t.AppendMaterial(m) })
}

// AddSubject indexes s by ID.
func (s *Store) AddSubject(sub domain.Subject) {
	s.Update(func(t *Txn) { t.PutSubject(sub) })
}

func (s *Store) ClearSubjects() {
	s.Update(func(t *Txn) { t.ClearSubjects() })
	s.logger.Debug("cleared subject listings")
}

func (s *Store) ClearMaterials() {
	s.Update(func(t *Txn) { t.ClearMaterials() })
	s.logger.Debug("cleared material listings")
}

// Reset discards everything cached. The version keeps increasing.
func (s *Store) Reset() {
	s.Update(func(t *Txn) { t.Reset() })
	s.logger.Debug("reset catalogue cache")
}

func (s *Store) InvalidateBranches() {
	s.Update(func(t *Txn) { t.InvalidateBranches() })
}

func (s *Store) InvalidateRegulations() {
	s.Update(func(t *Txn) { t.InvalidateRegulations() })
}

func (s *Store) InvalidateYears() {
	s.Update(func(t *Txn) { t.InvalidateYears() })
}
