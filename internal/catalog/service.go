// Package catalog loads the study-material hierarchy through the
// in-memory cache. Service reads through to the catalogue API on a miss
// and writes results back; Queries reads the cache only.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/metrics"
	"github.com/printandread/shelf/internal/state"
)

// Service orchestrates API client + cache operations.
// Implements domain.CatalogLoaders.
type Service struct {
	client domain.Fetcher
	store  *state.Store
	logger *slog.Logger
	group  *singleflight.Group // nil unless in-flight dedup is enabled
}

// Option configures a Service.
type Option func(*Service)

// WithDedupe collapses concurrent misses on the same cache key into one
// API call. Callers joining a call in flight share the first caller's
// context and result.
func WithDedupe() Option {
	return func(s *Service) { s.group = &singleflight.Group{} }
}

// NewService creates a new catalogue service.
func NewService(client domain.Fetcher, store *state.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{client: client, store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readThrough serves key from the snapshot unless force is set or the
// entry is absent. On a miss it fetches, writes the full result under
// key and returns it. A failed fetch leaves the snapshot untouched.
//
// The check and the fetch are not atomic: without dedup, overlapping
// misses each fetch and the last to finish wins.
func readThrough[T any](
	ctx context.Context,
	s *Service,
	key, collection string,
	force bool,
	cached func(*state.State) (T, bool),
	fetch func(context.Context) (T, error),
	write func(*state.Txn, T),
) (T, error) {
	if !force {
		if v, ok := cached(s.store.Snapshot()); ok {
			metrics.CacheHits.WithLabelValues(collection).Inc()
			s.logger.Debug("cache hit", "key", key)
			return v, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(collection).Inc()

	load := func() (T, error) {
		s.store.SetLoading(key, true)
		defer s.store.SetLoading(key, false)

		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		snap := s.store.Update(func(txn *state.Txn) { write(txn, v) })
		metrics.CacheVersion.Set(float64(snap.Version()))
		return v, nil
	}

	var (
		v   T
		err error
	)
	if s.group == nil {
		v, err = load()
	} else {
		var shared any
		shared, err, _ = s.group.Do(key, func() (any, error) { return load() })
		if err == nil {
			v = shared.(T)
		}
	}
	if err != nil {
		s.logger.Error("failed to load "+collection, "key", key, "error", err)
		var zero T
		return zero, fmt.Errorf("load %s: %w", key, err)
	}
	s.logger.Debug("loaded", "key", key)
	return v, nil
}

func (s *Service) LoadBranches(ctx context.Context, force bool) ([]domain.Branch, error) {
	return readThrough(ctx, s, state.KeyBranches, "branches", force,
		(*state.State).Branches,
		s.client.FetchBranches,
		(*state.Txn).SetBranches,
	)
}

func (s *Service) LoadRegulations(ctx context.Context, force bool) ([]domain.Regulation, error) {
	return readThrough(ctx, s, state.KeyRegulations, "regulations", force,
		(*state.State).Regulations,
		s.client.FetchRegulations,
		(*state.Txn).SetRegulations,
	)
}

func (s *Service) LoadYears(ctx context.Context, force bool) ([]domain.Year, error) {
	return readThrough(ctx, s, state.KeyYears, "years", force,
		(*state.State).Years,
		s.client.FetchYears,
		(*state.Txn).SetYears,
	)
}

func (s *Service) LoadSemesters(ctx context.Context, yearID int64, force bool) ([]domain.Semester, error) {
	return readThrough(ctx, s, state.SemestersKey(yearID), "semesters", force,
		func(st *state.State) ([]domain.Semester, bool) { return st.Semesters(yearID) },
		func(ctx context.Context) ([]domain.Semester, error) {
			return s.client.FetchSemestersByYear(ctx, yearID)
		},
		func(txn *state.Txn, v []domain.Semester) { txn.SetSemesters(yearID, v) },
	)
}

func (s *Service) LoadSubjects(ctx context.Context, key domain.SubjectKey, force bool) ([]domain.Subject, error) {
	return readThrough(ctx, s, state.SubjectsKey(key), "subjects", force,
		func(st *state.State) ([]domain.Subject, bool) { return st.Subjects(key) },
		func(ctx context.Context) ([]domain.Subject, error) {
			return s.client.FetchSubjectsFiltered(ctx, key.Filter())
		},
		func(txn *state.Txn, v []domain.Subject) { txn.SetSubjects(key, v) },
	)
}

func (s *Service) LoadSubBranches(ctx context.Context, branchID int64, force bool) ([]domain.SubBranch, error) {
	return readThrough(ctx, s, state.SubBranchesKey(branchID), "subBranches", force,
		func(st *state.State) ([]domain.SubBranch, bool) { return st.SubBranches(branchID) },
		func(ctx context.Context) ([]domain.SubBranch, error) {
			return s.client.FetchSubBranches(ctx, &branchID)
		},
		func(txn *state.Txn, v []domain.SubBranch) { txn.SetSubBranches(branchID, v) },
	)
}

func (s *Service) LoadMaterials(ctx context.Context, subjectID int64, force bool) ([]domain.Material, error) {
	return readThrough(ctx, s, state.MaterialsKey(subjectID), "materials", force,
		func(st *state.State) ([]domain.Material, bool) { return st.Materials(subjectID) },
		func(ctx context.Context) ([]domain.Material, error) {
			return s.client.FetchMaterialsBySubject(ctx, subjectID)
		},
		func(txn *state.Txn, v []domain.Material) { txn.SetMaterials(subjectID, v) },
	)
}

func (s *Service) LoadMaterialByID(ctx context.Context, id int64, force bool) (domain.Material, error) {
	return readThrough(ctx, s, state.MaterialByIDKey(id), "material", force,
		func(st *state.State) (domain.Material, bool) { return st.MaterialByID(id) },
		func(ctx context.Context) (domain.Material, error) {
			return s.client.FetchMaterialByID(ctx, id)
		},
		(*state.Txn).PutMaterial,
	)
}

func (s *Service) LoadSubjectByID(ctx context.Context, id int64, force bool) (domain.Subject, error) {
	return readThrough(ctx, s, state.SubjectByIDKey(id), "subject", force,
		func(st *state.State) (domain.Subject, bool) { return st.SubjectByID(id) },
		func(ctx context.Context) (domain.Subject, error) {
			return s.client.FetchSubjectByID(ctx, id)
		},
		(*state.Txn).PutSubject,
	)
}

// RecentMaterials always fetches; results enrich the material index.
func (s *Service) RecentMaterials(ctx context.Context, limit int) ([]domain.Material, error) {
	materials, err := s.client.FetchRecentMaterials(ctx, limit)
	if err != nil {
		s.logger.Error("failed to fetch recent materials", "error", err, "limit", limit)
		return nil, fmt.Errorf("fetch recent materials: %w", err)
	}
	s.indexMaterials(materials)
	s.logger.Debug("fetched recent materials", "count", len(materials))
	return materials, nil
}

// FilterSubjects fetches subjects for an arbitrary filter. Partial filters
// have no listing of their own; results only enrich the subject index.
func (s *Service) FilterSubjects(ctx context.Context, filter domain.SubjectFilter) ([]domain.Subject, error) {
	subjects, err := s.client.FetchSubjectsFiltered(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch subjects", "error", err)
		return nil, fmt.Errorf("fetch subjects: %w", err)
	}
	s.indexSubjects(subjects)
	return subjects, nil
}

// AllSubBranches fetches every sub-branch without caching the result.
func (s *Service) AllSubBranches(ctx context.Context) ([]domain.SubBranch, error) {
	subBranches, err := s.client.FetchSubBranches(ctx, nil)
	if err != nil {
		s.logger.Error("failed to fetch sub-branches", "error", err)
		return nil, fmt.Errorf("fetch sub-branches: %w", err)
	}
	return subBranches, nil
}

func (s *Service) indexMaterials(materials []domain.Material) {
	if len(materials) == 0 {
		return
	}
	s.store.Update(func(txn *state.Txn) {
		for _, m := range materials {
			txn.PutMaterial(m)
		}
	})
}

func (s *Service) indexSubjects(subjects []domain.Subject) {
	if len(subjects) == 0 {
		return
	}
	s.store.Update(func(txn *state.Txn) {
		for _, sub := range subjects {
			txn.PutSubject(sub)
		}
	})
}
