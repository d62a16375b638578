// Package search filters the cached catalogue locally and falls back to
// it when the server-side search is unavailable.
package search

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
)

// codeMatchScore bounds title scores: exact code hits rank above every
// title match and fuzzy code hits below.
const codeMatchScore = 1000

// FilterItem represents a searchable cached entity
type FilterItem struct {
	Item  domain.ListItem
	Title string
	Code  string
	Type  domain.EntityType
}

// FilterResult represents a search result with match metadata
type FilterResult struct {
	FilterItem
	MatchedIndexes []int // title positions, for highlighting
	Score          int   // higher is better
}

// filterIndex implements sahilm/fuzzy.Source over lower-cased titles.
type filterIndex struct {
	items       []FilterItem
	lowerTitles []string
}

func (idx *filterIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx *filterIndex) Len() int            { return len(idx.items) }

// Service handles fuzzy search over the cache snapshot.
type Service struct {
	store  *state.Store
	remote domain.SearchClient
	logger *slog.Logger
}

// NewService creates a new search service. remote may be nil for
// local-only filtering.
func NewService(store *state.Store, remote domain.SearchClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, remote: remote, logger: logger}
}

// Search asks the server first. When the server is unreachable it
// answers from the cache instead and reports local=true.
func (s *Service) Search(ctx context.Context, query string) (result domain.SearchResult, local bool, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{}, false, nil
	}

	if s.remote != nil {
		result, err = s.remote.Search(ctx, query)
		if err == nil {
			return result, false, nil
		}
		if !errors.Is(err, domain.ErrServerOffline) {
			return domain.SearchResult{}, false, err
		}
		s.logger.Warn("server search failed, falling back to local", "error", err)
	}

	return ToSearchResult(query, s.FilterLocal(query, nil)), true, nil
}

// FilterLocal searches cached data directly.
// types: filter by entity types (nil = all types)
func (s *Service) FilterLocal(query string, types []domain.EntityType) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	idx := gatherItems(s.store.Snapshot(), types)
	if idx.Len() == 0 {
		return nil
	}

	byIndex := make(map[int]FilterResult)
	for _, m := range fuzzy.FindFrom(strings.ToLower(query), idx) {
		byIndex[m.Index] = FilterResult{
			FilterItem:     idx.items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	// Codes: an exact hit ranks first, a fuzzy hit only fills in below titles.
	q := normalizeCode(query)
	codes := make([]string, len(idx.items))
	for i, item := range idx.items {
		codes[i] = normalizeCode(item.Code)
	}
	for _, r := range fuzzysearch.RankFindFold(q, codes) {
		i := r.OriginalIndex
		if codes[i] == "" {
			continue
		}
		prev, matched := byIndex[i]
		switch {
		case strings.EqualFold(codes[i], q):
			prev.Score = codeMatchScore
		case matched:
			continue
		default:
			prev.Score = -codeMatchScore - r.Distance
		}
		prev.FilterItem = idx.items[i]
		byIndex[i] = prev
	}

	results := make([]FilterResult, 0, len(byIndex))
	for _, r := range byIndex {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b FilterResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.Title), len(b.Title)); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.GetID(), b.Item.GetID())
	})

	s.logger.Debug("filtered cache", "query", query, "candidates", idx.Len(), "results", len(results))
	return results
}

// MatchCode reports whether query fuzzily matches a code such as "CS201",
// ignoring case and separators ("cs-201", "cs 201").
func MatchCode(query, code string) bool {
	q := normalizeCode(query)
	if q == "" {
		return false
	}
	return fuzzysearch.MatchFold(q, normalizeCode(code))
}

func normalizeCode(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.', '/':
			return -1
		}
		return r
	}, s)
}

// ToSearchResult groups local results the way the server reports them.
func ToSearchResult(query string, results []FilterResult) domain.SearchResult {
	out := domain.SearchResult{Query: query}
	for _, r := range results {
		switch v := r.Item.(type) {
		case domain.Branch:
			out.Branches = append(out.Branches, v)
		case domain.Regulation:
			out.Regulations = append(out.Regulations, v)
		case domain.Subject:
			out.Subjects = append(out.Subjects, v)
		case domain.Material:
			out.Materials = append(out.Materials, v)
		}
	}
	return out
}

// gatherItems collects cached entities in a stable order: by type, then id.
func gatherItems(st *state.State, types []domain.EntityType) *filterIndex {
	allowed := func(t domain.EntityType) bool {
		return len(types) == 0 || slices.Contains(types, t)
	}

	idx := &filterIndex{}
	add := func(item domain.ListItem, code string, t domain.EntityType) {
		idx.items = append(idx.items, FilterItem{Item: item, Title: item.GetTitle(), Code: code, Type: t})
		idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(item.GetTitle()))
	}

	if allowed(domain.EntityMaterial) {
		materials := st.IndexedMaterials()
		slices.SortFunc(materials, func(a, b domain.Material) int { return cmp.Compare(a.ID, b.ID) })
		for _, m := range materials {
			add(m, "", domain.EntityMaterial)
		}
	}
	if allowed(domain.EntityBranch) {
		if branches, ok := st.Branches(); ok {
			for _, b := range branches {
				add(b, b.Code, domain.EntityBranch)
			}
		}
	}
	if allowed(domain.EntityRegulation) {
		if regs, ok := st.Regulations(); ok {
			for _, r := range regs {
				add(r, r.Code, domain.EntityRegulation)
			}
		}
	}
	if allowed(domain.EntitySubject) {
		subjects := st.IndexedSubjects()
		slices.SortFunc(subjects, func(a, b domain.Subject) int { return cmp.Compare(a.ID, b.ID) })
		for _, sub := range subjects {
			add(sub, sub.Code, domain.EntitySubject)
		}
	}
	return idx
}
