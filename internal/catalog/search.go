package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
)

// Search runs a server-side search. A blank query matches nothing and
// is not sent. Matched subjects and materials enrich the point indexes.
func (s *Service) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{}, nil
	}

	result, err := s.client.Search(ctx, query)
	if err != nil {
		s.logger.Error("failed to search", "error", err, "query", query)
		return domain.SearchResult{}, fmt.Errorf("search %q: %w", query, err)
	}

	if len(result.Subjects) > 0 || len(result.Materials) > 0 {
		s.store.Update(func(txn *state.Txn) {
			for _, sub := range result.Subjects {
				txn.PutSubject(sub)
			}
			for _, m := range result.Materials {
				txn.PutMaterial(m)
			}
		})
	}
	s.logger.Debug("searched", "query", query,
		"subjects", len(result.Subjects), "materials", len(result.Materials))
	return result, nil
}
