package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/search"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		local bool
		types []string
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search branches, regulations, subjects and materials",
		Long: `Search the catalogue on the server. If the server is unreachable the
search falls back to whatever this session has cached.

--local skips the server and fuzzy-matches titles and codes of the cached
branches and regulations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			if !local {
				result, fromCache, err := a.search.Search(ctx, query)
				if err != nil {
					return err
				}
				if fromCache {
					a.out.note("Server unreachable, showing cached matches")
				}
				a.out.searchResult(result)
				return nil
			}

			var filter []domain.EntityType
			for _, t := range types {
				typ, err := domain.ParseEntityType(t)
				if err != nil {
					return err
				}
				filter = append(filter, typ)
			}

			// Warm the top levels; failures leave them absent and are logged by the loaders
			_, _ = a.catalog.LoadBranches(ctx, false)
			_, _ = a.catalog.LoadRegulations(ctx, false)

			a.out.searchResult(search.ToSearchResult(query, a.search.FilterLocal(query, filter)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "search cached data only")
	cmd.Flags().StringSliceVar(&types, "type", nil, "restrict local search to these entity types")
	return cmd
}
