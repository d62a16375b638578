package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/access"
	"github.com/printandread/shelf/internal/domain"
)

func newFrequentCommand(a *app) *cobra.Command {
	var (
		typeName string
		limit    int
		grouped  bool
	)
	cmd := &cobra.Command{
		Use:   "frequent",
		Short: "Show the frequently accessed list",
		Long: `Show the frequently accessed list, ranked by visit count and then by
most recent visit.

Examples:
  shelf frequent
  shelf frequent --type subject --limit 3
  shelf frequent --grouped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if grouped {
				groups := a.tracker.GetGroupedRecords()
				for _, typ := range domain.EntityTypes {
					if len(groups[typ]) == 0 {
						continue
					}
					a.out.note("%ss", typ)
					a.out.records(groups[typ])
				}
				return nil
			}

			var typ *domain.EntityType
			if typeName != "" {
				t, err := domain.ParseEntityType(typeName)
				if err != nil {
					return err
				}
				typ = &t
			}
			records, err := a.tracker.GetFrequentlyAccessed(typ, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				a.out.note("Nothing visited yet")
				return nil
			}
			a.out.records(records)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&typeName, "type", "", "material, branch, regulation or subject")
	f.IntVar(&limit, "limit", access.DefaultQueryLimit, "number of records")
	f.BoolVar(&grouped, "grouped", false, "group by type")
	return cmd
}

func newTrackCommand(a *app) *cobra.Command {
	var meta metaFlags
	cmd := &cobra.Command{
		Use:   "track <type> <id> <name>",
		Short: "Record a visit to a catalogue entity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			entityID, err := parseID(args[1], string(typ))
			if err != nil {
				return err
			}
			if err := a.tracker.TrackAccess(entityID, args[2], typ, meta.metadata()); err != nil {
				return err
			}
			a.out.note("Recorded visit to %s %d", typ, entityID)
			return nil
		},
	}
	meta.register(cmd)
	return cmd
}

// metaFlags are the navigation hints accepted by track
type metaFlags struct {
	branch, regulation, year, semester, subject int64
	code                                        string
}

func (m *metaFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&m.branch, "branch", 0, "branch id hint")
	f.Int64Var(&m.regulation, "regulation", 0, "regulation id hint")
	f.Int64Var(&m.year, "year", 0, "year id hint")
	f.Int64Var(&m.semester, "semester", 0, "semester id hint")
	f.Int64Var(&m.subject, "subject", 0, "subject id hint")
	f.StringVar(&m.code, "code", "", "display code hint")
}

// metadata returns nil when no hint was given
func (m *metaFlags) metadata() *domain.AccessMetadata {
	var (
		out domain.AccessMetadata
		set bool
	)
	for _, f := range []struct {
		dst **int64
		v   int64
	}{
		{&out.BranchID, m.branch},
		{&out.RegulationID, m.regulation},
		{&out.YearID, m.year},
		{&out.SemesterID, m.semester},
		{&out.SubjectID, m.subject},
	} {
		if f.v > 0 {
			*f.dst = domain.Int64(f.v)
			set = true
		}
	}
	if m.code != "" {
		out.Code = &m.code
		set = true
	}
	if !set {
		return nil
	}
	return &out
}

func newContinueCommand(a *app) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Show the last viewed material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok, err := a.bookmark.Resume(cmd.Context(), func(ctx context.Context, id int64) (domain.Material, error) {
				return a.catalog.LoadMaterialByID(ctx, id, false)
			})
			if err != nil {
				return err
			}
			if !ok {
				a.out.note("Nothing to continue")
				return nil
			}
			a.out.materials([]domain.Material{m})
			if open {
				return a.openMaterial(m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the document")
	return cmd
}

func newClearCommand(a *app) *cobra.Command {
	var (
		typeName   string
		lastViewed bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the frequently accessed list or the last viewed material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case lastViewed:
				a.bookmark.ClearLastViewed()
				a.out.note("Cleared last viewed material")
			case typeName != "":
				typ, err := domain.ParseEntityType(typeName)
				if err != nil {
					return err
				}
				if err := a.tracker.ClearType(typ); err != nil {
					return fmt.Errorf("failed to clear %s records: %w", typ, err)
				}
				a.out.note("Cleared %s records", typ)
			default:
				a.tracker.ClearAll()
				a.out.note("Cleared frequently accessed list")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "only clear records of this type")
	cmd.Flags().BoolVar(&lastViewed, "last-viewed", false, "clear the continue pointer instead")
	return cmd
}
