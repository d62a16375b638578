package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/domain"
)

func parseID(s, what string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return v, nil
}

func newBranchesCommand(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List all branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.catalog.LoadBranches(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			a.out.branches(v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

func newRegulationsCommand(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "regulations",
		Short: "List all regulations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.catalog.LoadRegulations(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			a.out.regulations(v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

func newYearsCommand(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List academic years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.catalog.LoadYears(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			a.out.years(v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

func newSemestersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "semesters <year-id>",
		Short: "List the semesters of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearID, err := parseID(args[0], "year")
			if err != nil {
				return err
			}
			v, err := a.catalog.LoadSemesters(cmd.Context(), yearID, false)
			if err != nil {
				return err
			}
			a.out.semesters(v)
			return nil
		},
	}
}

func newSubjectsCommand(a *app) *cobra.Command {
	var branch, regulation, year, semester, subBranch int64
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List subjects, filtered by branch/regulation/year/semester",
		Long: `List subjects.

With all of --branch, --regulation, --year and --semester the listing goes
through the subject cache; any other combination is an ad-hoc filter.

Examples:
  shelf subjects --branch 1 --regulation 2 --year 3 --semester 5
  shelf subjects --branch 1 --sub-branch 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if branch > 0 && regulation > 0 && year > 0 && semester > 0 && subBranch == 0 {
				key := domain.SubjectKey{BranchID: branch, RegulationID: regulation, YearID: year, SemesterID: semester}
				v, err := a.catalog.LoadSubjects(ctx, key, false)
				if err != nil {
					return err
				}
				a.out.subjects(v)
				return nil
			}

			var filter domain.SubjectFilter
			set := func(dst **int64, v int64) {
				if v > 0 {
					*dst = domain.Int64(v)
				}
			}
			set(&filter.BranchID, branch)
			set(&filter.RegulationID, regulation)
			set(&filter.YearID, year)
			set(&filter.SemesterID, semester)
			set(&filter.SubBranchID, subBranch)
			v, err := a.catalog.FilterSubjects(ctx, filter)
			if err != nil {
				return err
			}
			a.out.subjects(v)
			return nil
		},
	}
	f := cmd.Flags()
	f.Int64Var(&branch, "branch", 0, "branch id")
	f.Int64Var(&regulation, "regulation", 0, "regulation id")
	f.Int64Var(&year, "year", 0, "year id")
	f.Int64Var(&semester, "semester", 0, "semester id")
	f.Int64Var(&subBranch, "sub-branch", 0, "sub-branch id")
	return cmd
}

func newSubBranchesCommand(a *app) *cobra.Command {
	var branch int64
	cmd := &cobra.Command{
		Use:   "sub-branches",
		Short: "List sub-branches, optionally of one branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				v   []domain.SubBranch
				err error
			)
			if branch > 0 {
				v, err = a.catalog.LoadSubBranches(cmd.Context(), branch, false)
			} else {
				v, err = a.catalog.AllSubBranches(cmd.Context())
			}
			if err != nil {
				return err
			}
			a.out.subBranches(v)
			return nil
		},
	}
	cmd.Flags().Int64Var(&branch, "branch", 0, "branch id")
	return cmd
}

func newMaterialsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "materials <subject-id>",
		Short: "List the materials of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, err := parseID(args[0], "subject")
			if err != nil {
				return err
			}
			v, err := a.catalog.LoadMaterials(cmd.Context(), subjectID, false)
			if err != nil {
				return err
			}
			a.out.materials(v)
			return nil
		},
	}
}

func newMaterialCommand(a *app) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "material <id>",
		Short: "Show one material, optionally opening it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			materialID, err := parseID(args[0], "material")
			if err != nil {
				return err
			}
			m, err := a.catalog.LoadMaterialByID(cmd.Context(), materialID, false)
			if err != nil {
				return err
			}
			a.out.materials([]domain.Material{m})
			if !open {
				return nil
			}
			return a.openMaterial(m)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the document and record the visit")
	return cmd
}

func newSubjectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subject <id>",
		Short: "Show one subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, err := parseID(args[0], "subject")
			if err != nil {
				return err
			}
			s, err := a.catalog.LoadSubjectByID(cmd.Context(), subjectID, false)
			if err != nil {
				return err
			}
			a.out.subjects([]domain.Subject{s})
			return nil
		},
	}
}

func newRecentCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently uploaded materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.catalog.RecentMaterials(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.out.materials(v)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of materials")
	return cmd
}

// openMaterial records the visit, saves the continue pointer and opens the document
func (a *app) openMaterial(m domain.Material) error {
	meta := &domain.AccessMetadata{MaterialID: domain.Int64(m.ID)}
	if m.SubjectID > 0 {
		meta.SubjectID = domain.Int64(m.SubjectID)
	}
	if err := a.tracker.TrackAccess(m.ID, m.Title, domain.EntityMaterial, meta); err != nil {
		return err
	}
	a.bookmark.SaveLastViewed(m)
	if err := a.launcher.Open(m.URL); err != nil {
		return fmt.Errorf("failed to open %q: %w", m.Title, err)
	}
	a.out.note("Opened %s", m.Title)
	return nil
}
