package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/domain"
)

func newCreateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [branch|regulation|subject]",
		Short: "Create catalogue entities",
	}
	cmd.AddCommand(newCreateBranchCommand(a), newCreateRegulationCommand(a), newCreateSubjectCommand(a))
	return cmd
}

func newCreateBranchCommand(a *app) *cobra.Command {
	var req domain.CreateBranchRequest
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Create a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.catalog.CreateBranch(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out.branches([]domain.Branch{b})
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "branch name")
	cmd.Flags().StringVar(&req.Code, "code", "", "branch code, e.g. CSE")
	return cmd
}

func newCreateRegulationCommand(a *app) *cobra.Command {
	var (
		req     domain.CreateRegulationRequest
		endYear int
	)
	cmd := &cobra.Command{
		Use:   "regulation",
		Short: "Create a regulation with its years and semesters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("end") {
				req.EndYear = &endYear
			}
			r, err := a.catalog.CreateRegulation(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out.regulations([]domain.Regulation{r})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "regulation name")
	f.StringVar(&req.Code, "code", "", "regulation code, e.g. R22")
	f.IntVar(&req.StartYear, "start", 0, "first academic year")
	f.IntVar(&endYear, "end", 0, "last academic year (omit while active)")
	f.StringVar(&req.Description, "description", "", "free-form description")
	return cmd
}

func newCreateSubjectCommand(a *app) *cobra.Command {
	var (
		req       domain.CreateSubjectRequest
		subBranch int64
	)
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Create a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subBranch > 0 {
				req.SubBranchID = domain.Int64(subBranch)
			}
			s, err := a.catalog.CreateSubject(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out.subjects([]domain.Subject{s})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "subject name")
	f.StringVar(&req.Code, "code", "", "subject code")
	f.Int64Var(&req.BranchID, "branch", 0, "branch id")
	f.Int64Var(&req.RegulationID, "regulation", 0, "regulation id")
	f.Int64Var(&req.YearID, "year", 0, "year id")
	f.Int64Var(&req.SemesterID, "semester", 0, "semester id")
	f.Int64Var(&subBranch, "sub-branch", 0, "sub-branch id")
	return cmd
}

func newUploadCommand(a *app) *cobra.Command {
	var req domain.UploadMaterialRequest
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF as a material of a subject",
		Long: `Upload a PDF as a material of a subject.

Examples:
  shelf upload unit1.pdf --subject 12 --type notes --title "Unit 1 notes"
  shelf upload 2023.pdf --subject 12 --type pyq`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open upload: %w", err)
			}
			defer f.Close()

			req.FileName = filepath.Base(args[0])
			req.File = f
			if req.Title == "" {
				req.Title = req.FileName[:len(req.FileName)-len(filepath.Ext(req.FileName))]
			}

			m, err := a.catalog.UploadMaterial(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out.materials([]domain.Material{m})
			return nil
		},
	}
	f := cmd.Flags()
	f.Int64Var(&req.SubjectID, "subject", 0, "subject id")
	f.StringVar(&req.MaterialType, "type", "notes", "notes, pyq, assignment, syllabus, lab or other")
	f.StringVar(&req.Title, "title", "", "material title (default: file name)")
	return cmd
}
