package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/tui/styles"
)

// printer writes tables: bordered and coloured on a terminal, tab-separated otherwise
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, styled: isTerminal(w)}
}

func (p printer) table(headers []string, rows [][]string) {
	if !p.styled {
		fmt.Fprintln(p.w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(p.w, strings.Join(row, "\t"))
		}
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(styles.ShelfTeal).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(styles.LightGray).Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.DimGray)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(p.w, t.Render())
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// note prints a secondary line, dimmed on a terminal
func (p printer) note(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if p.styled {
		text = styles.DimStyle.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (p printer) branches(v []domain.Branch) {
	rows := make([][]string, len(v))
	for i, b := range v {
		rows[i] = []string{id(b.ID), b.Code, b.Name}
	}
	p.table([]string{"ID", "CODE", "NAME"}, rows)
}

func (p printer) regulations(v []domain.Regulation) {
	rows := make([][]string, len(v))
	for i, r := range v {
		rows[i] = []string{id(r.ID), r.Code, r.Name, r.Span()}
	}
	p.table([]string{"ID", "CODE", "NAME", "YEARS"}, rows)
}

func (p printer) years(v []domain.Year) {
	rows := make([][]string, len(v))
	for i, y := range v {
		rows[i] = []string{id(y.ID), y.GetTitle()}
	}
	p.table([]string{"ID", "YEAR"}, rows)
}

func (p printer) semesters(v []domain.Semester) {
	rows := make([][]string, len(v))
	for i, s := range v {
		rows[i] = []string{id(s.ID), s.GetTitle(), s.GetDescription()}
	}
	p.table([]string{"ID", "SEMESTER", "YEAR"}, rows)
}

func (p printer) subjects(v []domain.Subject) {
	rows := make([][]string, len(v))
	for i, s := range v {
		rows[i] = []string{id(s.ID), s.Code, s.Name, s.RegulationCode, strconv.Itoa(s.MaterialCount)}
	}
	p.table([]string{"ID", "CODE", "NAME", "REGULATION", "MATERIALS"}, rows)
}

func (p printer) subBranches(v []domain.SubBranch) {
	rows := make([][]string, len(v))
	for i, s := range v {
		rows[i] = []string{id(s.ID), s.Code, s.Name, s.BranchCode}
	}
	p.table([]string{"ID", "CODE", "NAME", "BRANCH"}, rows)
}

func (p printer) materials(v []domain.Material) {
	rows := make([][]string, len(v))
	for i, m := range v {
		uploaded := ""
		if !m.UploadedOn.IsZero() {
			uploaded = m.UploadedOn.Format("2006-01-02")
		}
		rows[i] = []string{id(m.ID), m.MaterialType, m.Title, m.SubjectName, uploaded}
	}
	p.table([]string{"ID", "TYPE", "TITLE", "SUBJECT", "UPLOADED"}, rows)
}

func (p printer) records(v []domain.AccessRecord) {
	rows := make([][]string, len(v))
	for i, r := range v {
		rows[i] = []string{string(r.Type), id(r.ID), r.DisplayName, strconv.Itoa(r.AccessCount),
			r.LastAccessedAt.Local().Format("2006-01-02 15:04")}
	}
	p.table([]string{"TYPE", "ID", "NAME", "VISITS", "LAST VISIT"}, rows)
}

func (p printer) searchResult(r domain.SearchResult) {
	if r.Empty() {
		p.note("No results for %q", r.Query)
		return
	}
	if len(r.Branches) > 0 {
		p.note("Branches")
		p.branches(r.Branches)
	}
	if len(r.Regulations) > 0 {
		p.note("Regulations")
		p.regulations(r.Regulations)
	}
	if len(r.Subjects) > 0 {
		p.note("Subjects")
		p.subjects(r.Subjects)
	}
	if len(r.Materials) > 0 {
		p.note("Materials")
		p.materials(r.Materials)
	}
}
