package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	dimColor    = color.New(color.Faint)

	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	headerCellStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("6"))
	nameCellStyle   = cellStyle.Foreground(lipgloss.Color("2"))
	numberCellStyle = cellStyle.Align(lipgloss.Right)
	borderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	colName      = 1
	colDownloads = 2
)

// renderView prints a page of datasets as a table
func renderView(w io.Writer, view *model.View) error {
	rows := make([][]string, 0, len(view.Items))
	for _, r := range view.Items {
		size := r.SizeCategory
		if r.SizeBytes > 0 {
			size = humanize.Bytes(uint64(r.SizeBytes))
		}
		updated := "-"
		if !r.LastModified.IsZero() {
			updated = humanize.Time(r.LastModified)
		}

		rows = append(rows, []string{
			r.ID,
			r.DisplayName,
			humanize.Comma(r.Downloads),
			size,
			updated,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "NAME", "DOWNLOADS", "SIZE", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case col == colName:
				return nameCellStyle
			case col == colDownloads:
				return numberCellStyle
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	_, err := dimColor.Fprintf(w, "page %d/%d, %s datasets\n",
		view.Page, max(view.PageCount, 1), humanize.Comma(int64(view.TotalCount)))
	return err
}

// renderFacets prints facet categories with their tags
func renderFacets(w io.Writer, facets []model.FacetCategory) error {
	for _, f := range facets {
		if _, err := headerColor.Fprintf(w, "%s (%d)\n", f.Name, len(f.Tags)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", strings.Join(f.Tags, ", ")); err != nil {
			return err
		}
	}
	return nil
}
