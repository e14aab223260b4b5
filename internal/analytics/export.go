package analytics

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const generatedLayout = "January 2, 2006 15:04"

type section struct {
	title  string
	header []string
	rows   [][]string
}

// sections flattens a report into titled tables shared by both exports.
func sections(r *Report) []section {
	k := r.KPIs
	out := []section{{
		title:  "Key Performance Indicators",
		header: []string{"Metric", "Value", "Percent"},
		rows: [][]string{
			{"Total complaints", fmt.Sprint(k.Total), ""},
			{"Pending", fmt.Sprint(k.Pending), fmt.Sprintf("%.1f%%", k.PendingPercent)},
			{"In Progress", fmt.Sprint(k.InProgress), fmt.Sprintf("%.1f%%", k.InProgressPercent)},
			{"Resolved", fmt.Sprint(k.Resolved), fmt.Sprintf("%.1f%%", k.ResolvedPercent)},
			{"Deleted", fmt.Sprint(k.Deleted), fmt.Sprintf("%.1f%%", k.DeletedPercent)},
			{"Average resolution (days)", fmt.Sprint(k.AvgResolutionDays), ""},
		},
	}}
	counts := func(title, label string, cs []Count, withPercent bool) {
		if len(cs) == 0 {
			return
		}
		s := section{title: title, header: []string{label, "Complaints"}}
		if withPercent {
			s.header = append(s.header, "Percent")
		}
		for _, c := range cs {
			row := []string{c.Label, fmt.Sprint(c.Count)}
			if withPercent {
				row = append(row, fmt.Sprintf("%.1f%%", c.Percent))
			}
			s.rows = append(s.rows, row)
		}
		out = append(out, s)
	}
	counts("Status Distribution", "Status", r.ByStatus, false)
	counts("Monthly Trend", "Month", r.MonthlyTrend, false)
	counts("Complaints by Weekday", "Day", r.ByWeekday, false)
	if len(r.ResolutionByCategory) > 0 {
		s := section{title: "Average Resolution Time", header: []string{"Category", "Days"}}
		for _, a := range r.ResolutionByCategory {
			s.rows = append(s.rows, []string{a.Label, fmt.Sprint(a.Days)})
		}
		out = append(out, s)
	}
	counts("Complaints by Category", "Category", r.ByCategory, true)
	counts("Resolved by Admin Role", "Role", r.ResolvedByRole, true)
	counts("Active Issues Breakdown", "Category", r.ActiveByCategory, true)
	return out
}

// WritePDF renders the report as an A4 PDF.
func WritePDF(w io.Writer, r *Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Analytics Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Analytics Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, "Generated: "+r.GeneratedAt.Format(generatedLayout), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Admin: "+r.Scope, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Showing: "+r.Window, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	for _, s := range sections(r) {
		// Keep a heading together with at least its header row and first line.
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, s.title)
		pdf.Ln(9)

		width := 170 / float64(len(s.header))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(40, 145, 108)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range s.header {
			ln := 0
			if i == len(s.header)-1 {
				ln = 1
			}
			pdf.CellFormat(width, 7, h, "1", ln, "C", true, 0, "")
		}

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFillColor(245, 245, 245)
		for n, row := range s.rows {
			fill := n%2 == 0
			for i, cell := range row {
				ln, align := 0, "C"
				if i == 0 {
					align = "L"
				}
				if i == len(row)-1 {
					ln = 1
				}
				pdf.CellFormat(width, 6, cell, "1", ln, align, fill, 0, "")
			}
		}
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write analytics PDF: %w", err)
	}
	return nil
}

// WriteXLSX renders the report as a workbook: a summary sheet plus one sheet per table.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"28916C"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	meta := [][]interface{}{
		{"Analytics Report"},
		{"Generated", r.GeneratedAt.Format(generatedLayout)},
		{"Admin", r.Scope},
		{"Showing", r.Window},
	}
	for i, row := range meta {
		if err := setRow(f, summary, i+1, row); err != nil {
			return err
		}
	}

	for i, s := range sections(r) {
		sheet := sheetName(s.title)
		if i > 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
			}
		} else {
			// KPIs go under the summary block.
			sheet = summary
		}
		start := 1
		if sheet == summary {
			start = len(meta) + 2
		}
		if err := writeTable(f, sheet, start, s, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write analytics workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, start int, s section, headerStyle int) error {
	head := make([]interface{}, len(s.header))
	for i, h := range s.header {
		head[i] = h
	}
	if err := setRow(f, sheet, start, head); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, start)
	last, _ := excelize.CoordinatesToCellName(len(s.header), start)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range s.rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := setRow(f, sheet, start+1+i, values); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(s.header))
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// sheetName keeps titles within Excel's 31 character sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
