package timesheet

import (
	"fmt"

	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Timesheet"
	ExcelContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateDisplay = "02/01/2006"
)

var exportColumns = []struct {
	header string
	col    string
	width  float64
}{
	{"Date", "A", 15},
	{"Day", "B", 12},
	{"Project", "C", 25},
	{"Task", "D", 30},
	{"Hours", "E", 10},
	{"Status", "F", 15},
}

// ExportFileName is the attachment name for a month's workbook.
func ExportFileName(month string) string {
	return fmt.Sprintf("Timesheet-%s.xlsx", month)
}

// BuildWorkbook renders an employee's entries for month: a header line about the employee, a blank
// line, the column headers in bold, then one row per entry.
func BuildWorkbook(owner *Owner, month string, entries []*Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for _, c := range exportColumns {
		if err := f.SetColWidth(exportSheet, c.col, c.col, c.width); err != nil {
			return nil, err
		}
	}

	info := []interface{}{
		"Employee: " + owner.Name,
		"Department: " + dash(owner.Department),
		"Designation: " + dash(owner.Designation),
		"Location: " + dash(owner.WorkLocation),
		"Month: " + month,
	}
	if err := f.SetSheetRow(exportSheet, "A1", &info); err != nil {
		return nil, err
	}

	headers := make([]interface{}, 0, len(exportColumns))
	for _, c := range exportColumns {
		headers = append(headers, c.header)
	}
	if err := f.SetSheetRow(exportSheet, "A3", &headers); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A3", "F3", bold); err != nil {
		return nil, err
	}

	for i, e := range entries {
		date := e.WorkDate
		day := ""
		if t, err := clock.ParseDate(e.WorkDate); err == nil {
			date = t.Format(exportDateDisplay)
			day = t.Weekday().String()
		}
		row := []interface{}{date, day, dash(e.Project), dash(e.Task), e.Hours.StringFixed(2), string(e.Status)}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
