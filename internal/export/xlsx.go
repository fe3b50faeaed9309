// Package export writes tracking results to Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spectrack/spectrack-go/internal/models"
)

// WriteResults writes the rows to an .xlsx workbook at path with a single
// sheet of the given name. An empty row slice still produces a workbook
// with the header row.
func WriteResults(path, sheet string, rows []models.ResultRow) error {
	wb, err := buildWorkbook(sheet, rows)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteResultsTo streams the workbook to w instead of a file, for HTTP
// download handlers.
func WriteResultsTo(w io.Writer, sheet string, rows []models.ResultRow) error {
	wb, err := buildWorkbook(sheet, rows)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(sheet string, rows []models.ResultRow) (*excelize.File, error) {
	wb := excelize.NewFile()
	// A new workbook starts with a default "Sheet1"; rename it instead of
	// leaving an empty extra sheet behind.
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		wb.Close()
		return nil, err
	}

	header := make([]any, len(models.ResultColumns))
	for i, col := range models.ResultColumns {
		header[i] = col
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		wb.Close()
		return nil, err
	}

	for i, row := range rows {
		values := row.Fields()
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		axis := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(sheet, axis, &cells); err != nil {
			wb.Close()
			return nil, err
		}
	}
	return wb, nil
}
