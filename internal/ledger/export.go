// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/result-parser/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

const (
	sheetResults = "Results"
	sheetCGPA    = "CGPA"
)

// Export writes the results of session (all sessions when empty) to w in
// the given format.
func (s *Store) Export(ctx context.Context, format, session string, w io.Writer) error {
	switch format {
	case FormatYAML, "":
		return s.ExportYAML(ctx, session, w)
	case FormatJSON:
		return s.ExportJSON(ctx, session, w)
	case FormatXLSX:
		return s.ExportXLSX(ctx, session, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json or xlsx", format)
	}
}

// ExportYAML writes the results as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, session string, w io.Writer) error {
	results, err := s.exportResults(ctx, session)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the results as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, session string, w io.Writer) error {
	results, err := s.exportResults(ctx, session)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ExportXLSX writes a workbook with a Results sheet (one row per result)
// and a CGPA sheet (one row per student across all sessions).
func (s *Store) ExportXLSX(ctx context.Context, session string, w io.Writer) error {
	results, err := s.exportResults(ctx, session)
	if err != nil {
		return err
	}
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResults); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetCGPA); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	resultRows := make([][]any, 0, len(results))
	for _, r := range results {
		resultRows = append(resultRows, []any{
			r.PRN, r.ExamSession, r.ResultDate.Format(dateLayout), r.SGPA, r.Status, r.SourcePDF, r.BatchID,
		})
	}
	err = writeSheet(f, sheetResults,
		[]string{"PRN", "Exam Session", "Result Date", "SGPA", "Status", "Source PDF", "Batch"},
		resultRows)
	if err != nil {
		return err
	}

	cgpaRows := make([][]any, 0, len(summaries))
	for _, sum := range summaries {
		cgpaRows = append(cgpaRows, []any{sum.PRN, sum.Exams, sum.CGPA})
	}
	if err := writeSheet(f, sheetCGPA, []string{"PRN", "Exams", "CGPA"}, cgpaRows); err != nil {
		return err
	}

	_ = f.SetColWidth(sheetResults, "A", "A", 16)
	_ = f.SetColWidth(sheetResults, "B", "C", 14)
	_ = f.SetColWidth(sheetResults, "F", "F", 40)
	_ = f.SetColWidth(sheetResults, "G", "G", 38)
	_ = f.SetColWidth(sheetCGPA, "A", "A", 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return nil
}

func (s *Store) exportResults(ctx context.Context, session string) ([]types.ExamResult, error) {
	results, err := s.List(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if results == nil {
		results = []types.ExamResult{}
	}
	return results, nil
}
