package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

// excelPreviewRows is the number of data rows shown by the read action.
const excelPreviewRows = 10

type processExcelArgs struct {
	Path   string `json:"path" desc:"Excel workbook to inspect" required:"true"`
	Action string `json:"action" desc:"'read' for a preview of the first rows, 'info' for the column layout" enum:"read,info" default:"read"`
}

// NewExcelTool creates a tool that previews or describes the first sheet of a workbook.
func NewExcelTool(opts ...DocumentToolOption) Registration {
	cfg := applyDocumentOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("process_excel", "Process an Excel file: 'read' shows the first rows, 'info' shows columns and row count",
		func(ctx context.Context, args processExcelArgs) (string, error) {
			path, err := files.resolvePath(args.Path)
			if err != nil {
				return "", err
			}

			sheet, rows, err := readFirstSheet(path)
			if err != nil {
				return "", fmt.Errorf("excel processing failed: %w", err)
			}

			var header []string
			var data [][]string
			if len(rows) > 0 {
				header, data = rows[0], rows[1:]
			}

			switch args.Action {
			case "info":
				return fmt.Sprintf("sheet: %s, columns: [%s], rows: %d", sheet, strings.Join(header, ", "), len(data)), nil
			default:
				if len(data) > excelPreviewRows {
					data = data[:excelPreviewRows]
				}
				return renderTable(header, data), nil
			}
		})
}

func readFirstSheet(path string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, err
	}
	return sheets[0], rows, nil
}

func renderTable(header []string, rows [][]string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(w, "\t"+strings.Join(header, "\t"))
	}
	for i, row := range rows {
		fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

type saveExcelArgs struct {
	Path string           `json:"path" desc:"Destination .xlsx path; missing parent directories are created" required:"true"`
	Data []map[string]any `json:"data" desc:"Rows to write, one object per row; keys become column headers" required:"true"`
}

// NewSaveExcelTool creates a tool that writes a list of records to a new workbook.
// Columns are the union of record keys, sorted by name.
func NewSaveExcelTool(opts ...DocumentToolOption) Registration {
	cfg := applyDocumentOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("save_to_excel", "Save a list of records (array of objects) to an Excel file",
		func(ctx context.Context, args saveExcelArgs) (string, error) {
			path, err := files.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return "", fmt.Errorf("saving excel failed: %w", err)
			}
			if err := writeWorkbook(path, args.Data); err != nil {
				return "", fmt.Errorf("saving excel failed: %w", err)
			}
			return "excel file saved to: " + path, nil
		})
}

func writeWorkbook(path string, records []map[string]any) error {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, rec := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
