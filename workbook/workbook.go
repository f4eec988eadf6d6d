package workbook

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var ErrEmpty = errors.New("empty workbook")

// Sheet describes one worksheet of the downloaded summary workbook.
type Sheet struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Headers []string `json:"headers,omitempty"`
}

// Summary lists the worksheets of a workbook in tab order.
type Summary struct {
	Sheets []Sheet `json:"sheets"`
}

// Rows is the total row count over all sheets.
func (s *Summary) Rows() int {
	total := 0
	for _, sh := range s.Sheets {
		total += sh.Rows
	}
	return total
}

// Inspect opens the workbook bytes and reads each sheet's name, row count and header
// row. It reads only; the workbook is never modified.
func Inspect(data []byte) (*Summary, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	summary := &Summary{Sheets: make([]Sheet, 0, len(sheets))}
	for _, name := range sheets {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheet := Sheet{Name: name, Rows: len(rows)}
		if len(rows) > 0 {
			sheet.Headers = rows[0]
		}
		summary.Sheets = append(summary.Sheets, sheet)
	}
	return summary, nil
}
