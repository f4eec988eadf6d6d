package table

import (
	"fmt"
	"io"

	"github.com/laborwatch/cluedash/consts"
	"github.com/olekukonko/tablewriter"
)

// WriteText prints the page as a terminal table followed by the pagination line.
func WriteText(w io.Writer, page Page) error {
	tw := tablewriter.NewWriter(w)
	header := make([]string, len(page.Columns))
	for i, c := range page.Columns {
		header[i] = c.Label
		if c.Active {
			if c.Order == Desc {
				header[i] += " ↓"
			} else {
				header[i] += " ↑"
			}
		}
	}
	tw.SetHeader(header)
	tw.SetAutoWrapText(false)
	if page.Empty {
		tw.Append([]string{consts.NoDataText})
		tw.Render()
		return nil
	}
	for _, row := range page.Rows {
		tw.Append(row.Cells)
	}
	tw.Render()
	_, err := fmt.Fprintf(w, "第 %d / %d 页，共 %d 条  %v\n", page.State.CurrentPage, page.Total, page.RowCount, page.Buttons)
	return err
}
