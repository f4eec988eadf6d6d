package table

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/payload"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrUnknownField = errors.New("unknown sort field")

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func (o SortOrder) flip() SortOrder {
	if o == Asc {
		return Desc
	}
	return Asc
}

// State is the per-table sort and pagination state.
type State struct {
	CurrentPage int       `json:"currentPage"`
	SortField   string    `json:"sortField"`
	SortOrder   SortOrder `json:"sortOrder"`
}

func InitialState() State {
	return State{CurrentPage: 1, SortOrder: Asc}
}

// columnLabels maps row fields to their column headers.
var columnLabels = map[string]string{
	payload.FieldProjectName: "项目名称",
	payload.FieldDistrict:    "所属区域",
	payload.FieldIndustry:    "所涉行业",
	payload.FieldPeopleCount: "涉及人数",
	payload.FieldAmount:      "涉及金额",
	payload.FieldApplicant:   "诉求人",
	payload.FieldContent:     "诉求内容",
}

// ColumnLabel returns the column header for field.
func ColumnLabel(field string) string {
	return columnLabels[field]
}

// Table is a sortable, paginated view over a fixed set of rows. The source rows are
// never modified, every view is derived from them and the current State.
type Table struct {
	id    string
	rows  []payload.ProjectRecord
	state State
}

// New creates a table in the initial state. The rows are copied.
func New(id string, rows []payload.ProjectRecord) *Table {
	return &Table{
		id:    id,
		rows:  slices.Clone(rows),
		state: InitialState(),
	}
}

func (t *Table) ID() string {
	return t.id
}

func (t *Table) State() State {
	return t.state
}

func (t *Table) Len() int {
	return len(t.rows)
}

// TotalPages is the number of pages of consts.PageSize rows; 0 for an empty table.
func (t *Table) TotalPages() int {
	return int(math.Ceil(float64(len(t.rows)) / float64(consts.PageSize)))
}

// SortBy sorts on field, flipping the order when field is already the sort field.
// The current page goes back to 1.
func (t *Table) SortBy(field string) error {
	if !payload.IsField(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if t.state.SortField == field {
		t.state.SortOrder = t.state.SortOrder.flip()
	} else {
		t.state.SortField = field
		t.state.SortOrder = Asc
	}
	t.state.CurrentPage = 1
	return nil
}

// GoTo moves to page. Pages outside 1..TotalPages are rejected and leave the state
// unchanged.
func (t *Table) GoTo(page int) bool {
	if page < 1 || page > t.TotalPages() {
		return false
	}
	t.state.CurrentPage = page
	return true
}

// Sorted returns a sorted copy of the rows according to the current state.
func (t *Table) Sorted() []payload.ProjectRecord {
	return sortRows(t.rows, t.state.SortField, t.state.SortOrder)
}

// Row returns the row at index in the sorted order.
func (t *Table) Row(index int) (payload.ProjectRecord, bool) {
	sorted := t.Sorted()
	if index < 0 || index >= len(sorted) {
		return payload.ProjectRecord{}, false
	}
	return sorted[index], true
}

func sortRows(rows []payload.ProjectRecord, field string, order SortOrder) []payload.ProjectRecord {
	sorted := slices.Clone(rows)
	if field == "" {
		return sorted
	}

	compare := func(a, b payload.ProjectRecord) int {
		return cmp.Compare(a.Number(field), b.Number(field))
	}
	if !payload.IsNumericField(field) {
		fold := cases.Fold()
		keys := make(map[string]string, len(rows))
		key := func(s string) string {
			k, ok := keys[s]
			if !ok {
				k = fold.String(s)
				keys[s] = k
			}
			return k
		}
		compare = func(a, b payload.ProjectRecord) int {
			return strings.Compare(key(a.Text(field)), key(b.Text(field)))
		}
	}

	slices.SortStableFunc(sorted, func(a, b payload.ProjectRecord) int {
		if order == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

// Column is a table header.
type Column struct {
	Field  string
	Label  string
	Active bool
	Order  SortOrder
}

// Row is one rendered row. Index is the position in the sorted rows.
type Row struct {
	Index int
	Cells []string
}

// Page is a rendered view of a table: the current page of sorted rows plus the
// pagination controls.
type Page struct {
	TableID  string
	State    State
	Columns  []Column
	Rows     []Row
	Empty    bool
	Total    int
	Buttons  []int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	RowCount int
}

// View renders the current page.
func (t *Table) View() Page {
	page := Page{
		TableID:  t.id,
		State:    t.state,
		Columns:  t.columns(),
		Total:    t.TotalPages(),
		RowCount: len(t.rows),
	}
	if len(t.rows) == 0 {
		page.Empty = true
		return page
	}

	sorted := t.Sorted()
	start := (t.state.CurrentPage - 1) * consts.PageSize
	end := min(start+consts.PageSize, len(sorted))
	p := message.NewPrinter(language.SimplifiedChinese)
	for i := start; i < end; i++ {
		page.Rows = append(page.Rows, Row{Index: i, Cells: formatCells(p, sorted[i])})
	}

	current := t.state.CurrentPage
	page.Buttons = PageButtons(current, page.Total)
	page.HasPrev = current > 1
	page.HasNext = current < page.Total
	page.PrevPage = max(current-1, 1)
	page.NextPage = min(current+1, page.Total)
	return page
}

func (t *Table) columns() []Column {
	cols := make([]Column, len(payload.ProjectFields))
	for i, f := range payload.ProjectFields {
		cols[i] = Column{
			Field:  f,
			Label:  columnLabels[f],
			Active: t.state.SortField == f,
			Order:  t.state.SortOrder,
		}
	}
	return cols
}

// PageButtons returns the page numbers to show around current: a window of
// consts.PageWindowRadius on each side, widened from the edge it touches to
// consts.MinPageButtons, or to every page when there are fewer.
func PageButtons(current, total int) []int {
	if total <= 0 {
		return nil
	}
	start := max(1, current-consts.PageWindowRadius)
	end := min(total, current+consts.PageWindowRadius)
	if want := min(total, consts.MinPageButtons); end-start+1 < want {
		if start == 1 {
			end = want
		} else {
			start = max(1, end-want+1)
		}
	}
	buttons := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		buttons = append(buttons, i)
	}
	return buttons
}

func formatCells(p *message.Printer, r payload.ProjectRecord) []string {
	cells := make([]string, len(payload.ProjectFields))
	for i, f := range payload.ProjectFields {
		switch f {
		case payload.FieldPeopleCount:
			cells[i] = formatNumber(p, r.Number(f))
		case payload.FieldAmount:
			cells[i] = formatNumber(p, r.Number(f)) + consts.CurrencySuffix
		default:
			cells[i] = Placeholder(r.Text(f))
		}
	}
	return cells
}

// Placeholder replaces blank values with consts.EmptyCell.
func Placeholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return consts.EmptyCell
	}
	return s
}

func formatNumber(p *message.Printer, v float64) string {
	if v == math.Trunc(v) {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}
