package dashboard

import (
	_ "embed"
	"html/template"
	"io"
	"log"
	"strconv"

	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/table"
)

//go:embed page.html.tmpl
var pageTemplate string

var pageTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"num":    formatValue,
	"itoa":   strconv.Itoa,
	"noData": func() string { return consts.NoDataText },
}).Parse(pageTemplate))

// PageOptions controls the links of a rendered page. With an empty BaseURL the page is
// static: tables show their current page and carry no sort, page or detail links.
type PageOptions struct {
	BaseURL string
	Notice  string
}

type chartView struct {
	ID      string
	Snippet template.HTML
}

type tableView struct {
	Title string
	Page  table.Page
}

type modalView struct {
	Visible bool
	Title   string
	Fields  []Field
}

type pageView struct {
	Title         string
	AssetURL      string
	BaseURL       string
	Notice        string
	Heading       string
	D             *Dashboard
	ChartIDs      []string
	ChartSnippets []chartView
	Tables        []tableView
	Modal         modalView
}

// WriteHTML renders the dashboard as a complete HTML page. Every chart is resized by
// one window listener that looks charts up by id, so stale ids are skipped.
func (d *Dashboard) WriteHTML(w io.Writer, o PageOptions) error {
	ids := d.Charts.IDs()
	if ids == nil {
		ids = []string{}
	}
	snippets := d.Charts.Snippets()
	view := pageView{
		Title:    consts.PageTitle,
		AssetURL: consts.EChartsAssetURL,
		BaseURL:  o.BaseURL,
		Notice:   o.Notice,
		Heading:  consts.BasicInfoHeading,
		D:        d,
		ChartIDs: ids,
	}
	for _, id := range ids {
		view.ChartSnippets = append(view.ChartSnippets, chartView{ID: id, Snippet: snippets[id]})
	}
	for _, t := range d.ProjectTables {
		page, err := d.Tables.View(t.ID)
		if err != nil {
			log.Printf("Error rendering table %s: %v", t.ID, err)
			continue
		}
		view.Tables = append(view.Tables, tableView{Title: t.Title, Page: page})
	}
	view.Modal.Visible = d.Modal.Visible()
	view.Modal.Title, view.Modal.Fields = d.Modal.Content()

	return pageTmpl.Execute(w, view)
}
