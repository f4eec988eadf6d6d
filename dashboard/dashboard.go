package dashboard

import (
	"errors"
	"log"
	"strconv"

	"github.com/laborwatch/cluedash/charts"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/ranking"
	"github.com/laborwatch/cluedash/table"
	"github.com/laborwatch/cluedash/workbook"
)

var (
	ErrNoPayload = payload.ErrNoPayload
	ErrNoRow     = errors.New("no such row")
)

type Counter struct {
	ID    string
	Label string
	Value string
	Unit  string
}

type Ranking struct {
	ID      string
	Title   string
	Warning bool
	Entries []ranking.RankedEntry
}

type SourceRow struct {
	Name  string
	Short string
	Value float64
}

type SourceTable struct {
	Rows  []SourceRow
	Total float64
}

type ProjectTable struct {
	ID    string
	Title string
}

// Dashboard is a rendered payload. It owns the chart and table registries and the
// row-detail modal for as long as the page lives.
type Dashboard struct {
	Datetime      string
	BasicInfo     []string
	Counters      []Counter
	Rankings      []Ranking
	Sources       *SourceTable
	ProjectTables []ProjectTable
	Workbook      *workbook.Summary

	Charts *charts.Registry
	Tables *table.Registry
	Modal  *Modal

	layout Layout
}

// Render builds the full dashboard for p.
func Render(p *payload.Payload) (*Dashboard, error) {
	return RenderLayout(p, DefaultLayout())
}

// RenderLayout builds the widgets of p that have a container in layout.
func RenderLayout(p *payload.Payload, layout Layout) (*Dashboard, error) {
	d := &Dashboard{
		Charts: charts.NewRegistry(),
		Tables: table.NewRegistry(),
		Modal:  &Modal{},
		layout: layout,
	}
	if err := d.Refresh(p); err != nil {
		return nil, err
	}
	return d, nil
}

// Refresh re-renders the dashboard from fresh data. Previous charts and tables are
// dropped and the modal is closed.
func (d *Dashboard) Refresh(p *payload.Payload) error {
	if p == nil {
		return ErrNoPayload
	}
	p.Normalize()

	d.Charts.Reset()
	for _, id := range d.Tables.IDs() {
		d.Tables.Destroy(id)
	}
	d.Modal.Hide()
	d.Datetime = string(p.Datetime)
	d.BasicInfo = nil
	d.Counters = nil
	d.Rankings = nil
	d.Sources = nil
	d.ProjectTables = nil

	if p.BasicInfo != "" && d.place(BasicInfo) {
		d.BasicInfo = p.BasicInfoLines()
	}
	if d.place(Counters) {
		d.Counters = counters(p)
	}

	d.renderDistricts(p)
	d.renderSources(p)
	d.renderCategories(p)
	d.renderScatter(p)
	d.renderProjects(p)
	return nil
}

// Destroy releases the charts and tables of the dashboard.
func (d *Dashboard) Destroy() {
	d.Charts.Reset()
	for _, id := range d.Tables.IDs() {
		d.Tables.Destroy(id)
	}
	d.Modal.Hide()
}

func (d *Dashboard) place(id string) bool {
	if !d.layout.Has(id) {
		log.Printf("Container not found: %s", id)
		return false
	}
	return true
}

func (d *Dashboard) addChart(id string, c charts.Chart) {
	if d.place(id) {
		d.Charts.Add(id, c)
	}
}

type districtSection struct {
	counts     payload.CategoryMap
	rankingID  string
	rankTitle  string
	pieID      string
	barID      string
	pieTitle   string
	seriesName string
	color      string
	warning    bool
}

func (d *Dashboard) renderDistricts(p *payload.Payload) {
	sections := []districtSection{
		{p.DistrictCounts, DistrictRanking, "县市区线索排名", DistrictPieChart, DistrictChart, "县市区线索分布", "线索数量", consts.ColorDistrict, false},
		{p.JiansheDistrictCounts, JiansheDistrictRanking, "建设领域县市区排名", JiansheDistrictPieChart, JiansheDistrictChart, "建设领域县市区分布", "线索数量", consts.ColorJianshe, false},
		{p.FeijianDistrictCounts, FeijianDistrictRanking, "非建领域县市区排名", FeijianDistrictPieChart, FeijianDistrictChart, "非建领域县市区分布", "线索数量", consts.ColorFeijian, false},
		{p.WarningDistrictCounts, WarningDistrictRanking, "预警县市区排名", WarningDistrictPieChart, WarningDistrictChart, "预警县市区分布", "预警数量", consts.ColorWarning, true},
	}
	for _, s := range sections {
		if s.counts == nil {
			continue
		}
		counts := s.counts.Counts()
		if d.place(s.rankingID) {
			d.Rankings = append(d.Rankings, Ranking{
				ID:      s.rankingID,
				Title:   s.rankTitle,
				Warning: s.warning,
				Entries: ranking.Rank(counts),
			})
		}
		d.addChart(s.pieID, charts.DistrictPie(s.pieID, s.pieTitle, counts))
		d.addChart(s.barID, charts.DistrictBar(s.barID, s.seriesName, counts, s.color))
	}
}

func (d *Dashboard) renderSources(p *payload.Payload) {
	if p.EventSourceCounts == nil {
		return
	}
	counts := p.EventSourceCounts.Counts()
	d.addChart(SourceChart, charts.CategoryPie(SourceChart, "线索来源分布", "线索来源", counts, consts.SourcePalette))
	if !d.place(Sources) {
		return
	}
	ranked := ranking.Rank(counts)
	t := &SourceTable{Rows: make([]SourceRow, len(ranked))}
	for i, e := range ranked {
		t.Rows[i] = SourceRow{
			Name:  e.Name,
			Short: charts.ShortName(e.Name, consts.SourceNameMaxLen),
			Value: e.Value,
		}
	}
	t.Total = ranking.Total(counts)
	d.Sources = t
}

type categorySection struct {
	counts     payload.CategoryMap
	id         string
	title      string
	seriesName string
	palette    []string
}

func (d *Dashboard) renderCategories(p *payload.Payload) {
	sections := []categorySection{
		{p.IndustryCounts, JiansheIndustryChart, "建设领域行业分布", "行业分布", consts.JiansheIndustryPalette},
		// feijian_industry_counts takes the container over from feijian_industry_data
		{p.FeijianIndustryData, FeijianIndustryChart, "非建领域行业分布", "行业分布", consts.IndustryPalette},
		{p.FeijianIndustryCounts, FeijianIndustryChart, "非建领域行业分布", "行业分布", consts.FeijianIndustryPalette},
		{p.WarningIndustryCounts, WarningIndustryChart, "预警行业分布", "行业分布", consts.IndustryPalette},
		{p.WarningStatusCounts, WarningStatusChart, "预警处置状态", "处置状态", consts.SourcePalette},
		{p.WarningTypes, WarningTypesChart, "预警类型分布", "预警类型", consts.DistrictPalette},
		{p.ProjectNatureCounts, ProjectNatureChart, "项目性质分布", "项目性质", consts.SourcePalette},
		{p.JiansheEventSourceCounts, JiansheSourceChart, "建设领域线索来源", "线索来源", consts.SourcePalette},
		{p.JiansheIndustryCounts, JiansheCategoryChart, "建设领域工程类别", "工程类别", consts.JiansheIndustryPalette},
		{p.JiansheProjectNatureCounts, JiansheNatureChart, "建设领域项目性质", "项目性质", consts.SourcePalette},
		{p.FeijianEventSourceCounts, FeijianSourceChart, "非建领域线索来源", "线索来源", consts.SourcePalette},
	}
	for _, s := range sections {
		if s.counts == nil {
			continue
		}
		d.addChart(s.id, charts.CategoryPie(s.id, s.title, s.seriesName, s.counts.Counts(), s.palette))
	}
}

func (d *Dashboard) renderScatter(p *payload.Payload) {
	if p.JiansheScatterData != nil {
		d.addChart(JiansheScatterChart, charts.Scatter(JiansheScatterChart, "建设领域人数与金额", consts.ColorJianshe,
			p.JiansheScatterData, p.JianshePeopleAvg, p.JiansheAmountAvg))
	}
	if p.FeijianScatterData != nil {
		d.addChart(FeijianScatterChart, charts.Scatter(FeijianScatterChart, "非建领域人数与金额", consts.ColorFeijian,
			p.FeijianScatterData, p.FeijianPeopleAvg, p.FeijianAmountAvg))
	}
}

func (d *Dashboard) renderProjects(p *payload.Payload) {
	sections := []struct {
		id    string
		title string
		rows  []payload.ProjectRecord
	}{
		{JiansheLargeProjects, "建设领域重大项目", p.JiansheLargeProjects},
		{FeijianLargeProjects, "非建领域重大案件", p.FeijianLargeProjects},
	}
	for _, s := range sections {
		if s.rows == nil || !d.place(s.id) {
			continue
		}
		d.Tables.Replace(s.id, s.rows)
		d.ProjectTables = append(d.ProjectTables, ProjectTable{ID: s.id, Title: s.title})
	}
}

func counters(p *payload.Payload) []Counter {
	var result []Counter
	num := func(id, label string, n *payload.Number, unit string) {
		if n == nil {
			return
		}
		result = append(result, Counter{ID: id, Label: label, Value: formatValue(n.Value()), Unit: unit})
	}
	text := func(id, label string, value payload.Text) {
		if value == "" {
			return
		}
		result = append(result, Counter{ID: id, Label: label, Value: string(value)})
	}

	num("total_xiansuo", "线索总数", p.XiansuoCount, "")
	num("bupingtai_count", "部平台线索", p.XiansuoBupingtaiCount, "")
	num("xiansuo_12345_count", "12345线索", p.Xiansuo12345Count, "")
	num("zaicitousu_count", "再次投诉", p.ZaicitousuCount, "")
	text("yirenduosu", "一人多诉", p.Yirenduosu)
	text("duorenyisu", "多人一诉", p.Duorenyisu)
	text("xiansuo_count_top3", "线索数量前三", p.XiansuoCountTop3)
	num("jianshe_count", "建设领域项目", p.JiansheProjectCount, "")
	num("jianshe_renshu", "建设领域涉及人数", p.JiansheRenshu, "人")
	num("jianshe_jine", "建设领域涉及金额", p.JiansheJine, "万元")
	num("feijian_count", "非建领域项目", p.FeijianProjectCount, "")
	num("feijian_renshu", "非建领域涉及人数", p.FeijianRenshu, "人")
	num("feijian_jine", "非建领域涉及金额", p.FeijianJine, "万元")
	num("warning_count", "安心智享预警", p.AxzxYvjingCount, "")
	num("warning_case_total", "预警案件总数", p.WarningCaseTotal, "")
	num("unique_construction_units", "涉及施工单位", p.UniqueConstructionUnits, "")
	num("unique_projects", "涉及项目", p.UniqueProjects, "")
	return result
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ShowRow opens the modal with every field of a project row. index is the row's
// position in the table's current sort order.
func (d *Dashboard) ShowRow(tableID string, index int) error {
	rec, ok, err := d.Tables.Row(tableID, index)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoRow
	}
	fields := make([]Field, len(payload.ProjectFields))
	for i, f := range payload.ProjectFields {
		value := table.Placeholder(rec.Text(f))
		if payload.IsNumericField(f) {
			value = formatValue(rec.Number(f))
			if f == payload.FieldAmount {
				value += consts.CurrencySuffix
			}
		}
		fields[i] = Field{Label: table.ColumnLabel(f), Value: value}
	}
	d.Modal.Show(table.Placeholder(rec.ProjectName), fields)
	return nil
}
