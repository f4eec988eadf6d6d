package dashboard

import "slices"

// Container ids of the dashboard page. Chart ids double as go-echarts chart ids and
// end up in JavaScript identifiers, so they use underscores.
const (
	BasicInfo = "basic_info"
	Counters  = "counters"
	Sources   = "source_table"

	DistrictRanking        = "district_ranking"
	JiansheDistrictRanking = "jianshe_district_ranking"
	FeijianDistrictRanking = "feijian_district_ranking"
	WarningDistrictRanking = "warning_district_ranking"

	DistrictPieChart        = "district_pie_chart"
	DistrictChart           = "district_chart"
	JiansheDistrictPieChart = "jianshe_district_pie_chart"
	JiansheDistrictChart    = "jianshe_district_chart"
	FeijianDistrictPieChart = "feijian_district_pie_chart"
	FeijianDistrictChart    = "feijian_district_chart"
	WarningDistrictPieChart = "warning_district_pie_chart"
	WarningDistrictChart    = "warning_district_chart"

	SourceChart          = "source_chart"
	JiansheIndustryChart = "jianshe_industry_chart"
	FeijianIndustryChart = "feijian_industry_chart"
	WarningIndustryChart = "warning_industry_chart"
	WarningStatusChart   = "warning_status_chart"
	WarningTypesChart    = "warning_types_chart"
	ProjectNatureChart   = "project_nature_chart"

	JiansheSourceChart   = "jianshe_source_chart"
	JiansheCategoryChart = "jianshe_category_chart"
	JiansheNatureChart   = "jianshe_nature_chart"
	JiansheScatterChart  = "jianshe_scatter_chart"
	FeijianSourceChart   = "feijian_source_chart"
	FeijianScatterChart  = "feijian_scatter_chart"

	JiansheLargeProjects = "jianshe_large_projects"
	FeijianLargeProjects = "feijian_large_projects"
)

// Layout is the set of containers a page provides. Widgets whose container is not in
// the layout are skipped.
type Layout map[string]bool

// NewLayout builds a layout from container ids.
func NewLayout(ids ...string) Layout {
	l := make(Layout, len(ids))
	for _, id := range ids {
		l[id] = true
	}
	return l
}

// DefaultLayout is the full dashboard page.
func DefaultLayout() Layout {
	return NewLayout(
		BasicInfo, Counters, Sources,
		DistrictRanking, JiansheDistrictRanking, FeijianDistrictRanking, WarningDistrictRanking,
		DistrictPieChart, DistrictChart,
		JiansheDistrictPieChart, JiansheDistrictChart,
		FeijianDistrictPieChart, FeijianDistrictChart,
		WarningDistrictPieChart, WarningDistrictChart,
		SourceChart, JiansheIndustryChart, FeijianIndustryChart,
		WarningIndustryChart, WarningStatusChart, WarningTypesChart, ProjectNatureChart,
		JiansheSourceChart, JiansheCategoryChart, JiansheNatureChart, JiansheScatterChart,
		FeijianSourceChart, FeijianScatterChart,
		JiansheLargeProjects, FeijianLargeProjects,
	)
}

func (l Layout) Has(id string) bool {
	return l[id]
}

// Without returns a copy of the layout minus ids.
func (l Layout) Without(ids ...string) Layout {
	result := make(Layout, len(l))
	for id := range l {
		if !slices.Contains(ids, id) {
			result[id] = true
		}
	}
	return result
}
