package charts

import (
	"strconv"
	"unicode/utf8"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/ranking"
)

// ShortName cuts names longer than n runes and appends consts.EllipsisSuffix.
func ShortName(name string, n int) string {
	if utf8.RuneCountInString(name) <= n {
		return name
	}
	return string([]rune(name)[:n]) + consts.EllipsisSuffix
}

func initOpts(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   consts.ChartWidth,
		Height:  consts.ChartHeight,
	})
}

// DistrictBar builds a bar chart over the fixed district list. Districts missing from
// counts show as 0 and every bar tied at the maximum is drawn in consts.MaxColor.
func DistrictBar(id, seriesName string, counts []ranking.CategoryCount, color string) *charts.Bar {
	projected := ranking.Project(counts, ranking.Districts())
	maxes := ranking.MarkMax(projected)

	data := make([]opts.BarData, len(projected))
	for i, c := range projected {
		barColor := color
		if maxes[i] {
			barColor = consts.MaxColor
		}
		data[i] = opts.BarData{
			Name:      c.Name,
			Value:     c.Value,
			ItemStyle: &opts.ItemStyle{Color: barColor},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(id),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Interval: "0",
				Rotate:   45,
				Color:    consts.ChartTextColor,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:         "value",
			Name:         seriesName,
			NameLocation: "middle",
			NameGap:      40,
			AxisLabel: &opts.AxisLabel{
				Color: consts.ChartTextColor,
			},
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   "3%",
			Right:  "4%",
			Top:    "20%",
			Bottom: "20%",
		}),
	)

	bar.SetXAxis(ranking.Names(projected)).
		AddSeries(seriesName, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	return bar
}

// DistrictPie builds a ring chart over the fixed district list. Slices tied at the
// maximum are red, the others take consts.DistrictPalette by position.
func DistrictPie(id, title string, counts []ranking.CategoryCount) *charts.Pie {
	projected := ranking.Project(counts, ranking.Districts())
	maxes := ranking.MarkMax(projected)

	data := make([]opts.PieData, len(projected))
	for i, c := range projected {
		color := consts.DistrictPalette[i%len(consts.DistrictPalette)]
		if maxes[i] {
			color = consts.MaxColor
		}
		data[i] = opts.PieData{
			Name:      c.Name,
			Value:     c.Value,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(id),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: consts.ChartTextColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{a} <br/>{b}: {c} ({d}%)",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Left:   "left",
			Top:    "middle",
			Orient: "vertical",
		}),
	)

	pie.AddSeries("线索数量", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"40%", "70%"},
				Center: []string{"65%", "50%"},
			}),
		)

	return pie
}

// CategoryPie builds a ring chart of counts ranked in descending order. Colors cycle
// through palette and legend names are cut to consts.LegendNameMaxLen runes.
func CategoryPie(id, title, seriesName string, counts []ranking.CategoryCount, palette []string) *charts.Pie {
	ranked := ranking.Rank(counts)
	data := make([]opts.PieData, len(ranked))
	for i, e := range ranked {
		item := opts.PieData{
			Name:  ShortName(e.Name, consts.LegendNameMaxLen),
			Value: e.Value,
		}
		if len(palette) > 0 {
			item.ItemStyle = &opts.ItemStyle{Color: palette[i%len(palette)]}
		}
		data[i] = item
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(id),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: consts.ChartTextColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{a} <br/>{b}: {c} 条 ({d}%)",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Left:   "center",
			Bottom: "10",
			Orient: "horizontal",
			Type:   "scroll",
		}),
	)

	pie.AddSeries(seriesName, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"40%", "70%"},
				Center: []string{"50%", "45%"},
			}),
		)

	return pie
}

// Scatter plots people against amount per project. Averages, when present, are drawn
// as dashed mark lines.
func Scatter(id, title, color string, points []payload.ScatterPoint, peopleAvg, amountAvg *payload.Number) *charts.Scatter {
	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{
			Name:  strconv.FormatFloat(float64(p.ID), 'f', -1, 64),
			Value: []interface{}{float64(p.People), float64(p.Amount)},
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(id),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: consts.ChartTextColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         "涉及人数",
			NameLocation: "middle",
			NameGap:      30,
			AxisLabel: &opts.AxisLabel{
				Color: consts.ChartTextColor,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:         "value",
			Name:         "涉及金额",
			NameLocation: "middle",
			NameGap:      60,
			AxisLabel: &opts.AxisLabel{
				Color: consts.ChartTextColor,
			},
		}),
	)

	var seriesOpts []charts.SeriesOpts
	seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	if peopleAvg != nil {
		seriesOpts = append(seriesOpts, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
			Name:  "平均人数",
			XAxis: peopleAvg.Value(),
		}))
	}
	if amountAvg != nil {
		seriesOpts = append(seriesOpts, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  "平均金额",
			YAxis: amountAvg.Value(),
		}))
	}
	if peopleAvg != nil || amountAvg != nil {
		seriesOpts = append(seriesOpts, charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none"},
			LineStyle: &opts.LineStyle{Color: consts.AverageLineColor, Type: "dashed"},
		}))
	}

	scatter.AddSeries(title, data, seriesOpts...)
	return scatter
}
