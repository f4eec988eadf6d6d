package consts

import "time"

// Server configuration
const (
	DefaultPort       = "8080"
	DefaultBackendURL = "http://localhost:8000"
	ReadHeaderTimeout = 3 * time.Second
	RateLimitRequests = 10
	RateLimitWindow   = time.Minute
	MaxUploadBytes    = 64 << 20
)

// Cron schedules
const (
	CronEvictSessions = "*/10 * * * *" // Every 10 minutes
)

// Session lifetime
const (
	SessionTTL = 2 * time.Hour
)

// Processing backend contract
const (
	ProcessPath         = "/process_files/"
	Field12345          = "file_12345"
	FieldAnxin          = "file_anxin"
	DashboardDataHeader = "X-Dashboard-Data"
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DefaultFileSuffix   = "劳动监察线索汇总和统计.xlsx"
	FileDateFormat      = "20060102"
	RequestTimeout      = 5 * time.Minute
)

// User-facing messages
const (
	MsgSuccess      = "处理成功！文件已开始下载。"
	MsgServerError  = "处理文件时发生错误。"
	MsgNetworkError = "网络错误，请检查您的连接后重试。"
	MsgTimeoutError = "请求超时，请稍后重试。"
	MsgMissingFile  = "请同时选择12345热线文件和安心薪预警文件。"
	MsgBusy         = "文件正在处理中，请稍候。"
)

// Progress indicator timing. The processing animation is cosmetic only.
const (
	SimulatedStart    = 50
	SimulatedEnd      = 99
	SimulatedInterval = 50 * time.Millisecond
	ResetDelay        = 500 * time.Millisecond
	HideDelay         = 1 * time.Second
)

// Table engine
const (
	PageSize         = 10
	PageWindowRadius = 2
	MinPageButtons   = 5
	EmptyCell        = "--"
	CurrencySuffix   = "元"
	NoDataText       = "暂无数据"
	TopRankCount     = 3
	SourceNameMaxLen = 20
	LegendNameMaxLen = 10
	EllipsisSuffix   = "..."
	BasicInfoHeading = "基本情况概述："
)

// File paths and directories
const (
	ChartsJSONFile  = "charts.json"
	DashboardFile   = "dashboard.html"
	PayloadFile     = "payload.json"
	DirPermissions  = 0750
	FilePermissions = 0600
)

// Chart configuration
const (
	ChartWidth       = "100%"
	ChartHeight      = "400px"
	PageTitle        = "劳动监察线索数据看板"
	MaxColor         = "#dc3545"
	ChartTextColor   = "#333333"
	AverageLineColor = "#FF9F40"
	EChartsAssetURL  = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
)

// Series colors for the district bar charts
const (
	ColorDistrict = "#4BC0C0"
	ColorJianshe  = "#28a745"
	ColorFeijian  = "#9966FF"
	ColorWarning  = "#FF6384"
)

// DistrictPalette colors district pie slices that are not the maximum.
var DistrictPalette = []string{
	"#36A2EB", "#FF6384", "#FFCE56", "#4BC0C0",
	"#9966FF", "#FF9F40", "#C7C7C7", "#5366FF",
	"#FF9F7F", "#FFD700", "#87CEFA", "#98FB98",
	"#DDA0DD", "#FFB6C1",
}

// SourcePalette colors the clue source pie.
var SourcePalette = []string{
	"#36A2EB", "#FF6384", "#FFCE56", "#4BC0C0",
	"#9966FF", "#FF9F40", "#C9CBCF", "#F9F9F9",
}

// IndustryPalette colors the industry pies.
var IndustryPalette = []string{
	"#9966FF", "#C2B8FF", "#A569BD", "#8E44AD",
	"#BB8FCE", "#D2B4DE", "#E8DAEF", "#F5EEF8",
}

// JiansheIndustryPalette and FeijianIndustryPalette color the per-domain industry rings.
var (
	JiansheIndustryPalette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF"}
	FeijianIndustryPalette = []string{"#FF9F40", "#C7C7C7", "#5366FF", "#FF6384", "#36A2EB"}
)
