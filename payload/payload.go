package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
)

var (
	ErrNoPayload = errors.New("no dashboard payload")
	ErrMalformed = errors.New("malformed dashboard payload")
)

// Number decodes leniently: numbers, numeric strings and null are accepted, anything
// else becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	switch t := v.(type) {
	case float64:
		*n = Number(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			f = 0
		}
		*n = Number(f)
	default:
		*n = 0
	}
	return nil
}

func (n *Number) Value() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

// Text decodes strings as is and numbers in their shortest form. Anything else is "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*t = ""
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = Text(x)
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		*t = ""
	}
	return nil
}

type ScatterPoint struct {
	ID     Number `json:"id"`
	People Number `json:"people"`
	Amount Number `json:"amount"`
}

// Payload is the aggregate data the processing backend sends in the
// X-Dashboard-Data header. Every field is optional.
type Payload struct {
	Datetime  Text `json:"datetime,omitempty"`
	BasicInfo Text `json:"basic_info,omitempty"`

	XiansuoCount          *Number `json:"xiansuo_count,omitempty"`
	XiansuoBupingtaiCount *Number `json:"xiansuo_bupingtai_count,omitempty"`
	Xiansuo12345Count     *Number `json:"xiansuo_12345_count,omitempty"`
	Yirenduosu            Text    `json:"yirenduosu,omitempty"`
	Duorenyisu            Text    `json:"duorenyisu,omitempty"`
	ZaicitousuCount       *Number `json:"zaicitousu_count,omitempty"`
	XiansuoCountTop3      Text    `json:"xiansuo_count_top3,omitempty"`

	JiansheProjectCount *Number `json:"jianshe_project_count,omitempty"`
	JiansheRenshu       *Number `json:"jianshe_renshu,omitempty"`
	JiansheJine         *Number `json:"jianshe_jine,omitempty"`
	FeijianProjectCount *Number `json:"feijian_project_count,omitempty"`
	FeijianRenshu       *Number `json:"feijian_renshu,omitempty"`
	FeijianJine         *Number `json:"feijian_jine,omitempty"`
	AxzxYvjingCount     *Number `json:"axzx_yvjing_count,omitempty"`

	WarningCaseTotal        *Number `json:"warning_case_total,omitempty"`
	UniqueConstructionUnits *Number `json:"unique_construction_units,omitempty"`
	UniqueProjects          *Number `json:"unique_projects,omitempty"`

	FeijianIndustryData   CategoryMap `json:"feijian_industry_data,omitempty"`
	WarningIndustryCounts CategoryMap `json:"warning_industry_counts,omitempty"`
	WarningStatusCounts   CategoryMap `json:"warning_status_counts,omitempty"`
	IndustryCounts        CategoryMap `json:"industry_counts,omitempty"`
	FeijianIndustryCounts CategoryMap `json:"feijian_industry_counts,omitempty"`
	WarningTypes          CategoryMap `json:"warning_types,omitempty"`
	ProjectNatureCounts   CategoryMap `json:"project_nature_counts,omitempty"`
	EventSourceCounts     CategoryMap `json:"event_source_counts,omitempty"`

	DistrictCounts        CategoryMap `json:"district_counts,omitempty"`
	JiansheDistrictCounts CategoryMap `json:"jianshe_district_counts,omitempty"`
	FeijianDistrictCounts CategoryMap `json:"feijian_district_counts,omitempty"`
	WarningDistrictCounts CategoryMap `json:"warning_district_counts,omitempty"`

	JiansheEventSourceCounts   CategoryMap    `json:"jianshe_event_source_counts,omitempty"`
	JiansheIndustryCounts      CategoryMap    `json:"jianshe_industry_counts,omitempty"`
	JiansheProjectNatureCounts CategoryMap    `json:"jianshe_project_nature_counts,omitempty"`
	JiansheScatterData         []ScatterPoint `json:"jianshe_scatter_data,omitempty"`
	JianshePeopleAvg           *Number        `json:"jianshe_people_avg,omitempty"`
	JiansheAmountAvg           *Number        `json:"jianshe_amount_avg,omitempty"`

	FeijianEventSourceCounts CategoryMap    `json:"feijian_event_source_counts,omitempty"`
	FeijianScatterData       []ScatterPoint `json:"feijian_scatter_data,omitempty"`
	FeijianPeopleAvg         *Number        `json:"feijian_people_avg,omitempty"`
	FeijianAmountAvg         *Number        `json:"feijian_amount_avg,omitempty"`

	JiansheLargeProjects []ProjectRecord `json:"jianshe_large_projects,omitempty"`
	FeijianLargeProjects []ProjectRecord `json:"feijian_large_projects,omitempty"`
}

// Decode parses the header value. An empty value yields ErrNoPayload, a value that
// is not a JSON object yields an error wrapping ErrMalformed. Fields that fail to
// decode are logged and skipped so the rest of the payload still renders.
func Decode(raw string) (*Payload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoPayload
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return &p, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	p = Payload{}
	for key, value := range fields {
		field, err := json.Marshal(map[string]json.RawMessage{key: value})
		if err != nil {
			log.Printf("Ignoring dashboard field %s: %v", key, err)
			continue
		}
		if err := json.Unmarshal(field, &p); err != nil {
			log.Printf("Ignoring dashboard field %s: %v", key, err)
		}
	}
	return &p, nil
}

// Normalize fills the per-domain district maps that the backend may omit with
// zeros over the keys of DistrictCounts.
func (p *Payload) Normalize() {
	if p.JiansheDistrictCounts == nil {
		p.JiansheDistrictCounts = p.DistrictCounts.ZeroFilled()
	}
	if p.FeijianDistrictCounts == nil {
		p.FeijianDistrictCounts = p.DistrictCounts.ZeroFilled()
	}
	if p.WarningDistrictCounts == nil {
		p.WarningDistrictCounts = p.DistrictCounts.ZeroFilled()
	}
}

// BasicInfoLines splits the free text overview into its lines.
func (p *Payload) BasicInfoLines() []string {
	if p.BasicInfo == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(string(p.BasicInfo), "\r\n", "\n"), "\n")
}
