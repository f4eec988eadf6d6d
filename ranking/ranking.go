package ranking

import (
	"cmp"
	"slices"

	"github.com/laborwatch/cluedash/consts"
)

// CategoryCount is a named group and its count.
type CategoryCount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// RankedEntry is a CategoryCount with its 1-based position in a descending ranking.
type RankedEntry struct {
	CategoryCount
	Rank int  `json:"rank"`
	Top  bool `json:"top"` // one of the first consts.TopRankCount entries
	Max  bool `json:"max"` // tied at the maximum value
}

var districts = []string{
	"宜都市", "枝江市", "当阳市", "远安县", "兴山县",
	"秭归县", "长阳县", "五峰县", "夷陵区", "西陵区",
	"伍家岗区", "点军区", "猇亭区", "高新区",
}

// Districts returns the fixed display order of the 14 districts. The returned slice
// is a copy and may be modified by the caller.
func Districts() []string {
	return slices.Clone(districts)
}

// Rank orders counts by value descending. Entries with equal values keep their input
// order. The input slice is not modified.
func Rank(counts []CategoryCount) []RankedEntry {
	if len(counts) == 0 {
		return []RankedEntry{}
	}
	sorted := slices.Clone(counts)
	slices.SortStableFunc(sorted, func(a, b CategoryCount) int {
		return cmp.Compare(b.Value, a.Value)
	})

	maxFlags := MarkMax(sorted)
	result := make([]RankedEntry, len(sorted))
	for i, c := range sorted {
		result[i] = RankedEntry{
			CategoryCount: c,
			Rank:          i + 1,
			Top:           i < consts.TopRankCount,
			Max:           maxFlags[i],
		}
	}
	return result
}

// Project maps sparse counts onto the canonical names, in canonical order. Names
// missing from counts get 0, names not in canonical are dropped.
func Project(counts []CategoryCount, canonical []string) []CategoryCount {
	lookup := make(map[string]float64, len(counts))
	for _, c := range counts {
		lookup[c.Name] = c.Value
	}
	result := make([]CategoryCount, len(canonical))
	for i, name := range canonical {
		result[i] = CategoryCount{Name: name, Value: lookup[name]}
	}
	return result
}

// MarkMax flags every entry whose value equals the maximum. All tied maxima are
// flagged, not just the first one.
func MarkMax(counts []CategoryCount) []bool {
	flags := make([]bool, len(counts))
	if len(counts) == 0 {
		return flags
	}
	maxValue := slices.MaxFunc(counts, func(a, b CategoryCount) int {
		return cmp.Compare(a.Value, b.Value)
	}).Value
	for i, c := range counts {
		flags[i] = c.Value == maxValue
	}
	return flags
}

// Total sums all values.
func Total(counts []CategoryCount) float64 {
	var total float64
	for _, c := range counts {
		total += c.Value
	}
	return total
}

// Names returns the names in order, for chart axes and legends.
func Names(counts []CategoryCount) []string {
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Name
	}
	return names
}
