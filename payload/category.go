package payload

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/laborwatch/cluedash/ranking"
)

// CategoryMap is a category->count mapping that remembers the key order of the JSON
// object it was decoded from. A nil CategoryMap means the field was absent.
type CategoryMap []ranking.CategoryCount

func (m *CategoryMap) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*m = nil
		return nil
	}
	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		log.Printf("Ignoring category map that is not an object: %v", err)
		*m = CategoryMap{}
		return nil
	}
	counts := make(CategoryMap, 0, len(om.Keys()))
	for _, key := range om.Keys() {
		v, _ := om.Get(key)
		counts = append(counts, ranking.CategoryCount{Name: key, Value: toCount(v)})
	}
	*m = counts
	return nil
}

func (m CategoryMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	om := orderedmap.New()
	for _, c := range m {
		om.Set(c.Name, c.Value)
	}
	return json.Marshal(om)
}

// Counts returns the entries in decoded order.
func (m CategoryMap) Counts() []ranking.CategoryCount {
	return []ranking.CategoryCount(m)
}

func (m CategoryMap) Get(name string) (float64, bool) {
	for _, c := range m {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

func (m CategoryMap) Keys() []string {
	return ranking.Names(m)
}

func (m CategoryMap) Len() int {
	return len(m)
}

// ZeroFilled returns a map with the same keys and every value set to 0.
func (m CategoryMap) ZeroFilled() CategoryMap {
	zero := make(CategoryMap, len(m))
	for i, c := range m {
		zero[i] = ranking.CategoryCount{Name: c.Name}
	}
	return zero
}

// toCount converts a decoded JSON value to a non-negative count. Anything that is not
// a number, or a string holding one, counts as 0.
func toCount(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	if f < 0 || f != f {
		return 0
	}
	return f
}
