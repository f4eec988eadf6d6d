package charts

import (
	"encoding/json"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/laborwatch/cluedash/consts"
)

// Chart is the part of a go-echarts chart the dashboard needs.
type Chart interface {
	Validate()
	JSON() map[string]interface{}
	RenderSnippet() render.ChartSnippet
}

// Registry holds the live charts of one dashboard by id, in insertion order. Adding a
// chart under an existing id replaces it, so re-rendering never leaves stale instances.
type Registry struct {
	mu     sync.Mutex
	charts map[string]Chart
	ids    []string
}

func NewRegistry() *Registry {
	return &Registry{charts: make(map[string]Chart)}
}

func (r *Registry) Add(id string, c Chart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.charts[id]; !ok {
		r.ids = append(r.ids, id)
	}
	r.charts[id] = c
}

func (r *Registry) Get(id string) (Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[id]
	return c, ok
}

func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ids)
}

// Charts returns the charts in insertion order.
func (r *Registry) Charts() []Chart {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Chart, len(r.ids))
	for i, id := range r.ids {
		result[i] = r.charts[id]
	}
	return result
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Reset drops every chart.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts = make(map[string]Chart)
	r.ids = nil
}

// Snippets renders the element and script of every chart, keyed by chart id.
func (r *Registry) Snippets() map[string]template.HTML {
	r.mu.Lock()
	ids := slices.Clone(r.ids)
	live := make([]Chart, len(ids))
	for i, id := range ids {
		live[i] = r.charts[id]
	}
	r.mu.Unlock()

	result := make(map[string]template.HTML, len(ids))
	for i, c := range live {
		s := c.RenderSnippet()
		result[ids[i]] = template.HTML(s.Element + "\n" + s.Script)
	}
	return result
}

// Options returns the validated echarts options of every chart in insertion order.
func (r *Registry) Options() []map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]map[string]interface{}, 0, len(r.ids))
	for _, id := range r.ids {
		c := r.charts[id]
		c.Validate()
		result = append(result, map[string]interface{}{"id": id, "options": c.JSON()})
	}
	return result
}

func (r *Registry) document() map[string]interface{} {
	return map[string]interface{}{
		"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		"charts":      r.Options(),
	}
}

// WriteJSON writes the document ExportJSON saves.
func (r *Registry) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.document())
}

// ExportJSON writes every chart configuration to consts.ChartsJSONFile in outputDir.
func (r *Registry) ExportJSON(outputDir string) (string, error) {
	jsonData, err := json.MarshalIndent(r.document(), "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, consts.DirPermissions); err != nil {
		return "", err
	}

	outputPath := filepath.Join(outputDir, consts.ChartsJSONFile)
	if err := os.WriteFile(outputPath, jsonData, consts.FilePermissions); err != nil {
		return "", err
	}

	log.Printf("Exported charts to %s", outputPath)
	return outputPath, nil
}
