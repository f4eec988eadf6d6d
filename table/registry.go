package table

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/laborwatch/cluedash/payload"
)

var ErrUnknownTable = errors.New("unknown table")

// Registry owns the tables of one dashboard, keyed by table id. Tables are created on
// first render, mutated by sort and page requests, and destroyed with the dashboard
// or when fresh data replaces them.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Create adds a table unless one with the same id exists. It reports whether a new
// table was created.
func (r *Registry) Create(id string, rows []payload.ProjectRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; ok {
		return false
	}
	r.tables[id] = New(id, rows)
	r.order = append(r.order, id)
	return true
}

// Replace discards any existing state for id and starts over from rows.
func (r *Registry) Replace(id string, rows []payload.ProjectRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		r.order = append(r.order, id)
	}
	r.tables[id] = New(id, rows)
}

// Get returns a snapshot of the table. Changes to the snapshot do not reach the registry.
func (r *Registry) Get(id string) (*Table, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return nil, false
	}
	snapshot := *t
	return &snapshot, true
}

func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
}

// IDs returns the table ids in creation order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

func (r *Registry) State(id string) (State, error) {
	var s State
	err := r.with(id, func(t *Table) error {
		s = t.State()
		return nil
	})
	return s, err
}

func (r *Registry) View(id string) (Page, error) {
	var p Page
	err := r.with(id, func(t *Table) error {
		p = t.View()
		return nil
	})
	return p, err
}

// Sort applies a header click to the table and returns the new first page.
func (r *Registry) Sort(id, field string) (Page, error) {
	var p Page
	err := r.with(id, func(t *Table) error {
		if err := t.SortBy(field); err != nil {
			return err
		}
		p = t.View()
		return nil
	})
	return p, err
}

// GoTo applies a pagination click. The returned bool is false when the page was out
// of range and nothing changed.
func (r *Registry) GoTo(id string, page int) (Page, bool, error) {
	var p Page
	var moved bool
	err := r.with(id, func(t *Table) error {
		moved = t.GoTo(page)
		p = t.View()
		return nil
	})
	return p, moved, err
}

// Row returns a row of the table in its current sort order.
func (r *Registry) Row(id string, index int) (payload.ProjectRecord, bool, error) {
	var rec payload.ProjectRecord
	var ok bool
	err := r.with(id, func(t *Table) error {
		rec, ok = t.Row(index)
		return nil
	})
	return rec, ok, err
}

func (r *Registry) with(id string, fn func(*Table) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, id)
	}
	return fn(t)
}
