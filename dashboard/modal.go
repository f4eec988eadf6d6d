package dashboard

import (
	"slices"
	"sync"
)

// Field is one labeled value in the modal.
type Field struct {
	Label string
	Value string
}

// Modal is the row-detail dialog of a dashboard. Callers open and close it directly.
type Modal struct {
	mu      sync.Mutex
	visible bool
	title   string
	fields  []Field
}

func (m *Modal) Show(title string, fields []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = true
	m.title = title
	m.fields = slices.Clone(fields)
}

func (m *Modal) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = false
	m.title = ""
	m.fields = nil
}

func (m *Modal) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Content returns the title and fields shown, or zero values when hidden.
func (m *Modal) Content() (string, []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title, slices.Clone(m.fields)
}
