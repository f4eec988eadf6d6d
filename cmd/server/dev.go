//go:build dev

package main

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

func registerDevRoutes(r chi.Router, a *app) {
	// Chart data exported by dashctl into the data folder
	dir := filepath.Join(a.cfg.Data.Folder, "chartdata")
	r.Handle("/chartdata/*", http.StripPrefix("/chartdata/", http.FileServer(http.Dir(dir))))

	r.Get("/debug/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"sessions": a.store.Len()})
	})
}
