//go:build !dev

package main

import "github.com/go-chi/chi/v5"

func registerDevRoutes(chi.Router, *app) {}
