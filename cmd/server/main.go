package main

import (
	"cmp"
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/upload"
	"github.com/robfig/cron/v3"
)

func startTasks(ctx context.Context, cfg *config.Config, store *dashboard.Store) error {
	c := cron.New(cron.WithLocation(time.UTC))
	// Drop dashboards nobody has looked at for a while
	_, err := c.AddFunc(cfg.Server.EvictSchedule, evictSessions(ctx, store, cfg.SessionTTL()))
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)

	// Dev-only routes (saved chart data and session listing)
	registerDevRoutes(r, a)

	r.Get("/", a.index)

	// Rate-limited upload endpoint, forwarded to the processing backend
	limiter := httprate.NewRateLimiter(a.cfg.Server.RateLimitRequests, consts.RateLimitWindow, httprate.WithKeyByIP())
	r.With(limiter.Handler).Post("/upload", a.upload)

	r.Route("/dashboards/{id}", func(r chi.Router) {
		r.Use(a.sessionCtx)
		r.Get("/", a.dashboard)
		r.Get("/download", a.download)
		r.Get("/charts.json", a.chartsJSON)
		r.Get("/tables/{table}", a.table)
		r.Get("/tables/{table}/rows/{index}", a.row)
		r.Get("/modal/close", a.closeModal)
	})
	return r
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load(cmp.Or(os.Getenv("CLUEDASH_CONFIG"), "cluedash.toml"))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Forwarding uploads to %s", cfg.Backend.URL)

	a := &app{
		cfg:    cfg,
		store:  dashboard.NewStore(),
		client: upload.NewClient(cfg.Backend.URL, cfg.RequestTimeout()),
	}
	if err := startTasks(ctx, cfg, a.store); err != nil {
		log.Fatal(err)
	}

	log.Print("Starting dashboard server on :" + cfg.Server.Port)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		ReadHeaderTimeout: consts.ReadHeaderTimeout,
		Handler:           newRouter(a),
	}
	err = server.ListenAndServe()
	if err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
