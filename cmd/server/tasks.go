package main

import (
	"context"
	"log"
	"time"

	"github.com/laborwatch/cluedash/dashboard"
)

func evictSessions(_ context.Context, store *dashboard.Store, ttl time.Duration) func() {
	return func() {
		if n := store.Evict(ttl); n > 0 {
			log.Printf("Evicted %d idle dashboards, %d left", n, store.Len())
		}
	}
}
