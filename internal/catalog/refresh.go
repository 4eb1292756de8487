package catalog

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Refresher republishes the catalog from a Loader on a fixed interval.
type Refresher struct {
	Store    *Store
	Loader   Loader
	Interval time.Duration
}

// Reload loads a full list and publishes it. On error, or when the loader
// returns nothing, the current snapshot stays in place.
func (r *Refresher) Reload(ctx context.Context) (int, error) {
	entries, err := r.Loader.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("catalog source returned no entries")
	}
	r.Store.Refresh(entries)
	return len(entries), nil
}

// LoadInitial fills an empty store, falling back to the built-in list.
func (r *Refresher) LoadInitial(ctx context.Context) {
	n, err := r.Reload(ctx)
	if err == nil {
		log.Printf("catalog: loaded %d entries", n)
		return
	}
	log.Printf("catalog: load failed: %v", err)
	if r.Store.Len() == 0 {
		r.Store.Refresh(FallbackEntries())
		log.Printf("catalog: using built-in price list (%d entries)", r.Store.Len())
	}
}

// Run blocks until ctx is done. A zero interval disables periodic reloads.
func (r *Refresher) Run(ctx context.Context) {
	if r.Interval <= 0 {
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := r.Reload(ctx)
			if err != nil {
				log.Printf("catalog: refresh failed, keeping %d entries: %v", r.Store.Len(), err)
				continue
			}
			log.Printf("catalog: refreshed, %d entries", n)
		}
	}
}
