// Package cache keeps the recently accepted options revisions in memory,
// backing the history endpoint and the notifier's retry payloads.
package cache

import (
	"sync"
	"time"

	cache_pkg "github.com/patrickmn/go-cache"
)

// Config contains configuration for the revision history
type Config struct {
	TTL        time.Duration `json:"ttl" yaml:"ttl" default:"24h"`                  // How long revisions stay recallable
	MaxEntries int           `json:"max_entries" yaml:"max_entries" default:"100"` // Bounded recall depth
}

// Revision is one accepted options document and where it came from.
type Revision struct {
	ID         string    `json:"revision"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
	Options    string    `json:"options"` // canonical JSON document
}

type Handler struct {
	client *cache_pkg.Cache

	mu    sync.Mutex
	order []string
	max   int
}

func New(cfg *Config) (*Handler, error) {
	client := cache_pkg.New(cfg.TTL, cfg.TTL/2)
	return &Handler{
		client: client,
		max:    cfg.MaxEntries,
	}, nil
}

func (h *Handler) Ping() (bool, error) {
	return true, nil
}

// Put records an accepted revision. The oldest entry is evicted once the
// bound is reached.
func (h *Handler) Put(rev Revision) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.client.Set(rev.ID, rev, cache_pkg.DefaultExpiration)
	h.order = append(h.order, rev.ID)
	if len(h.order) > h.max {
		evicted := h.order[0]
		h.order = h.order[1:]
		h.client.Delete(evicted)
	}
}

// Get returns the revision with the given id, if still recallable.
func (h *Handler) Get(id string) (Revision, bool) {
	v, found := h.client.Get(id)
	if !found {
		return Revision{}, false
	}
	rev, ok := v.(Revision)
	return rev, ok
}

// Recent returns up to limit revisions, newest first. Expired entries are
// skipped.
func (h *Handler) Recent(limit int) []Revision {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Revision, 0, limit)
	for i := len(h.order) - 1; i >= 0 && len(out) < limit; i-- {
		if v, found := h.client.Get(h.order[i]); found {
			if rev, ok := v.(Revision); ok {
				out = append(out, rev)
			}
		}
	}
	return out
}
