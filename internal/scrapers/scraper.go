// Package scrapers fetches tender notices from external procurement sites.
// Each source implements Scraper; the registry maps a task's tender type to
// the scrapers that serve it.
package scrapers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tenderwatch/backend/internal/models"
)

// ErrUnknownSource is returned when a tender type has no registered scraper
var ErrUnknownSource = errors.New("unknown tender source")

// Config carries HTTP settings shared by all scrapers. Zero values fall back
// to each scraper's defaults.
type Config struct {
	HTTPTimeout time.Duration
	UserAgent   string
}

// Scraper fetches the currently published tenders from one source
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) ([]models.Tender, error)
}

// Registry resolves a tender type to its scrapers
type Registry struct {
	scrapers map[string]Scraper
	order    []string
}

// NewRegistry creates a registry over the given scrapers, keyed by name
func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{scrapers: make(map[string]Scraper)}
	for _, s := range scrapers {
		if _, exists := r.scrapers[s.Name()]; exists {
			continue
		}
		r.scrapers[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r
}

// Resolve returns the scrapers for a tender type. The all-sources type fans
// out to every registered scraper in registration order.
func (r *Registry) Resolve(tenderType string) ([]Scraper, error) {
	if tenderType == models.TenderTypeAll {
		all := make([]Scraper, 0, len(r.order))
		for _, name := range r.order {
			all = append(all, r.scrapers[name])
		}
		return all, nil
	}

	s, exists := r.scrapers[tenderType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, tenderType)
	}
	return []Scraper{s}, nil
}
