package scraper

import (
	"context"

	"urly/internal/models"
)

// Scraper defines the operations needed to watch listings of one provider
type Scraper interface {
	// CanHandle reports whether url is a listing of this provider
	CanHandle(url string) bool
	// ExtractIDs returns the provider identifiers of a listing URL
	ExtractIDs(url string) (shisya, danchi string, err error)
	// GetAvailability fetches the current vacancy data of a listing
	GetAvailability(ctx context.Context, shisya, danchi string) (*models.Availability, error)
	// GetName fetches the human readable name of a listing
	GetName(ctx context.Context, url string) (string, error)
}

// Registry keeps the available scrapers
type Registry struct {
	scrapers []Scraper
}

// NewRegistry creates a registry with the given scrapers, tried in order
func NewRegistry(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// FindScraper finds the scraper able to handle a URL
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}
