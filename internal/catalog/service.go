package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/andresGon/cursor-pet/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the read operation the service needs from the content API.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

var ErrProductNotFound = errors.New("product not found")

// Service serves product listings to the presentation layer, going to the
// remote API only on cache misses.
type Service struct {
	fetcher Fetcher
	cache   ListingCache
	logger  *slog.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(fetcher Fetcher, cache ListingCache, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// Products returns the listing, optionally filtered by category slug. The
// filter is applied after retrieval, case-insensitively, matching how the
// storefront pages filter.
func (s *Service) Products(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	products, err := s.listing(ctx)
	if err != nil {
		return nil, err
	}

	if categorySlug == "" {
		return products, nil
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category.Slug, categorySlug) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Product resolves a single product by id from the listing.
func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := s.listing(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *Service) listing(ctx context.Context) ([]domain.Product, error) {
	// Use singleflight so concurrent cache misses trigger one upstream fetch
	v, err, _ := s.sfg.Do(listingKey, func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil // listing is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache get error", "error", err) // log cache error but continue
		}

		products, errFetch := s.fetcher.FetchProducts(ctx)
		if errFetch != nil {
			return nil, errFetch
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), products); errSet != nil {
				s.logger.Warn("cache set error", "error", errSet)
			}
		}()

		return products, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}
