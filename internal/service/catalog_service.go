package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// CatalogService serves the public hotel catalog through a response cache.
type CatalogService struct {
	backend       port.CatalogBackend
	cache         port.Cache
	ttl           time.Duration
	imageEndpoint string
}

// NewCatalogService creates a catalog service. imageEndpoint is the public
// object-storage base used to resolve relative photo paths.
func NewCatalogService(backend port.CatalogBackend, cache port.Cache, ttl time.Duration, imageEndpoint string) *CatalogService {
	return &CatalogService{backend: backend, cache: cache, ttl: ttl, imageEndpoint: imageEndpoint}
}

// Hotels searches hotels; the query is forwarded to the backend unchanged.
func (s *CatalogService) Hotels(ctx context.Context, query url.Values, language string) (json.RawMessage, error) {
	key := "hotels:" + language + ":" + query.Encode()
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.backend.Hotels(ctx, query, language)
	})
}

func (s *CatalogService) RecommendedHotels(ctx context.Context, language string) (json.RawMessage, error) {
	return s.cached(ctx, "recommend:"+language, func() (json.RawMessage, error) {
		return s.backend.RecommendedHotels(ctx, language)
	})
}

// Hotel returns a hotel with every photo path resolved to an absolute URL.
func (s *CatalogService) Hotel(ctx context.Context, id, language string) (*domain.Hotel, error) {
	raw, err := s.cached(ctx, "hotel:"+id+":"+language, func() (json.RawMessage, error) {
		return s.backend.Hotel(ctx, id, language)
	})
	if err != nil {
		return nil, err
	}

	var h domain.Hotel
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode hotel %s: %w", id, err)
	}
	h.ResolveImages(s.imageEndpoint)
	return &h, nil
}

// cached returns the cached payload for key or fetches and stores it.
// Cache failures degrade to a direct fetch.
func (s *CatalogService) cached(ctx context.Context, key string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
	} else if ok {
		return json.RawMessage(b), nil
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return data, nil
}
