package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// TripService reads the signed-in user's trips.
type TripService struct {
	backend port.TripBackend
}

func NewTripService(backend port.TripBackend) *TripService {
	return &TripService{backend: backend}
}

// Trips proxies the trip list with the caller's query.
func (s *TripService) Trips(ctx context.Context, sess *domain.Session, query url.Values) (json.RawMessage, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	return s.backend.Trips(ctx, sess.AccessToken, query)
}

// Trip returns one trip's detail.
func (s *TripService) Trip(ctx context.Context, sess *domain.Session, id string) (json.RawMessage, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	return s.backend.Trip(ctx, sess.AccessToken, id)
}

// Page returns a typed page of trips.
func (s *TripService) Page(ctx context.Context, sess *domain.Session, page, perPage int) (*domain.TripList, error) {
	raw, err := s.Trips(ctx, sess, url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	})
	if err != nil {
		return nil, err
	}
	var list domain.TripList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode trip list: %w", err)
	}
	return &list, nil
}
