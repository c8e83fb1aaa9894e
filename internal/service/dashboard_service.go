package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// DashboardSummary is what the dashboard landing page shows.
type DashboardSummary struct {
	User        domain.User   `json:"user"`
	RecentTrips []domain.Trip `json:"recent_trips"`
	TotalTrips  int           `json:"total_trips"`
}

// RecentTripCount is the number of trips shown on the dashboard.
const RecentTripCount = 5

// DashboardService assembles the dashboard summary.
type DashboardService struct {
	auth  port.AuthBackend
	trips *TripService
}

func NewDashboardService(auth port.AuthBackend, trips *TripService) *DashboardService {
	return &DashboardService{auth: auth, trips: trips}
}

// Summary fetches the identity and the first trip page concurrently.
func (s *DashboardService) Summary(ctx context.Context, sess *domain.Session) (*DashboardSummary, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}

	var (
		user  *domain.User
		trips *domain.TripList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.auth.Me(gctx, sess.AccessToken)
		if err != nil {
			return fmt.Errorf("dashboard user: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		l, err := s.trips.Page(gctx, sess, 1, RecentTripCount)
		if err != nil {
			return fmt.Errorf("dashboard trips: %w", err)
		}
		trips = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardSummary{User: *user, RecentTrips: trips.Items, TotalTrips: trips.Total}, nil
}
