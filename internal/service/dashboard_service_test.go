package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

func TestDashboardSummary(t *testing.T) {
	b := &fakeBackend{tripsFn: func(string, url.Values) (json.RawMessage, error) {
		return json.RawMessage(`{"items":[{"id":3,"status":"paid"}],"total":12}`), nil
	}}
	svc := NewDashboardService(b, NewTripService(b))

	sum, err := svc.Summary(context.Background(), loggedIn())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.User.ID != 7 || sum.TotalTrips != 12 || len(sum.RecentTrips) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestDashboardSummaryPropagatesFailure(t *testing.T) {
	b := &fakeBackend{
		meFn: func(string) (*domain.User, error) { return nil, &port.BackendError{Status: 401} },
		tripsFn: func(string, url.Values) (json.RawMessage, error) {
			return json.RawMessage(`[]`), nil
		},
	}
	_, err := NewDashboardService(b, NewTripService(b)).Summary(context.Background(), loggedIn())
	if !errors.Is(err, port.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}
