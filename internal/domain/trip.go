package domain

import (
	"encoding/json"
	"errors"
)

// Trip statuses reported by the backend.
const (
	TripStatusDraft              = "draft"
	TripStatusWaitingForProposal = "waiting-for-proposal"
	TripStatusInProgress         = "in-progress"
	TripStatusWaitingForPayment  = "waiting-for-payment"
	TripStatusPaid               = "paid"
	TripStatusReadyToTravel      = "ready-to-travel"
	TripStatusTravelingNow       = "traveling-now"
	TripStatusTravelCompleted    = "travel-completed"
	TripStatusCanceled           = "canceled"
)

type Coupon struct {
	ID         int64   `json:"id"`
	Code       string  `json:"code"`
	Amount     float64 `json:"amount"`
	Membership string  `json:"membership"`
	EndDate    int64   `json:"end_date"`
	IsActive   bool    `json:"is_active"`
}

// Trip is an entry of GET /trip/list.
type Trip struct {
	ID                           int64    `json:"id"`
	UserID                       int64    `json:"user_id"`
	Destination                  string   `json:"destination,omitempty"`
	CoverImage                   string   `json:"cover_image,omitempty"`
	PresetDestinationCities      string   `json:"preset_destination_cities,omitempty"`
	PresetDestinationCitiesNames string   `json:"preset_destination_cities_names,omitempty"`
	CustomDestinationCities      string   `json:"custom_destination_cities,omitempty"`
	StartTime                    int64    `json:"start_time,omitempty"`
	EndTime                      int64    `json:"end_time,omitempty"`
	StartDate                    string   `json:"start_date,omitempty"`
	EndDate                      string   `json:"end_date,omitempty"`
	Timezone                     string   `json:"timezone,omitempty"`
	Adults                       int      `json:"adults"`
	Kids                         int      `json:"kids"`
	Purpose                      string   `json:"purpose"`
	ServiceType                  string   `json:"service_type,omitempty"`
	FlightOptions                []string `json:"flight_options,omitempty"`
	AdditionalServices           []string `json:"additional_services,omitempty"`
	Budget                       float64  `json:"budget,omitempty"`
	Coupon                       *Coupon  `json:"coupon,omitempty"`
	Status                       string   `json:"status"`
	ProposalStatus               string   `json:"proposal_status,omitempty"`
	HasComments                  bool     `json:"has_comments"`
	IsShared                     bool     `json:"is_shared,omitempty"`
	HasUnreadJournalMessages     bool     `json:"has_unread_journal_messages,omitempty"`
}

type TravelPlanItem struct {
	ID                 int64   `json:"id"`
	TripID             int64   `json:"trip_id"`
	TravelPlanID       int64   `json:"travel_plan_id"`
	CategoryType       string  `json:"category_type,omitempty"`
	CategoryName       string  `json:"category_name,omitempty"`
	EstimatedCost      float64 `json:"estimated_cost,omitempty"`
	City               string  `json:"city,omitempty"`
	Location           string  `json:"location,omitempty"`
	Lat                float64 `json:"lat,omitempty"`
	Lng                float64 `json:"lng,omitempty"`
	StartTime          string  `json:"start_time,omitempty"`
	StartTimeTimestamp int64   `json:"start_time_timestamp,omitempty"`
	Description        string  `json:"description,omitempty"`
	SystemHotelID      int64   `json:"system_hotel_id,omitempty"`
	UserReviewStatus   string  `json:"user_review_status,omitempty"`
	UserRating         float64 `json:"user_rating,omitempty"`
}

// TravelPlan is one day of an itinerary.
type TravelPlan struct {
	ID         int64            `json:"id"`
	TripID     int64            `json:"trip_id"`
	ProposalID int64            `json:"proposal_id"`
	Sort       int              `json:"sort"`
	Date       int64            `json:"date"`
	DayTopic   string           `json:"day_topic,omitempty"`
	Cover      string           `json:"cover,omitempty"`
	Items      []TravelPlanItem `json:"items"`
}

type Proposal struct {
	ID           int64   `json:"id"`
	TripID       int64   `json:"trip_id"`
	Language     string  `json:"language"`
	Adults       int     `json:"adults"`
	Kids         int     `json:"kids"`
	Purpose      string  `json:"purpose"`
	FlightCost   float64 `json:"flight_cost,omitempty"`
	StayingCost  float64 `json:"staying_cost,omitempty"`
	ActivityCost float64 `json:"activity_cost,omitempty"`
	OtherCost    float64 `json:"other_cost,omitempty"`
	CouponCost   float64 `json:"coupon_cost,omitempty"`
	TotalCost    float64 `json:"total_cost,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// TripDetail is GET /trip/{id}; travel plans live on the trip, not the proposal.
type TripDetail struct {
	Trip
	UserEmail     string       `json:"user_email,omitempty"`
	PaidAmount    float64      `json:"paid_amount,omitempty"`
	PendingAmount float64      `json:"pending_amount,omitempty"`
	Proposal      *Proposal    `json:"proposal,omitempty"`
	TravelPlans   []TravelPlan `json:"travel_plans,omitempty"`
}

// TripList normalizes the trip list payload, which the backend returns either
// as a bare array or as an object wrapping the items.
type TripList struct {
	Items []Trip `json:"items"`
	Total int    `json:"total"`
}

func (l *TripList) UnmarshalJSON(b []byte) error {
	var items []Trip
	if err := json.Unmarshal(b, &items); err == nil {
		l.Items = items
		l.Total = len(items)
		return nil
	}

	var obj struct {
		Items []Trip `json:"items"`
		Trips []Trip `json:"trips"`
		List  []Trip `json:"list"`
		Total *int   `json:"total"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("trip list: unsupported payload")
	}
	switch {
	case obj.Items != nil:
		l.Items = obj.Items
	case obj.Trips != nil:
		l.Items = obj.Trips
	default:
		l.Items = obj.List
	}
	if l.Items == nil {
		l.Items = []Trip{}
	}
	l.Total = len(l.Items)
	if obj.Total != nil {
		l.Total = *obj.Total
	}
	return nil
}
