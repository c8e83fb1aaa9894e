package domain

import "strings"

// PlaceholderImage is served when a hotel has no usable image.
const PlaceholderImage = "/placeholder.jpg"

// City is the backend's city reference; it carries no country.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReviewSummary aggregates reviews on a 0-5 scale.
type ReviewSummary struct {
	ID                 int64          `json:"id"`
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution,omitempty"`
}

type Activity struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Image         string         `json:"image,omitempty"`
	ReviewSummary *ReviewSummary `json:"review_summary,omitempty"`
}

type Restaurant struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Hotel is a hotel as returned by GET /hotel/{id}.
type Hotel struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	CityID         int64          `json:"city_id"`
	City           *City          `json:"city,omitempty"`
	StarRating     string         `json:"star_rating,omitempty"`
	Address        string         `json:"address,omitempty"`
	Latitude       float64        `json:"latitude,omitempty"`
	Longitude      float64        `json:"longitude,omitempty"`
	Description    string         `json:"description,omitempty"`
	Image          []string       `json:"image,omitempty"`
	AvailableRooms []string       `json:"available_rooms,omitempty"`
	Content        string         `json:"content,omitempty"`
	Language       string         `json:"language"`
	ReviewSummary  *ReviewSummary `json:"review_summary,omitempty"`

	TransfersAvailable   bool     `json:"transfers_available,omitempty"`
	TransferVehicleTypes string   `json:"transfer_vehicle_types,omitempty"`
	TransferCapacity     int      `json:"transfer_capacity,omitempty"`
	TransferDescription  string   `json:"transfer_description,omitempty"`
	TransferPhotos       []string `json:"transfer_photos,omitempty"`

	SpaAvailable          bool     `json:"spa_available,omitempty"`
	SpaIncludedFacilities []string `json:"spa_included_facilities,omitempty"`
	SpaTreatmentName      string   `json:"spa_treatment_name,omitempty"`
	SpaTreatmentType      string   `json:"spa_treatment_type,omitempty"`
	SpaDuration           int      `json:"spa_duration,omitempty"`
	SpaDescription        string   `json:"spa_description,omitempty"`
	SpaPhotos             []string `json:"spa_photos,omitempty"`

	SpecialExperienceAvailable   bool     `json:"special_experience_available,omitempty"`
	SpecialExperienceTitle       string   `json:"special_experience_title,omitempty"`
	SpecialExperienceType        string   `json:"special_experience_type,omitempty"`
	SpecialExperienceDuration    int      `json:"special_experience_duration,omitempty"`
	SpecialExperienceDescription string   `json:"special_experience_description,omitempty"`
	SpecialExperiencePhotos      []string `json:"special_experience_photos,omitempty"`

	Activities  []Activity   `json:"activities,omitempty"`
	Restaurants []Restaurant `json:"restaurants,omitempty"`
}

// CountryFromAddress takes the last comma-separated part of an address.
// "112 Rue du Faubourg Saint-Honoré, 75008 Paris, France" -> "France".
func CountryFromAddress(address string) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// Location formats the hotel as "City, Country".
func (h Hotel) Location() string {
	city := ""
	if h.City != nil {
		city = h.City.Name
	}
	country := CountryFromAddress(h.Address)
	if country == "" {
		return city
	}
	return city + ", " + country
}

// ImageURL resolves an object-storage path against endpoint. Absolute URLs pass through.
func ImageURL(endpoint, path string) string {
	if path == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if endpoint == "" {
		return PlaceholderImage
	}
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimPrefix(path, "/")
}

// ResolveImages rewrites every photo path of the hotel to an absolute URL.
func (h *Hotel) ResolveImages(endpoint string) {
	resolve := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			out[i] = ImageURL(endpoint, p)
		}
		return out
	}
	if len(h.Image) == 0 {
		h.Image = []string{PlaceholderImage}
	} else {
		h.Image = resolve(h.Image)
	}
	h.TransferPhotos = resolve(h.TransferPhotos)
	h.SpaPhotos = resolve(h.SpaPhotos)
	h.SpecialExperiencePhotos = resolve(h.SpecialExperiencePhotos)
	for i := range h.Activities {
		if h.Activities[i].Image != "" {
			h.Activities[i].Image = ImageURL(endpoint, h.Activities[i].Image)
		}
	}
	for i := range h.Restaurants {
		if h.Restaurants[i].Image != "" {
			h.Restaurants[i].Image = ImageURL(endpoint, h.Restaurants[i].Image)
		}
	}
}
