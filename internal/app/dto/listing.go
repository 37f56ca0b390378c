package dto

import (
	"time"

	domainlistings "staybook/internal/domain/listings"
)

type Listing struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	NightlyRate   MoneyDTO   `json:"nightly_rate"`
	Capacity      int        `json:"capacity"`
	Amenities     []string   `json:"amenities"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
	AvailableTo   *time.Time `json:"available_to,omitempty"`
	Available     bool       `json:"available"`
	Photos        []string   `json:"photos,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ListingCollection struct {
	Items []Listing `json:"items"`
}

func MapListing(listing *domainlistings.Listing) Listing {
	out := Listing{
		ID:          string(listing.ID),
		OwnerID:     string(listing.Owner),
		Title:       listing.Title,
		Description: listing.Description,
		Location:    listing.Location,
		NightlyRate: MapMoney(listing.NightlyRate),
		Capacity:    listing.Capacity,
		Amenities:   append([]string(nil), listing.Amenities...),
		Available:   listing.Available,
		Photos:      append([]string(nil), listing.Photos...),
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
	if !listing.AvailableFrom.IsZero() {
		from := listing.AvailableFrom
		out.AvailableFrom = &from
	}
	if !listing.AvailableTo.IsZero() {
		to := listing.AvailableTo
		out.AvailableTo = &to
	}
	return out
}

func MapListingCollection(items []*domainlistings.Listing) ListingCollection {
	out := ListingCollection{Items: make([]Listing, 0, len(items))}
	for _, listing := range items {
		out.Items = append(out.Items, MapListing(listing))
	}
	return out
}
