package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

type BookingListingSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
}

type Booking struct {
	ID        string                 `json:"id"`
	Listing   BookingListingSnapshot `json:"listing"`
	GuestID   string                 `json:"guest_id"`
	CheckIn   time.Time              `json:"check_in"`
	CheckOut  time.Time              `json:"check_out"`
	Guests    int                    `json:"guests"`
	Nights    int                    `json:"nights"`
	Status    string                 `json:"status"`
	Total     MoneyDTO               `json:"total"`
	CreatedAt time.Time              `json:"created_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(booking *domainbooking.Booking, listing *domainlistings.Listing) Booking {
	snapshot := BookingListingSnapshot{ID: string(booking.ListingID)}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.Location = listing.Location
	}
	return Booking{
		ID:        string(booking.ID),
		Listing:   snapshot,
		GuestID:   booking.GuestID,
		CheckIn:   booking.Range.CheckIn,
		CheckOut:  booking.Range.CheckOut,
		Guests:    booking.Guests,
		Nights:    booking.Range.Nights(),
		Status:    string(booking.State),
		Total:     MapMoney(booking.Total),
		CreatedAt: booking.CreatedAt,
	}
}
