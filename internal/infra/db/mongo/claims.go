package mongo

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
)

const nightKeyFormat = "2006-01-02"

// nightClaimDoc reserves a single listing night. The _id encodes listing and
// night, so two transactions booking a shared night both try to insert the
// same primary key and only one can commit. The CountDocuments overlap check
// alone cannot force that conflict: snapshot transactions that read disjoint
// documents and insert disjoint documents never touch, and two overlapping
// bookings would both land (write skew).
type nightClaimDoc struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	Night     time.Time `bson:"night"`
	BookingID string    `bson:"booking_id"`
}

func nightClaimID(listingID string, night time.Time) string {
	return listingID + ":" + night.UTC().Format(nightKeyFormat)
}

// nightsIn enumerates the nights a half-open range occupies: one per calendar
// day from check-in up to, but not including, check-out. Bounds are midnight
// aligned by daterange.New.
func nightsIn(dr daterange.DateRange) []time.Time {
	var out []time.Time
	for night := dr.CheckIn; night.Before(dr.CheckOut); night = night.AddDate(0, 0, 1) {
		out = append(out, night)
	}
	return out
}

func nightClaims(b *domainbooking.Booking) []interface{} {
	nights := nightsIn(b.Range)
	out := make([]interface{}, 0, len(nights))
	for _, night := range nights {
		out = append(out, nightClaimDoc{
			ID:        nightClaimID(string(b.ListingID), night),
			ListingID: string(b.ListingID),
			Night:     night,
			BookingID: string(b.ID),
		})
	}
	return out
}
