package reviews

import (
	"time"

	"staybook/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "reviews.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
