package mongo

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

type moneyDoc struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func toMoneyDoc(m money.Money) moneyDoc {
	return moneyDoc{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDoc) toDomain() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type listingDoc struct {
	ID            string     `bson:"_id"`
	Owner         string     `bson:"owner_id"`
	Title         string     `bson:"title"`
	Description   string     `bson:"description"`
	Location      string     `bson:"location"`
	NightlyRate   moneyDoc   `bson:"nightly_rate"`
	Capacity      int        `bson:"capacity"`
	Amenities     []string   `bson:"amenities"`
	AvailableFrom *time.Time `bson:"available_from,omitempty"`
	AvailableTo   *time.Time `bson:"available_to,omitempty"`
	Available     bool       `bson:"available"`
	Photos        []string   `bson:"photos"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
	Version       int64      `bson:"version"`
}

func toListingDoc(l *domainlistings.Listing) listingDoc {
	doc := listingDoc{
		ID:          string(l.ID),
		Owner:       string(l.Owner),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		NightlyRate: toMoneyDoc(l.NightlyRate),
		Capacity:    l.Capacity,
		Amenities:   l.Amenities,
		Available:   l.Available,
		Photos:      l.Photos,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Version:     l.Version,
	}
	if !l.AvailableFrom.IsZero() {
		from := l.AvailableFrom
		doc.AvailableFrom = &from
	}
	if !l.AvailableTo.IsZero() {
		to := l.AvailableTo
		doc.AvailableTo = &to
	}
	return doc
}

func (d listingDoc) toDomain() *domainlistings.Listing {
	l := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.Owner),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		NightlyRate: d.NightlyRate.toDomain(),
		Capacity:    d.Capacity,
		Amenities:   d.Amenities,
		Available:   d.Available,
		Photos:      d.Photos,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
	}
	if d.AvailableFrom != nil {
		l.AvailableFrom = *d.AvailableFrom
	}
	if d.AvailableTo != nil {
		l.AvailableTo = *d.AvailableTo
	}
	return l
}

type bookingDoc struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	GuestID   string    `bson:"guest_id"`
	CheckIn   time.Time `bson:"check_in"`
	CheckOut  time.Time `bson:"check_out"`
	Guests    int       `bson:"guests"`
	Total     moneyDoc  `bson:"total"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Version   int64     `bson:"version"`
}

func toBookingDoc(b *domainbooking.Booking) bookingDoc {
	return bookingDoc{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		CheckIn:   b.Range.CheckIn,
		CheckOut:  b.Range.CheckOut,
		Guests:    b.Guests,
		Total:     toMoneyDoc(b.Total),
		State:     string(b.State),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.Version,
	}
}

func (d bookingDoc) toDomain() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		Range:     daterange.DateRange{CheckIn: d.CheckIn, CheckOut: d.CheckOut},
		Guests:    d.Guests,
		Total:     d.Total.toDomain(),
		State:     domainbooking.BookingState(d.State),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Version:   d.Version,
	}
}

type paymentDoc struct {
	ID            string    `bson:"_id"`
	BookingID     string    `bson:"booking_id"`
	Reference     string    `bson:"reference"`
	TransactionID string    `bson:"transaction_id"`
	Amount        moneyDoc  `bson:"amount"`
	State         string    `bson:"state"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
	Version       int64     `bson:"version"`
}

func toPaymentDoc(p *domainpayments.Payment) paymentDoc {
	return paymentDoc{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		Reference:     p.Reference,
		TransactionID: p.TransactionID,
		Amount:        toMoneyDoc(p.Amount),
		State:         string(p.State),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

func (d paymentDoc) toDomain() *domainpayments.Payment {
	return &domainpayments.Payment{
		ID:            domainpayments.PaymentID(d.ID),
		BookingID:     domainbooking.BookingID(d.BookingID),
		Reference:     d.Reference,
		TransactionID: d.TransactionID,
		Amount:        d.Amount.toDomain(),
		State:         domainpayments.PaymentState(d.State),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}
}

type reviewDoc struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	AuthorID  string    `bson:"author_id"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

func toReviewDoc(r *domainreviews.Review) reviewDoc {
	return reviewDoc{
		ID:        string(r.ID),
		ListingID: string(r.ListingID),
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func (d reviewDoc) toDomain() *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		AuthorID:  d.AuthorID,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u *domainuser.User) userDoc {
	return userDoc{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
