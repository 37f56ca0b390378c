package payments

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
)

type PaymentInitiated struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reference string
	Amount    money.Money
	At        time.Time
}

func (e PaymentInitiated) EventName() string     { return "payments.initiated" }
func (e PaymentInitiated) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentInitiated) OccurredAt() time.Time { return e.At }

// PaymentCompleted carries everything the notification consumer needs to send
// the confirmation email without further lookups.
type PaymentCompleted struct {
	PaymentID    PaymentID
	BookingID    booking.BookingID
	Reference    string
	Amount       money.Money
	GuestEmail   string
	GuestName    string
	ListingTitle string
	At           time.Time
}

func (e PaymentCompleted) EventName() string     { return "payments.completed" }
func (e PaymentCompleted) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentCompleted) OccurredAt() time.Time { return e.At }

type PaymentFailed struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reference string
	Reason    string
	At        time.Time
}

func (e PaymentFailed) EventName() string     { return "payments.failed" }
func (e PaymentFailed) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentFailed) OccurredAt() time.Time { return e.At }
