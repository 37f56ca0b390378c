package dto

import (
	"time"

	domainpayments "staybook/internal/domain/payments"
)

type Payment struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id"`
	Amount        MoneyDTO  `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PaymentCollection struct {
	Items []Payment `json:"items"`
}

func MapPayment(payment *domainpayments.Payment) Payment {
	return Payment{
		ID:            string(payment.ID),
		BookingID:     string(payment.BookingID),
		Reference:     payment.Reference,
		TransactionID: payment.TransactionID,
		Amount:        MapMoney(payment.Amount),
		Status:        string(payment.State),
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}

func MapPaymentCollection(items []*domainpayments.Payment) PaymentCollection {
	out := PaymentCollection{Items: make([]Payment, 0, len(items))}
	for _, payment := range items {
		out.Items = append(out.Items, MapPayment(payment))
	}
	return out
}
