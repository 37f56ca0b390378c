package dto

import "staybook/internal/domain/shared/money"

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.DecimalString(),
		Currency: value.Currency,
	}
}
