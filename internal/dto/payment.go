package dto

import "github.com/shopspring/decimal"

// CreateOrderRequest is the body accepted by the order endpoint. Amount is in
// rupees and may carry at most two decimal places.
type CreateOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,len=3,alpha,uppercase"`
	BatchID  string          `json:"batchId" validate:"omitempty,max=64"`
}
