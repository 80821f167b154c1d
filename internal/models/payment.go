package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the terminal state recorded for a payment.
type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "PAID"
)

// PaymentProviderRazorpay identifies payments captured through Razorpay.
const PaymentProviderRazorpay = "razorpay"

// Payment is an immutable record of a captured transaction.
type Payment struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	EnrollmentID string          `db:"enrollment_id" json:"enrollment_id"`
	Provider     string          `db:"provider" json:"provider"`
	OrderID      string          `db:"order_id" json:"order_id"`
	PaymentRef   string          `db:"payment_ref" json:"payment_ref"`
	AmountINR    decimal.Decimal `db:"amount_inr" json:"amount_inr"`
	Status       PaymentStatus   `db:"status" json:"status"`
	PaidAt       time.Time       `db:"paid_at" json:"paid_at"`
}

// AmountFromMinorUnits converts paise into rupees without float rounding.
func AmountFromMinorUnits(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}
