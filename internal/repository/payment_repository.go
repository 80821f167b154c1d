package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// PaymentRepository persists captured payments. Rows are append-only.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment record. There is no uniqueness on payment_ref, so a
// redelivered event produces a second row.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	const query = `INSERT INTO payments (id, user_id, enrollment_id, provider, order_id, payment_ref, amount_inr, status, paid_at)
VALUES (:id, :user_id, :enrollment_id, :provider, :order_id, :payment_ref, :amount_inr, :status, :paid_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListByEnrollment returns the payments recorded against an enrollment, newest first.
func (r *PaymentRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error) {
	const query = `SELECT id, user_id, enrollment_id, provider, order_id, payment_ref, amount_inr, status, paid_at
FROM payments WHERE enrollment_id = $1 ORDER BY paid_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
