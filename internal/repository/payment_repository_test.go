package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func TestPaymentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	paidAt := time.Now().UTC()
	payment := &models.Payment{
		UserID:       "user-1",
		EnrollmentID: "enr-1",
		Provider:     models.PaymentProviderRazorpay,
		OrderID:      "order_1",
		PaymentRef:   "pay_1",
		AmountINR:    models.AmountFromMinorUnits(4999900),
		Status:       models.PaymentStatusPaid,
		PaidAt:       paidAt,
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(sqlmock.AnyArg(), "user-1", "enr-1", "razorpay", "order_1", "pay_1", "49999", "PAID", paidAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), payment))
	require.NotEmpty(t, payment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(errors.New("insert failed"))

	err := repo.Create(context.Background(), &models.Payment{AmountINR: decimal.Zero})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByEnrollment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "enrollment_id", "provider", "order_id", "payment_ref", "amount_inr", "status", "paid_at"}).
		AddRow("p-1", "user-1", "enr-1", "razorpay", "order_1", "pay_1", "499.50", "PAID", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnRows(rows)

	payments, err := repo.ListByEnrollment(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.True(t, payments[0].AmountINR.Equal(decimal.RequireFromString("499.5")))
	require.NoError(t, mock.ExpectationsWereMet())
}
