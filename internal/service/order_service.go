package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/razorpay"
)

var (
	minorUnitsPerRupee = decimal.NewFromInt(100)
	// Provider amounts are int64 paise.
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// OrderProvider creates payment orders with the provider.
type OrderProvider interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
}

type pendingEnrollmentCreator interface {
	CreatePendingIfAbsent(ctx context.Context, userID, batchID string) (bool, error)
}

// OrderService prepares provider orders for checkout.
type OrderService struct {
	provider    OrderProvider
	enrollments pendingEnrollmentCreator
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService constructs OrderService. enrollments may be nil, in which
// case no pending enrollment is recorded ahead of payment.
func NewOrderService(provider OrderProvider, enrollments pendingEnrollmentCreator, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *OrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		provider:    provider,
		enrollments: enrollments,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder converts the rupee amount to paise and opens a provider order.
// userID and the request's batch id are embedded as notes so the capture
// webhook can resolve the enrollment.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req dto.CreateOrderRequest) (*razorpay.Order, error) {
	req.Currency = strings.TrimSpace(req.Currency)
	req.BatchID = strings.TrimSpace(req.BatchID)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordOrder("invalid")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}
	paise, err := toMinorUnits(req.Amount)
	if err != nil {
		s.metrics.RecordOrder("invalid")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order amount")
	}

	notes := map[string]string{}
	if userID != "" {
		notes[models.NoteUserID] = userID
	}
	if req.BatchID != "" {
		notes[models.NoteBatchID] = req.BatchID
	}

	order, err := s.provider.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   paise,
		Currency: req.Currency,
		Receipt:  fmt.Sprintf("receipt_order_%d", s.now().UnixMilli()),
		Notes:    notes,
	})
	if err != nil {
		s.logger.Error("provider order creation failed", zap.Int64("amount", paise), zap.String("user_id", userID), zap.Error(err))
		s.metrics.RecordOrder("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrOrderCreation.Code, appErrors.ErrOrderCreation.Status, "Failed to create order")
	}
	s.metrics.RecordOrder("created")

	if userID != "" && req.BatchID != "" && s.enrollments != nil {
		created, err := s.enrollments.CreatePendingIfAbsent(ctx, userID, req.BatchID)
		if err != nil {
			s.logger.Warn("pending enrollment not recorded", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.String("batch_id", req.BatchID), zap.Error(err))
		} else if created {
			s.logger.Info("pending enrollment recorded", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.String("batch_id", req.BatchID))
		}
	}

	return order, nil
}

func toMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	paise := amount.Mul(minorUnitsPerRupee)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", amount.String())
	}
	if paise.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("amount %s is too large", amount.String())
	}
	return paise.IntPart(), nil
}
