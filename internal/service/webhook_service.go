package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/signature"
)

// WebhookOutcome labels how a delivery was handled.
type WebhookOutcome string

const (
	WebhookOutcomeProcessed WebhookOutcome = "processed"
	WebhookOutcomeIgnored   WebhookOutcome = "ignored"
	WebhookOutcomeRejected  WebhookOutcome = "rejected"
	WebhookOutcomeFailed    WebhookOutcome = "failed"
)

// Messages returned to the provider. They are part of the wire contract.
const (
	msgNoSignature       = "No signature found"
	msgInvalidSignature  = "Invalid signature"
	msgInvalidPayload    = "Invalid payload"
	msgMissingMetadata   = "Missing enrollment metadata"
	msgDatabaseFailure   = "Database update failed"
	msgWebhookNotEnabled = "Webhook secret not configured"
)

const (
	enrollmentNotificationTitle = "Enrollment Successful!"
	enrollmentNotificationBody  = "You have successfully enrolled in the course."
	enrollmentNotificationLink  = "/dashboard/student/courses"
)

type signatureVerifier interface {
	Verify(body []byte, claimed string) error
}

type webhookEnrollmentStore interface {
	UpsertPending(ctx context.Context, userID, batchID string) (*models.Enrollment, error)
	Activate(ctx context.Context, id string, at time.Time) error
}

type paymentWriter interface {
	Create(ctx context.Context, payment *models.Payment) error
}

type notificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

type notificationPublisher interface {
	Publish(n models.Notification)
}

// WebhookResult describes a reconciled delivery.
type WebhookResult struct {
	Outcome      WebhookOutcome
	Event        string
	EnrollmentID string
	PaymentID    string
}

// WebhookService turns authenticated payment-provider callbacks into
// enrollment, payment and notification records.
type WebhookService struct {
	verifier      signatureVerifier
	enrollments   webhookEnrollmentStore
	payments      paymentWriter
	notifications notificationWriter
	publisher     notificationPublisher
	metrics       *MetricsService
	logger        *zap.Logger
	now           func() time.Time
}

// NewWebhookService constructs WebhookService. publisher and metrics may be nil.
func NewWebhookService(verifier signatureVerifier, enrollments webhookEnrollmentStore, payments paymentWriter, notifications notificationWriter, publisher notificationPublisher, metrics *MetricsService, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		verifier:      verifier,
		enrollments:   enrollments,
		payments:      payments,
		notifications: notifications,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile authenticates body against claimedSignature and applies the event.
// body must be the raw request bytes; nothing is parsed before verification.
func (s *WebhookService) Reconcile(ctx context.Context, body []byte, claimedSignature string) (*WebhookResult, error) {
	if err := s.authenticate(body, claimedSignature); err != nil {
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeRejected))
		return nil, err
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeRejected))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msgInvalidPayload)
	}

	if event.Event != models.EventPaymentCaptured {
		s.logger.Debug("ignoring payment event", zap.String("event", event.Event))
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeIgnored))
		return &WebhookResult{Outcome: WebhookOutcomeIgnored, Event: event.Event}, nil
	}

	var payload models.WebhookPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			s.metrics.RecordWebhookOutcome(string(WebhookOutcomeRejected))
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msgInvalidPayload)
		}
	}
	if payload.Payment == nil {
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeRejected))
		return nil, appErrors.Clone(appErrors.ErrValidation, msgInvalidPayload)
	}
	entity := payload.Payment.Entity
	userID := strings.TrimSpace(entity.Notes.UserID)
	batchID := strings.TrimSpace(entity.Notes.BatchID)
	if userID == "" || batchID == "" {
		s.logger.Warn("captured payment without enrollment metadata",
			zap.String("order_id", entity.OrderID),
			zap.String("payment_id", entity.ID),
		)
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeRejected))
		return nil, appErrors.Clone(appErrors.ErrValidation, msgMissingMetadata)
	}

	result, err := s.applyCapture(ctx, event.Event, entity, userID, batchID)
	if err != nil {
		s.metrics.RecordWebhookOutcome(string(WebhookOutcomeFailed))
		return nil, err
	}
	s.metrics.RecordWebhookOutcome(string(WebhookOutcomeProcessed))
	return result, nil
}

func (s *WebhookService) authenticate(body []byte, claimed string) error {
	if strings.TrimSpace(claimed) == "" {
		return appErrors.Clone(appErrors.ErrAuthentication, msgNoSignature)
	}
	if err := s.verifier.Verify(body, claimed); err != nil {
		switch {
		case errors.Is(err, signature.ErrMissingSignature):
			return appErrors.Wrap(err, appErrors.ErrAuthentication.Code, appErrors.ErrAuthentication.Status, msgNoSignature)
		case errors.Is(err, signature.ErrSecretMissing):
			s.logger.Error("webhook secret is not configured")
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msgWebhookNotEnabled)
		default:
			return appErrors.Wrap(err, appErrors.ErrAuthentication.Code, appErrors.ErrAuthentication.Status, msgInvalidSignature)
		}
	}
	return nil
}

func (s *WebhookService) applyCapture(ctx context.Context, event string, entity models.PaymentEntity, userID, batchID string) (*WebhookResult, error) {
	logger := s.logger.With(
		zap.String("order_id", entity.OrderID),
		zap.String("payment_id", entity.ID),
		zap.String("user_id", userID),
		zap.String("batch_id", batchID),
	)
	now := s.now()

	enrollment, err := s.enrollments.UpsertPending(ctx, userID, batchID)
	if err != nil {
		logger.Error("enrollment upsert failed", zap.Error(err))
		return nil, dbFailure(err)
	}
	if err := s.enrollments.Activate(ctx, enrollment.ID, now); err != nil {
		logger.Error("enrollment activation failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return nil, dbFailure(err)
	}

	payment := &models.Payment{
		UserID:       userID,
		EnrollmentID: enrollment.ID,
		Provider:     models.PaymentProviderRazorpay,
		OrderID:      entity.OrderID,
		PaymentRef:   entity.ID,
		AmountINR:    models.AmountFromMinorUnits(entity.Amount),
		Status:       models.PaymentStatusPaid,
		PaidAt:       now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		logger.Error("payment insert failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return nil, dbFailure(err)
	}

	notification := &models.Notification{
		UserID: userID,
		Title:  enrollmentNotificationTitle,
		Body:   enrollmentNotificationBody,
		Link:   enrollmentNotificationLink,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		logger.Error("notification insert failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return nil, dbFailure(err)
	}
	s.metrics.RecordNotifications("webhook", 1)
	if s.publisher != nil {
		s.publisher.Publish(*notification)
	}

	logger.Info("payment reconciled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("amount_inr", payment.AmountINR.StringFixed(2)),
	)
	return &WebhookResult{
		Outcome:      WebhookOutcomeProcessed,
		Event:        event,
		EnrollmentID: enrollment.ID,
		PaymentID:    payment.ID,
	}, nil
}

func dbFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgDatabaseFailure)
}
