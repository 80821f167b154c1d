package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/signature"
)

const testWebhookSecret = "whsec_test"

type webhookFixture struct {
	svc       *WebhookService
	store     *memoryStore
	publisher *recordingPublisher
	signer    *signature.Verifier
}

func newWebhookFixture() *webhookFixture {
	store := newMemoryStore()
	publisher := &recordingPublisher{}
	signer := signature.NewVerifier(testWebhookSecret)
	svc := NewWebhookService(signer, store, memoryPayments{store}, memoryNotifications{store}, publisher, NewMetricsService(), nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &webhookFixture{svc: svc, store: store, publisher: publisher, signer: signer}
}

func capturedEvent(t *testing.T, userID, batchID string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": "payment.captured",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       "pay_123",
					"order_id": "order_456",
					"amount":   amount,
					"notes":    map[string]string{"userId": userID, "batchId": batchID},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestWebhookServiceCapturedCreatesActiveEnrollment(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "user-1", "batch-1", 4999900)

	result, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeProcessed, result.Outcome)

	enrollment, ok := f.store.enrollment("user-1", "batch-1")
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NotNil(t, enrollment.EnrolledAt)
	assert.Equal(t, result.EnrollmentID, enrollment.ID)

	payments := f.store.paymentRows()
	require.Len(t, payments, 1)
	assert.Equal(t, "49999.00", payments[0].AmountINR.StringFixed(2))
	assert.Equal(t, "order_456", payments[0].OrderID)
	assert.Equal(t, "pay_123", payments[0].PaymentRef)
	assert.Equal(t, models.PaymentStatusPaid, payments[0].Status)
	assert.Equal(t, models.PaymentProviderRazorpay, payments[0].Provider)
	assert.Equal(t, enrollment.ID, payments[0].EnrollmentID)

	notifications := f.store.notificationRows()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Enrollment Successful!", notifications[0].Title)
	assert.Equal(t, "/dashboard/student/courses", notifications[0].Link)
	assert.Equal(t, 1, f.publisher.count())
}

func TestWebhookServiceActivatesPendingEnrollment(t *testing.T) {
	f := newWebhookFixture()
	f.store.seed(models.Enrollment{ID: "enr-pending", UserID: "user-1", BatchID: "batch-1", Status: models.EnrollmentStatusPending})
	body := capturedEvent(t, "user-1", "batch-1", 100)

	result, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, "enr-pending", result.EnrollmentID)
	assert.Equal(t, 1, f.store.enrollmentCount())

	enrollment, _ := f.store.enrollment("user-1", "batch-1")
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
}

func TestWebhookServiceReactivatesCancelledEnrollment(t *testing.T) {
	f := newWebhookFixture()
	f.store.seed(models.Enrollment{ID: "enr-old", UserID: "user-1", BatchID: "batch-1", Status: models.EnrollmentStatusCancelled})
	body := capturedEvent(t, "user-1", "batch-1", 100)

	_, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.NoError(t, err)
	enrollment, _ := f.store.enrollment("user-1", "batch-1")
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
}

func TestWebhookServiceReplayKeepsSingleEnrollment(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "user-1", "batch-1", 50000)
	sig := f.signer.Sign(body)

	first, err := f.svc.Reconcile(context.Background(), body, sig)
	require.NoError(t, err)
	second, err := f.svc.Reconcile(context.Background(), body, sig)
	require.NoError(t, err)

	assert.Equal(t, first.EnrollmentID, second.EnrollmentID)
	assert.Equal(t, 1, f.store.enrollmentCount())
	// Payments carry no uniqueness on the provider reference, so a replay is recorded twice.
	assert.Len(t, f.store.paymentRows(), 2)
	assert.Len(t, f.store.notificationRows(), 2)
}

func TestWebhookServiceConcurrentDeliveriesConverge(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "user-1", "batch-1", 50000)
	sig := f.signer.Sign(body)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Reconcile(context.Background(), body, sig)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.store.enrollmentCount())
	enrollment, _ := f.store.enrollment("user-1", "batch-1")
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
}

func TestWebhookServiceSignatureFailures(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "user-1", "batch-1", 100)

	cases := []struct {
		name    string
		sig     string
		message string
	}{
		{name: "missing", sig: "", message: "No signature found"},
		{name: "blank", sig: "   ", message: "No signature found"},
		{name: "wrong", sig: signature.NewVerifier("other").Sign(body), message: "Invalid signature"},
		{name: "garbage", sig: "not-hex", message: "Invalid signature"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Reconcile(context.Background(), body, tc.sig)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
			assert.True(t, errors.Is(err, appErrors.ErrAuthentication))
		})
	}
	assert.Equal(t, 0, f.store.enrollmentCount())
	assert.Empty(t, f.store.paymentRows())
}

func TestWebhookServiceTamperedBodyRejected(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "user-1", "batch-1", 100)
	sig := f.signer.Sign(body)
	tampered := capturedEvent(t, "attacker", "batch-1", 100)

	_, err := f.svc.Reconcile(context.Background(), tampered, sig)
	require.Error(t, err)
	assert.Equal(t, "Invalid signature", appErrors.FromError(err).Message)
	assert.Equal(t, 0, f.store.enrollmentCount())
}

func TestWebhookServiceVerifiesBeforeParsing(t *testing.T) {
	f := newWebhookFixture()
	body := []byte("{not json")

	_, err := f.svc.Reconcile(context.Background(), body, "deadbeef")
	require.Error(t, err)
	assert.Equal(t, "Invalid signature", appErrors.FromError(err).Message)

	_, err = f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.Error(t, err)
	assert.Equal(t, "Invalid payload", appErrors.FromError(err).Message)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestWebhookServiceIgnoresOtherEvents(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":100,"notes":{"userId":"user-1","batchId":"batch-1"}}}}}`)

	result, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeIgnored, result.Outcome)
	assert.Equal(t, "payment.failed", result.Event)
	assert.Equal(t, 0, f.store.enrollmentCount())
	assert.Empty(t, f.store.paymentRows())
	assert.Empty(t, f.store.notificationRows())
}

func TestWebhookServiceIgnoresEventsWithLooseNotes(t *testing.T) {
	cases := map[string]string{
		"authorized with empty notes array": `{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":100,"notes":[]}}}}`,
		"refund with numeric note":          `{"event":"refund.created","payload":{"refund":{"entity":{"id":"rfnd_1","amount":100,"notes":{"userId":42}}}}}`,
		"order paid with order entity":      `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_1","notes":[]}},"payment":{"entity":{"id":"pay_1","notes":"none"}}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := newWebhookFixture()
			body := []byte(raw)

			result, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
			require.NoError(t, err)
			assert.Equal(t, WebhookOutcomeIgnored, result.Outcome)
			assert.Equal(t, 0, f.store.enrollmentCount())
			assert.Empty(t, f.store.paymentRows())
		})
	}
}

func TestWebhookServiceCapturedWithEmptyNotesArray(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":100,"notes":[]}}}}`)

	_, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Missing enrollment metadata", appErr.Message)
	assert.Equal(t, 0, f.store.enrollmentCount())
}

func TestWebhookServiceCapturedWithNumericNotes(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":100,"notes":{"userId":42,"batchId":"batch-1","source":true}}}}}`)

	result, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeProcessed, result.Outcome)
	require.Equal(t, 1, f.store.enrollmentCount())
	rows := f.store.paymentRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "42", rows[0].UserID)
}

func TestWebhookServiceCapturedWithoutPaymentEntity(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	_, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.Error(t, err)
	assert.Equal(t, "Invalid payload", appErrors.FromError(err).Message)
}

func TestWebhookServiceMissingMetadata(t *testing.T) {
	f := newWebhookFixture()
	body := capturedEvent(t, "", "batch-1", 100)

	_, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
	require.Error(t, err)
	assert.Equal(t, "Missing enrollment metadata", appErrors.FromError(err).Message)
	assert.Equal(t, 0, f.store.enrollmentCount())
}

func TestWebhookServiceDatabaseFailures(t *testing.T) {
	cases := []struct {
		name   string
		inject func(*memoryStore)
	}{
		{name: "upsert", inject: func(m *memoryStore) { m.upsertErr = errors.New("conn refused") }},
		{name: "activate", inject: func(m *memoryStore) { m.activateErr = errors.New("conn refused") }},
		{name: "payment", inject: func(m *memoryStore) { m.paymentErr = errors.New("conn refused") }},
		{name: "notification", inject: func(m *memoryStore) { m.notificationErr = errors.New("conn refused") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWebhookFixture()
			tc.inject(f.store)
			body := capturedEvent(t, "user-1", "batch-1", 100)

			_, err := f.svc.Reconcile(context.Background(), body, f.signer.Sign(body))
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, http.StatusInternalServerError, appErr.Status)
			assert.Equal(t, "Database update failed", appErr.Message)
			assert.Equal(t, 0, f.publisher.count())
		})
	}
}

func TestWebhookServiceSecretNotConfigured(t *testing.T) {
	store := newMemoryStore()
	svc := NewWebhookService(signature.NewVerifier(""), store, memoryPayments{store}, memoryNotifications{store}, nil, nil, nil)
	body := capturedEvent(t, "user-1", "batch-1", 100)

	_, err := svc.Reconcile(context.Background(), body, "abc")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
	assert.Equal(t, 0, store.enrollmentCount())
}
