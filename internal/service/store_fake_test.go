package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-api/internal/models"
)

// memoryStore mimics the enrollment, payment and notification tables. The
// (user_id, batch_id) key is unique, as in Postgres.
type memoryStore struct {
	mu            sync.Mutex
	enrollments   map[string]*models.Enrollment
	payments      []models.Payment
	notifications []models.Notification

	upsertErr       error
	activateErr     error
	paymentErr      error
	notificationErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{enrollments: make(map[string]*models.Enrollment)}
}

func enrollmentKey(userID, batchID string) string {
	return userID + "|" + batchID
}

func (m *memoryStore) seed(e models.Enrollment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := e
	m.enrollments[enrollmentKey(e.UserID, e.BatchID)] = &row
}

func (m *memoryStore) UpsertPending(ctx context.Context, userID, batchID string) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	key := enrollmentKey(userID, batchID)
	if existing, ok := m.enrollments[key]; ok {
		row := *existing
		return &row, nil
	}
	e := &models.Enrollment{ID: uuid.NewString(), UserID: userID, BatchID: batchID, Status: models.EnrollmentStatusPending}
	m.enrollments[key] = e
	row := *e
	return &row, nil
}

func (m *memoryStore) CreatePendingIfAbsent(ctx context.Context, userID, batchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	key := enrollmentKey(userID, batchID)
	if _, ok := m.enrollments[key]; ok {
		return false, nil
	}
	m.enrollments[key] = &models.Enrollment{ID: uuid.NewString(), UserID: userID, BatchID: batchID, Status: models.EnrollmentStatusPending}
	return true, nil
}

func (m *memoryStore) Activate(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activateErr != nil {
		return m.activateErr
	}
	for _, e := range m.enrollments {
		if e.ID == id {
			e.Status = models.EnrollmentStatusActive
			stamp := at
			e.EnrolledAt = &stamp
			return nil
		}
	}
	return fmt.Errorf("enrollment %s not found", id)
}

func (m *memoryStore) ListActiveByBatches(ctx context.Context, batchIDs []string) ([]models.EnrollmentRecipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[string]bool, len(batchIDs))
	for _, id := range batchIDs {
		wanted[id] = true
	}
	var out []models.EnrollmentRecipient
	for _, e := range m.enrollments {
		if wanted[e.BatchID] && e.Status == models.EnrollmentStatusActive {
			out = append(out, models.EnrollmentRecipient{UserID: e.UserID, BatchID: e.BatchID})
		}
	}
	return out, nil
}

func (m *memoryStore) enrollment(userID, batchID string) (models.Enrollment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[enrollmentKey(userID, batchID)]
	if !ok {
		return models.Enrollment{}, false
	}
	return *e, true
}

func (m *memoryStore) enrollmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments)
}

type memoryPayments struct{ *memoryStore }

func (p memoryPayments) Create(ctx context.Context, payment *models.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paymentErr != nil {
		return p.paymentErr
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	p.payments = append(p.payments, *payment)
	return nil
}

type memoryNotifications struct{ *memoryStore }

func (n memoryNotifications) Create(ctx context.Context, notification *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notificationErr != nil {
		return n.notificationErr
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	n.notifications = append(n.notifications, *notification)
	return nil
}

func (n memoryNotifications) BulkCreate(ctx context.Context, notifications []models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notificationErr != nil {
		return n.notificationErr
	}
	for i := range notifications {
		if notifications[i].ID == "" {
			notifications[i].ID = uuid.NewString()
		}
	}
	n.notifications = append(n.notifications, notifications...)
	return nil
}

func (m *memoryStore) paymentRows() []models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Payment(nil), m.payments...)
}

func (m *memoryStore) notificationRows() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.notifications...)
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []models.Notification
}

func (r *recordingPublisher) Publish(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, n)
}

func (r *recordingPublisher) PublishAll(ns []models.Notification) {
	for _, n := range ns {
		r.Publish(n)
	}
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}
