package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan models.Notification
}

// NotificationHub fans freshly persisted notifications out to open streams.
// Delivery is best effort: a subscriber whose buffer is full misses the event
// and picks it up on its next list call.
type NotificationHub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationHub constructs an empty hub.
func NewNotificationHub(metrics *MetricsService, logger *zap.Logger) *NotificationHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHub{subs: make(map[string]map[*subscriber]struct{}), metrics: metrics, logger: logger}
}

// Subscribe registers a stream for userID. The returned cancel func must be
// called once; it closes the channel.
func (h *NotificationHub) Subscribe(userID string) (<-chan models.Notification, func()) {
	sub := &subscriber{ch: make(chan models.Notification, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()
	h.metrics.AddStreamSubscribers(1)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
			h.mu.Unlock()
			h.metrics.AddStreamSubscribers(-1)
		})
	}
	return sub.ch, cancel
}

// Publish delivers n to every stream of its recipient without blocking.
func (h *NotificationHub) Publish(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[n.UserID] {
		select {
		case sub.ch <- n:
		default:
			h.logger.Debug("notification stream full, dropping event", zap.String("user_id", n.UserID), zap.String("notification_id", n.ID))
		}
	}
}

// PublishAll publishes each notification in order.
func (h *NotificationHub) PublishAll(notifications []models.Notification) {
	for _, n := range notifications {
		h.Publish(n)
	}
}

// Subscribers returns the number of open streams for userID.
func (h *NotificationHub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
