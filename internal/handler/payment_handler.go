package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/razorpay"
	"github.com/noah-isme/lms-api/pkg/response"
)

// DefaultSignatureHeader is the header carrying the provider's HMAC.
const DefaultSignatureHeader = "X-Razorpay-Signature"

const defaultMaxWebhookBytes = 1 << 20

// OrderCreator opens provider orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID string, req dto.CreateOrderRequest) (*razorpay.Order, error)
}

// WebhookReconciler applies authenticated provider callbacks.
type WebhookReconciler interface {
	Reconcile(ctx context.Context, body []byte, signature string) (*service.WebhookResult, error)
}

// PaymentHandlerConfig tunes webhook intake.
type PaymentHandlerConfig struct {
	SignatureHeader string
	MaxWebhookBytes int64
}

// PaymentHandler exposes the checkout order and provider webhook endpoints.
// Both speak the flat {"status"} / {"error"} contract expected by the
// checkout widget and the provider.
type PaymentHandler struct {
	orders   OrderCreator
	webhooks WebhookReconciler
	cfg      PaymentHandlerConfig
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(orders OrderCreator, webhooks WebhookReconciler, cfg PaymentHandlerConfig) *PaymentHandler {
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = DefaultSignatureHeader
	}
	if cfg.MaxWebhookBytes <= 0 {
		cfg.MaxWebhookBytes = defaultMaxWebhookBytes
	}
	return &PaymentHandler{orders: orders, webhooks: webhooks, cfg: cfg}
}

// CreateOrder godoc
// @Summary Create a payment order
// @Description Converts the rupee amount to paise and opens a provider order. The caller's id and batchId travel as order notes.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CreateOrderRequest true "Order payload"
// @Success 200 {object} razorpay.Order
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/payments/razorpay/order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.ErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		flatError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Webhook godoc
// @Summary Receive payment provider events
// @Description Verifies the HMAC-SHA256 signature over the raw body, then activates the enrollment for payment.captured events.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "Hex HMAC-SHA256 of the body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/payments/razorpay/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxWebhookBytes))
	if err != nil {
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorMessage(c, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		response.ErrorMessage(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	if _, err := h.webhooks.Reconcile(c.Request.Context(), body, c.GetHeader(h.cfg.SignatureHeader)); err != nil {
		flatError(c, err)
		return
	}
	response.Ack(c)
}
