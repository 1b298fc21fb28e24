package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/response"
)

// PaymentHandler receives the two payment signal channels: the guest's
// redirect back from the processor and the processor's server-to-server
// webhook.
type PaymentHandler struct {
	service *application.ConfirmationService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.ConfirmationService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// RegisterRoutes registers payment callback routes on the given group.
// None of these are authenticated; the processor calls them directly and
// the booking id doubles as an unguessable capability.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.GET("/success", h.Success)
		payments.GET("/failure", h.Failure)
		payments.GET("/pending", h.Pending)
		payments.POST("/webhook", h.Webhook)
	}
}

// callbackParams pulls the processor's redirect parameters, tolerating both
// naming generations it sends (status/collection_status, payment_id/
// collection_id). Extra parameters are ignored.
func callbackParams(c *gin.Context) (externalRef, status, paymentID string) {
	externalRef = c.Query("external_reference")
	status = c.Query("status")
	if status == "" {
		status = c.Query("collection_status")
	}
	paymentID = c.Query("payment_id")
	if paymentID == "" {
		paymentID = c.Query("collection_id")
	}
	return
}

// Success handles GET /api/v1/payments/success, the redirect after an
// approved payment.
func (h *PaymentHandler) Success(c *gin.Context) {
	externalRef, status, paymentID := callbackParams(c)

	result, err := h.service.HandleCallback(c.Request.Context(), externalRef, status, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Failure handles GET /api/v1/payments/failure. The booking stays unpaid
// and the guest can retry; the signal is recorded for operators.
func (h *PaymentHandler) Failure(c *gin.Context) {
	externalRef, status, paymentID := callbackParams(c)
	if status == "" {
		status = "failure"
	}

	result, err := h.service.HandleCallback(c.Request.Context(), externalRef, status, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Pending handles GET /api/v1/payments/pending. Confirmation will arrive by
// webhook if the payment later settles.
func (h *PaymentHandler) Pending(c *gin.Context) {
	externalRef, status, paymentID := callbackParams(c)
	if status == "" {
		status = "pending"
	}

	result, err := h.service.HandleCallback(c.Request.Context(), externalRef, status, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// webhookBody is the processor's notification shape. Only the payment id is
// used; everything else is re-queried from the processor.
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Webhook handles POST /api/v1/payments/webhook. It always acknowledges
// with 200: a non-2xx would make the processor retry forever over signals
// we already know how to handle, and reconciliation failures are recovered
// through the redirect channel and operator alerts instead.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	paymentID := h.extractPaymentID(c)
	if paymentID == "" {
		h.logger.Debug("webhook without payment id, acknowledged")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.service.HandleWebhook(c.Request.Context(), paymentID); err != nil {
		h.logger.Warn("webhook reconciliation failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) extractPaymentID(c *gin.Context) string {
	var body webhookBody
	if err := c.ShouldBindJSON(&body); err == nil && body.Data.ID.String() != "" {
		if body.Type != "" && body.Type != "payment" {
			return ""
		}
		return body.Data.ID.String()
	}

	// Older notification format carries the id in the query string.
	if topic := c.Query("topic"); topic != "" && topic != "payment" {
		return ""
	}
	return c.Query("id")
}
