package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/domain"
	"github.com/indie-cactus/service-reservation/internal/middleware"
	"github.com/indie-cactus/service-reservation/internal/response"
)

// CheckoutHandler handles HTTP requests for checkout and booking lookups.
type CheckoutHandler struct {
	service *application.BookingService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *application.BookingService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes registers checkout and booking routes on the given group.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/checkout", h.Checkout)
	bookings := r.Group("/bookings")
	{
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/payment", h.RetryPayment)
	}
}

type checkoutRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Whatsapp  string `json:"whatsapp"`
	Residence string `json:"residence"`
}

// Checkout handles POST /api/v1/checkout. The booking is durable the moment
// this returns 201 or 202; a 202 means the payment processor was down and
// the guest should retry payment against the returned booking id.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), middleware.GetSessionID(c), application.CheckoutRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Whatsapp:  req.Whatsapp,
		Residence: req.Residence,
	})
	if err != nil {
		if result != nil && domain.IsUnavailable(err) {
			response.Accepted(c, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *CheckoutHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// RetryPayment handles POST /api/v1/bookings/:id/payment
func (h *CheckoutHandler) RetryPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.RetryPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
