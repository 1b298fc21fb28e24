package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/middleware"
	"github.com/indie-cactus/service-reservation/internal/response"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service *application.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers all cart routes on the given router group.
func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.DELETE("/items/:roomId", h.RemoveItem)
		cart.POST("/coupon", h.ApplyCoupon)
	}
}

type addItemRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Override bool   `json:"override"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	svcReq := application.AddItemRequest{
		RoomID:   roomID,
		Quantity: req.Quantity,
		Override: req.Override,
	}
	if req.Start != "" || req.End != "" {
		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			response.BadRequest(c, "invalid start date, expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			response.BadRequest(c, "invalid end date, expected YYYY-MM-DD")
			return
		}
		svcReq.Start, svcReq.End = &start, &end
	}

	dto, err := h.service.AddItem(c.Request.Context(), middleware.GetSessionID(c), svcReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// RemoveItem handles DELETE /api/v1/cart/items/:roomId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	dto, err := h.service.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ApplyCoupon handles POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.ApplyCoupon(c.Request.Context(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	dto, err := h.service.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
