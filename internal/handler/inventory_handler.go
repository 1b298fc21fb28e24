package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/auth"
	"github.com/indie-cactus/service-reservation/internal/middleware"
	"github.com/indie-cactus/service-reservation/internal/response"
)

// InventoryHandler handles room browsing, quoting and the JWT-protected
// management surface.
type InventoryHandler struct {
	inventory *application.InventoryService
	pricing   *application.PricingService
	coupons   *application.CouponService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventory *application.InventoryService, pricing *application.PricingService, coupons *application.CouponService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, pricing: pricing, coupons: coupons}
}

// RegisterRoutes registers public and admin inventory routes.
func (h *InventoryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	rooms := r.Group("/rooms")
	{
		rooms.GET("/:id", h.GetRoom)
		rooms.GET("/:id/quote", h.QuoteStay)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	{
		admin.POST("/rooms", middleware.RequireAction(auth.ActionManageRooms), h.CreateRoom)
		admin.PUT("/rooms/:id/rates", middleware.RequireAction(auth.ActionManageRates), h.UpsertRate)
		admin.POST("/rooms/:id/rates/seed", middleware.RequireAction(auth.ActionManageRates), h.SeedRates)
		admin.GET("/rooms/:id/rates", middleware.RequireAction(auth.ActionManageRates), h.ListRates)
		admin.POST("/coupons", middleware.RequireAction(auth.ActionManageCoupons), h.CreateCoupon)
	}
}

type roomView struct {
	ID                uuid.UUID `json:"id"`
	PropertyID        uuid.UUID `json:"property_id"`
	Name              string    `json:"name"`
	Occupancy         string    `json:"occupancy"`
	MaxGuests         int       `json:"max_guests"`
	WeekdayPriceCents int64     `json:"weekday_price_cents"`
	WeekendPriceCents int64     `json:"weekend_price_cents"`
	Active            bool      `json:"active"`
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *InventoryHandler) GetRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	room, err := h.inventory.GetRoom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roomView{
		ID:                room.ID,
		PropertyID:        room.PropertyID,
		Name:              room.Name,
		Occupancy:         string(room.Occupancy),
		MaxGuests:         room.MaxGuests,
		WeekdayPriceCents: room.WeekdayPriceCents,
		WeekendPriceCents: room.WeekendPriceCents,
		Active:            room.Active,
	})
}

func parseRange(c *gin.Context) (start, end time.Time, ok bool) {
	var err error
	start, err = time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		response.BadRequest(c, "invalid start date, expected YYYY-MM-DD")
		return start, end, false
	}
	end, err = time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		response.BadRequest(c, "invalid end date, expected YYYY-MM-DD")
		return start, end, false
	}
	return start, end, true
}

// QuoteStay handles GET /api/v1/rooms/:id/quote?start=&end=
func (h *InventoryHandler) QuoteStay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	quote, err := h.pricing.Quote(c.Request.Context(), id, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"room_id":       quote.RoomID,
		"start":         quote.Start.Format("2006-01-02"),
		"end":           quote.End.Format("2006-01-02"),
		"nights":        quote.Nights,
		"priced_nights": quote.PricedNights,
		"fully_priced":  quote.FullyPriced(),
		"cost_cents":    quote.CostCents,
		"availability":  quote.Availability,
	})
}

type createRoomRequest struct {
	PropertyID        string `json:"property_id" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Occupancy         string `json:"occupancy" binding:"required"`
	MaxGuests         int    `json:"max_guests" binding:"required"`
	WeekdayPriceCents int64  `json:"weekday_price_cents" binding:"required"`
	WeekendPriceCents int64  `json:"weekend_price_cents" binding:"required"`
}

// CreateRoom handles POST /api/v1/admin/rooms
func (h *InventoryHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return
	}

	room, err := h.inventory.CreateRoom(c.Request.Context(), application.CreateRoomRequest{
		PropertyID:        propertyID,
		Name:              req.Name,
		Occupancy:         req.Occupancy,
		MaxGuests:         req.MaxGuests,
		WeekdayPriceCents: req.WeekdayPriceCents,
		WeekendPriceCents: req.WeekendPriceCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": room.ID})
}

type upsertRateRequest struct {
	ForDate      string `json:"for_date" binding:"required"`
	RateCents    int64  `json:"rate_cents" binding:"required"`
	Availability int    `json:"availability"`
}

// UpsertRate handles PUT /api/v1/admin/rooms/:id/rates
func (h *InventoryHandler) UpsertRate(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	var req upsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	forDate, err := time.Parse("2006-01-02", req.ForDate)
	if err != nil {
		response.BadRequest(c, "invalid for_date, expected YYYY-MM-DD")
		return
	}

	err = h.inventory.UpsertRate(c.Request.Context(), application.UpsertRateRequest{
		RoomID:       roomID,
		ForDate:      forDate,
		RateCents:    req.RateCents,
		Availability: req.Availability,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"room_id": roomID, "for_date": req.ForDate})
}

type seedRatesRequest struct {
	Start        string `json:"start" binding:"required"`
	End          string `json:"end" binding:"required"`
	RateCents    int64  `json:"rate_cents" binding:"required"`
	Availability int    `json:"availability"`
}

// SeedRates handles POST /api/v1/admin/rooms/:id/rates/seed
func (h *InventoryHandler) SeedRates(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	var req seedRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
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

	nights, err := h.inventory.SeedRates(c.Request.Context(), application.SeedRatesRequest{
		RoomID:       roomID,
		Start:        start,
		End:          end,
		RateCents:    req.RateCents,
		Availability: req.Availability,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"room_id": roomID, "nights": nights})
}

// ListRates handles GET /api/v1/admin/rooms/:id/rates?start=&end=
func (h *InventoryHandler) ListRates(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	rates, err := h.inventory.ListRates(c.Request.Context(), roomID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rates)
}

type createCouponRequest struct {
	Code            string `json:"code" binding:"required"`
	DiscountPercent int    `json:"discount_percent" binding:"required"`
	ValidFrom       string `json:"valid_from"`
	ValidUntil      string `json:"valid_until"`
}

// CreateCoupon handles POST /api/v1/admin/coupons
func (h *InventoryHandler) CreateCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	svcReq := application.CreateCouponRequest{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
	}
	if req.ValidFrom != "" {
		from, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			response.BadRequest(c, "invalid valid_from, expected RFC3339")
			return
		}
		svcReq.ValidFrom = &from
	}
	if req.ValidUntil != "" {
		until, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			response.BadRequest(c, "invalid valid_until, expected RFC3339")
			return
		}
		svcReq.ValidUntil = &until
	}

	coupon, err := h.coupons.Create(c.Request.Context(), svcReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": coupon.ID, "code": coupon.Code})
}
