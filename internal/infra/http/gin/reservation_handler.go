package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"dwelling/internal/app/commands"
	reservationsapp "dwelling/internal/app/handlers/reservations"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
}

type ReservationHandler struct {
	Commands commands.Bus
}

type createReservationRequest struct {
	ListingID  string       `json:"listingId"`
	StartDate  flexibleDate `json:"startDate"`
	EndDate    flexibleDate `json:"endDate"`
	TotalPrice int64        `json:"totalPrice"`
}

// Create books a listing. Anonymous requests reach the command pipeline
// too, which rejects them before anything else is checked.
func (h ReservationHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "message": "reservations unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	cmd := reservationsapp.CreateReservationCommand{
		RequesterID:     requesterID(c),
		ListingID:       req.ListingID,
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		TotalPrice:      req.TotalPrice,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationsapp.CreateReservationCommand, *reservationsapp.CreateReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          result.ReservationID,
		"nights":      result.Nights,
		"total_price": result.TotalPrice,
		"currency":    result.Currency,
	})
}

var _ ReservationHTTP = ReservationHandler{}
