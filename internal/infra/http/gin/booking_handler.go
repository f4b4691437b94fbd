package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	BookingApp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	ListingID string    `json:"listing_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Guests    int       `json:"guests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CreateBookingCommand{
		CommandID:       generateCommandID(),
		ListingID:       req.ListingID,
		GuestID:         actor,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.CreateBookingCommand, *BookingApp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := BookingApp.ConfirmBookingCommand{
		BookingID: c.Param("id"),
		ActorID:   actor,
	}
	result, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := BookingApp.CancelBookingCommand{
		BookingID: c.Param("id"),
		ActorID:   actor,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) List(c *gin.Context) {
	query := BookingApp.ListBookingsQuery{
		ListingID: c.Query("listing_id"),
		GuestID:   c.Query("guest_id"),
		Status:    c.Query("status"),
	}
	result, err := queries.Ask[BookingApp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
