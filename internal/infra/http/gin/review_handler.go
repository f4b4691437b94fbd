package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	ReviewsApp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h ReviewHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ReviewsApp.SubmitReviewCommand{
		ListingID: c.Param("id"),
		GuestID:   actor,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	result, err := commands.Dispatch[ReviewsApp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) List(c *gin.Context) {
	query := ReviewsApp.ListReviewsQuery{
		ListingID: c.Param("id"),
		Limit:     intQuery(c, "limit", 20),
		Offset:    intQuery(c, "offset", 0),
	}
	result, err := queries.Ask[ReviewsApp.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Stats(c *gin.Context) {
	query := ReviewsApp.ListingStatsQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[ReviewsApp.ListingStatsQuery, dto.ListingStats](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

var _ ReviewHTTP = ReviewHandler{}
