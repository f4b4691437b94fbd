package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	ListingsApp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/queries"
)

type ListingHandler struct {
	Queries queries.Bus
}

func (h ListingHandler) Summary(c *gin.Context) {
	query := ListingsApp.GetSummaryQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[ListingsApp.GetSummaryQuery, dto.ListingSummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

type HostListingHandler struct {
	Commands commands.Bus
}

type listingRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	PropertyType     string `json:"property_type"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	MaxGuests        int    `json:"max_guests"`
	Bedrooms         int    `json:"bedrooms"`
	Bathrooms        int    `json:"bathrooms"`
	Amenities        string `json:"amenities"`
	Available        bool   `json:"available"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.CreateListingCommand{
		HostID:           actor,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		PropertyType:     req.PropertyType,
		NightlyRateCents: req.NightlyRateCents,
		MaxGuests:        req.MaxGuests,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		Amenities:        req.Amenities,
		Available:        req.Available,
	}
	result, err := commands.Dispatch[ListingsApp.CreateListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.UpdateListingCommand{
		ListingID:        c.Param("id"),
		HostID:           actor,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		PropertyType:     req.PropertyType,
		NightlyRateCents: req.NightlyRateCents,
		MaxGuests:        req.MaxGuests,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		Amenities:        req.Amenities,
	}
	result, err := commands.Dispatch[ListingsApp.UpdateListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h HostListingHandler) SetAvailability(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingsApp.SetAvailabilityCommand{
		ListingID: c.Param("id"),
		HostID:    actor,
		Available: req.Available,
	}
	result, err := commands.Dispatch[ListingsApp.SetAvailabilityCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostListingHTTP = HostListingHandler{}
