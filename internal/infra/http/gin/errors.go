package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

// respondError translates domain error kinds into HTTP statuses. Unknown
// errors stay opaque 500s.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, domainbooking.ErrInvalidDateRange),
		errors.Is(err, domainbooking.ErrPastDate),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrGuestsLimit):
		return http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrForbidden),
		errors.Is(err, domainbooking.ErrInvalidGuest),
		errors.Is(err, domainlistings.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainreviews.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrDateConflict),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainreviews.ErrDuplicateReview):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrCapacityExceeded),
		errors.Is(err, domainbooking.ErrListingUnavailable),
		errors.Is(err, domainreviews.ErrNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, uow.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
