package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	cardsapp "dwelling/internal/app/handlers/cards"
	listingsapp "dwelling/internal/app/handlers/listings"
	"dwelling/internal/app/middleware"
	domaincards "dwelling/internal/domain/cards"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/money"
)

type errorClass struct {
	status  int
	code    string
	message string
}

var errorClasses = []struct {
	target error
	class  errorClass
}{
	{domainreservation.ErrUnauthenticated, errorClass{http.StatusUnauthorized, "unauthenticated", "Sign in to continue"}},
	{domainreservation.ErrStayTooLong, errorClass{http.StatusBadRequest, "invalid_range", "Stays are limited to 365 nights"}},
	{domainreservation.ErrInvalidRange, errorClass{http.StatusBadRequest, "invalid_range", "Check-out must be after check-in"}},
	{middleware.ErrValidation, errorClass{http.StatusBadRequest, "validation_failed", "The request is incomplete"}},
	{domaincards.ErrUIDRequired, errorClass{http.StatusBadRequest, "validation_failed", "The request is incomplete"}},
	{domaincards.ErrNameRequired, errorClass{http.StatusBadRequest, "validation_failed", "The request is incomplete"}},
	{listingsapp.ErrImageMissing, errorClass{http.StatusBadRequest, "validation_failed", "An image file is required"}},
	{domainreservation.ErrListingNotFound, errorClass{http.StatusNotFound, "listing_not_found", "Listing not found"}},
	{domainlistings.ErrNotFound, errorClass{http.StatusNotFound, "listing_not_found", "Listing not found"}},
	{domainlistings.ErrNotOwner, errorClass{http.StatusForbidden, "forbidden", "Only the host can change this listing"}},
	{domainreservation.ErrDateConflict, errorClass{http.StatusConflict, "date_conflict", "These dates are already booked"}},
	{money.ErrOverflow, errorClass{http.StatusUnprocessableEntity, "price_out_of_range", "The total for this stay is too large"}},
	{domainreservation.ErrPriceMismatch, errorClass{http.StatusUnprocessableEntity, "price_mismatch", "The price has changed, please review it"}},
	{middleware.ErrIdempotencyKeyReused, errorClass{http.StatusUnprocessableEntity, "idempotency_key_reused", "This request key was already used for a different request"}},
	{listingsapp.ErrImageStoreUnavailable, errorClass{http.StatusServiceUnavailable, "unavailable", "Image uploads are disabled"}},
	{cardsapp.ErrSinkUnavailable, errorClass{http.StatusServiceUnavailable, "unavailable", "Saving cards is disabled"}},
}

var internalError = errorClass{http.StatusInternalServerError, "internal", "Something went wrong"}

func classify(err error) errorClass {
	for _, entry := range errorClasses {
		if errors.Is(err, entry.target) {
			return entry.class
		}
	}
	return internalError
}

func errorStatus(err error) int {
	return classify(err).status
}

// ErrorCode labels err for metrics and logs. Persistence failures are
// reported as "internal".
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	return classify(err).code
}

// respondError writes {"error", "message"} and records err on the context
// so the request logger can see it.
func respondError(c *gin.Context, err error) {
	class := classify(err)
	_ = c.Error(err)
	body := gin.H{"error": class.code, "message": class.message}
	var verr *middleware.ValidationError
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(class.status, body)
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": message})
}
