package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/dto"
	availabilityapp "dwelling/internal/app/handlers/availability"
	listingsapp "dwelling/internal/app/handlers/listings"
	reservationsapp "dwelling/internal/app/handlers/reservations"
	"dwelling/internal/app/queries"
)

// maxImageBytes bounds listing image uploads.
const maxImageBytes = 10 << 20

type ListingHTTP interface {
	Get(c *gin.Context)
	DisabledDates(c *gin.Context)
	Quote(c *gin.Context)
	Reservations(c *gin.Context)
	UploadImage(c *gin.Context)
}

// ListingHandler wires listing queries and the image command to HTTP.
type ListingHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
}

func (h ListingHandler) Get(c *gin.Context) {
	if !h.queriesReady(c) {
		return
	}
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries,
		listingsapp.GetListingQuery{ListingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) DisabledDates(c *gin.Context) {
	if !h.queriesReady(c) {
		return
	}
	result, err := queries.Ask[availabilityapp.GetDisabledDatesQuery, dto.DisabledDates](c.Request.Context(), h.Queries,
		availabilityapp.GetDisabledDatesQuery{ListingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote prices ?start=&end= at the listing's current rate.
func (h ListingHandler) Quote(c *gin.Context) {
	if !h.queriesReady(c) {
		return
	}
	start, err := parseFlexibleTime(c.Query("start"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	end, err := parseFlexibleTime(c.Query("end"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	result, err := queries.Ask[listingsapp.QuoteStayQuery, dto.Quote](c.Request.Context(), h.Queries,
		listingsapp.QuoteStayQuery{ListingID: c.Param("id"), StartDate: start, EndDate: end})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Reservations(c *gin.Context) {
	if !h.queriesReady(c) {
		return
	}
	result, err := queries.Ask[reservationsapp.ListReservationsQuery, []dto.Reservation](c.Request.Context(), h.Queries,
		reservationsapp.ListReservationsQuery{ListingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

// UploadImage replaces the listing image with the multipart "image" file.
func (h ListingHandler) UploadImage(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "message": "listing commands unavailable"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	header, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "multipart field \"image\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, "image could not be read")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondBadRequest(c, "only image uploads are accepted")
		return
	}
	cmd := listingsapp.UploadListingImageCommand{
		RequesterID: requesterID(c),
		ListingID:   c.Param("id"),
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
	result, err := commands.Dispatch[listingsapp.UploadListingImageCommand, *listingsapp.UploadListingImageResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) queriesReady(c *gin.Context) bool {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "message": "listing queries unavailable"})
		return false
	}
	return true
}

var _ ListingHTTP = ListingHandler{}
