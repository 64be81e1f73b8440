package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"travelnest/internal/app/dto"
	bookingapp "travelnest/internal/app/handlers/booking"
	listingapp "travelnest/internal/app/handlers/listings"
	"travelnest/internal/app/queries"
)

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Detail(c *gin.Context)
	Quote(c *gin.Context)
}

// ListingHandler wires listing queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Catalog responds with a filtered collection of listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.ListCatalogQuery{
		OwnerID:  c.Query("owner"),
		Country:  c.Query("country"),
		Query:    c.Query("q"),
		PriceMin: parseInt64(c.Query("price_min")),
		PriceMax: parseInt64(c.Query("price_max")),
		Sort:     c.Query("sort"),
		Limit:    parseIntWithDefault(c.Query("limit"), 24),
		Offset:   parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.ListCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Detail(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "listing detail", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote prices a stay with the direct booking policy. Anonymous callers get
// the non-member price.
func (h ListingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := bookingapp.QuoteStayQuery{
		ListingID: c.Param("id"),
		CheckIn:   c.Query("check_in"),
		CheckOut:  c.Query("check_out"),
		Guests:    parseInt(c.Query("guests")),
	}
	if p, ok := currentPrincipal(c); ok {
		query.UserID = p.ID
	}
	result, err := queries.Ask[bookingapp.QuoteStayQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "quote", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
