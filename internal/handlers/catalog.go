package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"realty-catalog/internal/cache"
	"realty-catalog/internal/catalog"
	"realty-catalog/internal/models"
	"realty-catalog/internal/search"

	"github.com/gin-gonic/gin"
)

// CatalogHandler binds the catalog facade to HTTP.
type CatalogHandler struct {
	service *catalog.Service
	cache   *cache.Client // nil when caching is disabled
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service *catalog.Service, cacheClient *cache.Client) *CatalogHandler {
	return &CatalogHandler{service: service, cache: cacheClient}
}

// respondError maps the catalog error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Search handles GET /api/properties
func (h *CatalogHandler) Search(c *gin.Context) {
	filters, err := filtersFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sortBy := search.SortKey(c.DefaultQuery("sort", string(search.SortNewest)))

	// Cache lookup keyed by query params and catalog generation, so any
	// mutation implicitly invalidates prior entries.
	var cacheKey string
	if h.cache != nil {
		params := map[string]string{}
		for k, vs := range c.Request.URL.Query() {
			params[k] = strings.Join(vs, ",")
		}
		params["_generation"] = strconv.FormatInt(h.service.Generation(), 10)
		cacheKey = cache.Key("search", params)

		var cached gin.H
		if hit, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err != nil {
			log.Printf("Cache: lookup failed: %v", err)
		} else if hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	results, err := h.service.Search(c.Request.Context(), filters, sortBy)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"properties": results,
		"count":      len(results),
	}
	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, response); err != nil {
			log.Printf("Cache: store failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, response)
}

// filtersFromQuery builds search filters from query parameters. Absent
// parameters leave their dimension unrestricted.
func filtersFromQuery(c *gin.Context) (search.Filters, error) {
	var filters search.Filters

	filters.Location = c.Query("location")

	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		minPrice, err := strconv.ParseFloat(minPriceStr, 64)
		if err != nil {
			return filters, badParam("min_price", minPriceStr)
		}
		filters.MinPrice = &minPrice
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		maxPrice, err := strconv.ParseFloat(maxPriceStr, 64)
		if err != nil {
			return filters, badParam("max_price", maxPriceStr)
		}
		filters.MaxPrice = &maxPrice
	}

	if typesStr := c.Query("types"); typesStr != "" {
		for _, t := range strings.Split(typesStr, ",") {
			filters.Types = append(filters.Types, models.PropertyType(t))
		}
	}

	if bedroomsStr := c.Query("bedrooms"); bedroomsStr != "" {
		bedrooms, err := strconv.Atoi(bedroomsStr)
		if err != nil {
			return filters, badParam("bedrooms", bedroomsStr)
		}
		filters.Bedrooms = &bedrooms
	}
	if bathroomsStr := c.Query("bathrooms"); bathroomsStr != "" {
		bathrooms, err := strconv.Atoi(bathroomsStr)
		if err != nil {
			return filters, badParam("bathrooms", bathroomsStr)
		}
		filters.Bathrooms = &bathrooms
	}

	if minAreaStr := c.Query("min_area"); minAreaStr != "" {
		minArea, err := strconv.Atoi(minAreaStr)
		if err != nil {
			return filters, badParam("min_area", minAreaStr)
		}
		filters.MinArea = &minArea
	}
	if maxAreaStr := c.Query("max_area"); maxAreaStr != "" {
		maxArea, err := strconv.Atoi(maxAreaStr)
		if err != nil {
			return filters, badParam("max_area", maxAreaStr)
		}
		filters.MaxArea = &maxArea
	}

	return filters, nil
}

func badParam(name, value string) error {
	return &paramError{name: name, value: value}
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}

func (e *paramError) Is(target error) bool {
	return target == models.ErrValidation
}

// Get handles GET /api/properties/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	property, err := h.service.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Create handles POST /api/properties
func (h *CatalogHandler) Create(c *gin.Context) {
	var data models.Property
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

// Update handles PUT /api/properties/:id. An If-Match header carrying the
// expected version makes the write optimistic.
func (h *CatalogHandler) Update(c *gin.Context) {
	var upd models.PropertyUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var expectedVersion *int64
	if match := c.GetHeader("If-Match"); match != "" {
		version, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid If-Match header: " + match})
			return
		}
		expectedVersion = &version
	}

	property, err := h.service.UpdateProperty(c.Request.Context(), c.Param("id"), upd, expectedVersion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Delete handles DELETE /api/properties/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitOffer handles POST /api/properties/:id/offers
func (h *CatalogHandler) SubmitOffer(c *gin.Context) {
	var in catalog.OfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.service.SubmitOffer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// ResolveOffer handles POST /api/properties/:id/offers/:offerId/resolve
func (h *CatalogHandler) ResolveOffer(c *gin.Context) {
	var req struct {
		Decision models.OfferStatus `json:"decision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.service.ResolveOffer(c.Request.Context(), c.Param("id"), c.Param("offerId"), req.Decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// ScheduleViewing handles POST /api/properties/:id/viewings
func (h *CatalogHandler) ScheduleViewing(c *gin.Context) {
	var in catalog.ViewingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewing, err := h.service.ScheduleViewing(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewing)
}

// CompleteViewing handles POST /api/properties/:id/viewings/:viewingId/complete
func (h *CatalogHandler) CompleteViewing(c *gin.Context) {
	viewing, err := h.service.CompleteViewing(c.Request.Context(), c.Param("id"), c.Param("viewingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewing)
}

// CancelViewing handles POST /api/properties/:id/viewings/:viewingId/cancel
func (h *CatalogHandler) CancelViewing(c *gin.Context) {
	viewing, err := h.service.CancelViewing(c.Request.Context(), c.Param("id"), c.Param("viewingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewing)
}

// ToggleFavorite handles POST /api/favorites/toggle
func (h *CatalogHandler) ToggleFavorite(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id" binding:"required"`
		PropertyID string `json:"property_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	favorite, err := h.service.ToggleFavorite(c.Request.Context(), req.UserID, req.PropertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

// ListFavorites handles GET /api/favorites/:userId
func (h *CatalogHandler) ListFavorites(c *gin.Context) {
	favorites := h.service.ListFavorites(c.Request.Context(), c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}
