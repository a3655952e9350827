package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fastmeet-service/internal/fastmeet"
	"fastmeet-service/internal/geo"
)

// MapHandler exposes the clustered marker set and the distance-ranked list.
type MapHandler struct {
	maps *fastmeet.MapService
}

// NewMapHandler constructs a MapHandler.
func NewMapHandler(maps *fastmeet.MapService) *MapHandler {
	return &MapHandler{maps: maps}
}

// Markers handles GET /map/markers.
func (h *MapHandler) Markers(c *gin.Context) {
	userID := c.GetInt("userID")

	markers, err := h.maps.Markers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build markers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"markers": markers})
}

// Nearby handles GET /map/nearby. The reference point comes from lat/lon
// query params when present, otherwise from the viewer's last-known
// coordinates in the user directory.
func (h *MapHandler) Nearby(c *gin.Context) {
	userID := c.GetInt("userID")

	ref, ok, err := h.referencePoint(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve reference point"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no reference point: pass lat and lon or set a profile location"})
		return
	}

	ranked, err := h.maps.Nearby(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank meets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meets": ranked})
}

func (h *MapHandler) referencePoint(c *gin.Context, userID int) (geo.Point, bool, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			return geo.Point{}, false, nil
		}
		return geo.Point{Lat: lat, Lon: lon}, true, nil
	}
	return h.maps.ViewerPoint(c.Request.Context(), userID)
}
