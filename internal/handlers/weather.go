package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary      Current outdoor weather
// @Tags         weather
// @Produce      json
// @Success      200  {object}  models.WeatherData
// @Failure      500  {object}  map[string]string
// @Router       /weather [get]
func (h *Handler) weather(c *gin.Context) {
	data, err := h.services.Observation(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, err.Error(), "weather_failed", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Move the weather location
// @Description  Resets the cached station and observation.
// @Tags         weather
// @Produce      plain
// @Param        lat   query  number  true  "Latitude"   example(40.7128)
// @Param        long  query  number  true  "Longitude"  example(-74.006)
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Router       /set_lat_long [get]
func (h *Handler) setLatLong(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number between -90 and 90"})
		return
	}
	long, err := strconv.ParseFloat(c.Query("long"), 64)
	if err != nil || long < -180 || long > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "long must be a number between -180 and 180"})
		return
	}
	h.services.SetLocation(lat, long)
	c.String(http.StatusOK, "Latitude and Longitude have been updated.")
}
