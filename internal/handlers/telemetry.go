package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"thermostat_hub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List telemetry samples
// @Description  Filter samples by time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and device. A date-only 'to' covers the whole day.
// @Tags         telemetry
// @Produce      json
// @Param        from       query  string  false  "Start of range"  example(2025-08-01)
// @Param        to         query  string  false  "End of range"    example(2025-08-31)
// @Param        device_id  query  string  false  "Device id"
// @Success      200  {object}  map[string]interface{}  "count, samples"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/telemetry [get]
// @Security     BearerAuth
func (h *Handler) getTelemetry(c *gin.Context) {
	var (
		from     time.Time
		to       time.Time
		deviceID = strings.TrimSpace(c.Query("device_id"))
		err      error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	samples, err := h.services.Telemetry.List(c.Request.Context(), service.TelemetryFilter{
		From:     from,
		To:       to,
		DeviceID: deviceID,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load telemetry", "telemetry_list_failed", err,
			"from", from, "to", to, "device_id", deviceID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(samples),
		"samples": samples,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
