package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "OK"

	headerSnapshotStale = "X-Snapshot-Stale"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// upstreamStatus picks the status carried by a remote failure, or 500.
func upstreamStatus(err error) int {
	var (
		fe *sdm.FetchError
		ae *sdm.AuthError
	)
	switch {
	case errors.As(err, &fe) && fe.HTTPCode >= 400:
		return fe.HTTPCode
	case errors.As(err, &ae) && ae.HTTPCode >= 400:
		return ae.HTTPCode
	}
	return http.StatusInternalServerError
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Device records
// @Description  Serves the cached snapshot while it is fresh. When a refresh fails and an older snapshot exists it is served with X-Snapshot-Stale: true.
// @Tags         thermostat
// @Produce      json
// @Param        force_flush  query  bool  false  "Bypass the cache"
// @Success      200  {array}   models.DeviceRecord
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /info [get]
func (h *Handler) info(c *gin.Context) {
	force := false
	if qs := c.Query("force_flush"); qs != "" {
		v, err := strconv.ParseBool(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "force_flush must be a boolean"})
			return
		}
		force = v
	}

	snap, err := h.services.GetOrRefresh(c.Request.Context(), force)
	if err != nil {
		if !snap.Populated() {
			h.logAndJSONError(c, upstreamStatus(err), err.Error(), "info_refresh_failed", err, "force_flush", force)
			return
		}
		if h.log != nil {
			h.log.Warnw("info_serving_stale", "err", err, "captured_at", snap.CapturedAt)
		}
		c.Header(headerSnapshotStale, "true")
	}
	records := snap.Records
	if records == nil {
		records = []models.DeviceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// Request DTOs. Temperatures are pointers so 0 °C stays a valid value.
type setHeatRequest struct {
	DeviceID    string   `json:"deviceID" binding:"required"`
	HeatCelsius *float64 `json:"heatCelsius" binding:"required"`
}

type setCoolRequest struct {
	DeviceID    string   `json:"deviceID" binding:"required"`
	CoolCelsius *float64 `json:"coolCelsius" binding:"required"`
}

type setRangeRequest struct {
	DeviceID    string   `json:"deviceID" binding:"required"`
	HeatCelsius *float64 `json:"heatCelsius" binding:"required"`
	CoolCelsius *float64 `json:"coolCelsius" binding:"required"`
}

type setTempModeRequest struct {
	DeviceID string `json:"deviceID" binding:"required"`
	TempMode string `json:"tempMode" binding:"required,oneof=HEAT COOL HEATCOOL OFF" example:"HEATCOOL"`
}

type setEcoModeRequest struct {
	DeviceID string `json:"deviceID" binding:"required"`
	EcoMode  string `json:"ecoMode" binding:"required,oneof=MANUAL_ECO OFF" example:"MANUAL_ECO"`
}

type setFanTimerRequest struct {
	DeviceID        string `json:"deviceID" binding:"required"`
	TimerMode       string `json:"timerMode" binding:"required,oneof=ON OFF" example:"ON"`
	DurationSeconds int    `json:"durationSeconds" binding:"omitempty,min=1,max=43200" example:"900"`
}

// commandReply writes the outcome of a device command.
func (h *Handler) commandReply(c *gin.Context, res models.CommandResult, okMsg, failMsg string) {
	if res.Success {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": okMsg, "data": res})
		return
	}
	code := http.StatusInternalServerError
	if res.HTTPCode == http.StatusBadRequest {
		code = http.StatusBadRequest
	}
	msg := res.Error
	if msg == "" {
		msg = failMsg
	}
	if h.log != nil {
		h.log.Errorw("command_request_failed", "path", c.FullPath(), "upstream_status", res.HTTPCode, "err", res.Error)
	}
	c.JSON(code, gin.H{"error": msg})
}

func (h *Handler) bindCommand(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Set heat setpoint
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setHeatRequest  true  "deviceID, heatCelsius"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_heat [post]
func (h *Handler) setHeat(c *gin.Context) {
	var req setHeatRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetHeat(c.Request.Context(), req.DeviceID, *req.HeatCelsius)
	h.commandReply(c, res, "Heat set successfully", "Failed to set heat")
}

// @Summary      Set cool setpoint
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setCoolRequest  true  "deviceID, coolCelsius"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_cool [post]
func (h *Handler) setCool(c *gin.Context) {
	var req setCoolRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetCool(c.Request.Context(), req.DeviceID, *req.CoolCelsius)
	h.commandReply(c, res, "Cool set successfully", "Failed to set cool")
}

// @Summary      Set heat and cool setpoints
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setRangeRequest  true  "deviceID, heatCelsius, coolCelsius"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_range [post]
func (h *Handler) setRange(c *gin.Context) {
	var req setRangeRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetRange(c.Request.Context(), req.DeviceID, *req.HeatCelsius, *req.CoolCelsius)
	h.commandReply(c, res, "Range set successfully", "Failed to set range")
}

// @Summary      Set HVAC mode
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setTempModeRequest  true  "deviceID, tempMode"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_temp_mode [post]
func (h *Handler) setTempMode(c *gin.Context) {
	var req setTempModeRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetTempMode(c.Request.Context(), req.DeviceID, models.TempMode(req.TempMode))
	h.commandReply(c, res, "TempMode set successfully", "Failed to set temp mode")
}

// @Summary      Set eco mode
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setEcoModeRequest  true  "deviceID, ecoMode"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_eco_mode [post]
func (h *Handler) setEcoMode(c *gin.Context) {
	var req setEcoModeRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetEcoMode(c.Request.Context(), req.DeviceID, models.EcoMode(req.EcoMode))
	h.commandReply(c, res, "EcoMode set successfully", "Failed to set eco mode")
}

// @Summary      Start or stop the fan timer
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body  setFanTimerRequest  true  "deviceID, timerMode, durationSeconds"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /set_fan_timer [post]
func (h *Handler) setFanTimer(c *gin.Context) {
	var req setFanTimerRequest
	if !h.bindCommand(c, &req) {
		return
	}
	res := h.services.SetFanTimer(c.Request.Context(), req.DeviceID, models.FanTimerMode(req.TimerMode), req.DurationSeconds)
	h.commandReply(c, res, "Fan Timer set successfully", "Failed to set fan timer")
}
