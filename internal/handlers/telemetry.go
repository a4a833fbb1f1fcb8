package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errNoSnapshot   = "no snapshot published yet"
	errUnknownTherm = "unknown thermostat id"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// thermostatSummary is the list-endpoint projection of one thermostat.
type thermostatSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// @Summary      List discovered thermostats
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "thermostats, available"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/thermostats [get]
// @Security     BearerAuth
func (h *Handler) listThermostats(c *gin.Context) {
	available := h.services.IsAvailable()
	ids := h.services.ListThermostatIDs()

	out := make([]thermostatSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, thermostatSummary{
			ID:        id,
			Name:      h.services.GetCustomName(id),
			Available: available,
		})
	}
	c.JSON(http.StatusOK, gin.H{"thermostats": out, "available": available})
}

// @Summary      Get one thermostat's normalized readings
// @Tags         telemetry
// @Produce      json
// @Param        id   path      string  true  "Thermostat id, e.g. C1_T1"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/thermostats/{id} [get]
// @Security     BearerAuth
func (h *Handler) getThermostat(c *gin.Context) {
	id := c.Param("id")
	data := h.services.GetThermostatData(id)
	if len(data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownTherm})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        id,
		"name":      h.services.GetCustomName(id),
		"data":      data,
		"available": h.services.IsAvailable(),
	})
}

// @Summary      Get system and controller aggregates
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/system [get]
// @Security     BearerAuth
func (h *Handler) getSystem(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":      h.services.GetSystemData(),
		"available": h.services.IsAvailable(),
	})
}

// @Summary      Poll status
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "available, last_update, thermostat_count"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	resp := gin.H{
		"available":        h.services.IsAvailable(),
		"thermostat_count": len(h.services.ListThermostatIDs()),
	}
	if snap, ok := h.services.Snapshot(); ok {
		resp["last_update"] = snap.LastUpdate
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Get the full published snapshot
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/snapshot [get]
// @Security     BearerAuth
func (h *Handler) getSnapshot(c *gin.Context) {
	snap, ok := h.services.Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoSnapshot})
		return
	}
	c.JSON(http.StatusOK, snap)
}
