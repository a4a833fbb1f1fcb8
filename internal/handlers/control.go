package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errSetVariable = "failed to set variable"

// Request DTO for a single-variable write.
type setVariableRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetVariableRequest is an exported model for Swagger docs of the write payload.
type SetVariableRequest struct {
	// Raw wire value, always a string, e.g. "698"
	Value string `json:"value" example:"698"`
}

// @Summary      Write one raw controller variable
// @Description  Sends a SetAttributes call for the named variable
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        name  path   string              true  "Raw variable name, e.g. C1_T1_setpoint"
// @Param        body  body   SetVariableRequest  true  "Write payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/variables/{name} [post]
// @Security     BearerAuth
func (h *Handler) setVariable(c *gin.Context) {
	var req setVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	name := c.Param("name")
	ctx := c.Request.Context()
	if err := h.services.SetVariable(ctx, name, req.Value); err != nil {
		// The controller rejected or never acknowledged the write.
		h.logAndJSONError(c, http.StatusBadGateway, errSetVariable, "set_variable_failed", err, "name", name)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusOK, "name": name, "value": req.Value})
}
