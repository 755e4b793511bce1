package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// Webhook is the single transport entry point: a button callback or a typed
// message, already reduced to the transport-agnostic event shape.
func (a *API) Webhook(c *gin.Context) {
	var ev models.InboundEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid event payload: "+err.Error())
		return
	}

	resp, err := a.Engine.Handle(c.Request.Context(), ev)
	if err != nil {
		// Persistence failures must never turn into an optimistic
		// confirmation; the caller is told the action did not complete.
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
