package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// ListServices returns the full provider catalog, including unavailable
// services.
func (a *API) ListServices(c *gin.Context) {
	svcs, err := a.Services.ListAll()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if svcs == nil {
		svcs = []models.Service{}
	}
	c.JSON(http.StatusOK, gin.H{"services": svcs})
}

// ToggleServiceStatus flips one service between active and unavailable, the
// HTTP twin of the chat status toggle.
func (a *API) ToggleServiceStatus(c *gin.Context) {
	id := c.Param("id")

	svc, err := a.Services.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	next := models.StatusUnavailable
	if svc.Status != models.StatusActive {
		next = models.StatusActive
	}
	if err := a.Services.SetStatus(id, next); err != nil {
		RespondDomainError(c, err)
		return
	}

	svc.Status = next
	c.JSON(http.StatusOK, gin.H{"service": svc})
}
