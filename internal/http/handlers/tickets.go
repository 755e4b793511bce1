package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetBookingETicket streams the e-ticket PDF for a confirmed booking.
func (a *API) GetBookingETicket(c *gin.Context) {
	pdfBytes, filename, err := a.Tickets.BuildETicket(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
