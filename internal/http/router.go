package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	h "github.com/DiosyStephen/routAfare/internal/http/handlers"
	"github.com/DiosyStephen/routAfare/internal/http/middleware"
)

// NewRouter wires the webhook and the management API around the handler set.
func NewRouter(a *h.API) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	// Chat transport entry point.
	r.POST("/webhook", a.Webhook)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", a.Health)
		apiGroup.GET("/db-check", a.DBCheck)
		apiGroup.GET("/routes", a.Routes)

		apiGroup.POST("/auth/login", a.Login)

		apiGroup.GET("/bookings/:id/e-ticket", a.GetBookingETicket)

		servicesGroup := apiGroup.Group("/services")
		servicesGroup.Use(middleware.AuthRequired(a.JWTSecret))
		servicesGroup.GET("", a.ListServices)
		servicesGroup.POST("/:id/status", a.ToggleServiceStatus)
	}

	return r
}
