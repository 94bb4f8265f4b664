package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	RegisterTituloRoutes(r, services.Titulo)
}
