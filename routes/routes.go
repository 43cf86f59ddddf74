package routes

import (
	"net/http"
	"time"

	directoryRepo "lexbook/database/repository/directory"
	"lexbook/handlers"
	"lexbook/middleware"
	"lexbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the scheduling endpoints. All of them
// require an authenticated caller.
func RegisterAppointmentRoutes(r *gin.Engine, h *handlers.AppointmentHandler, directory directoryRepo.UserDirectory) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware(directory))
		api.GET("/availability/:professionalId", h.GetAvailability)
		api.POST("", h.CreateAppointment)
		api.GET("", h.ListAppointments)
		api.GET("/:id", h.GetAppointment)
		api.PUT("/:id", h.UpdateAppointment)
		api.PUT("/:id/cancel", h.CancelAppointment)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, h *handlers.AppointmentHandler, directory directoryRepo.UserDirectory) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAppointmentRoutes(r, h, directory)
}
