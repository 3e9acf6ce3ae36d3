package routes

import (
	"net/http"
	"time"

	"pmove/handlers"
	"pmove/middleware"
	"pmove/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.RegisterUserHandler)
		api.POST("/login", hb.LoginUserHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.Auth))
		api.GET("/me", hb.GetProfileHandler)
		api.PUT("/me", hb.UpdateProfileHandler)
		api.POST("/logout", hb.LogoutUserHandler)
	}
}

// RegisterReservationRoutes sets up the endpoints of the reservation steps.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	h := hb.Reservation
	group := r.Group("/api/reservations")
	{
		group.Use(middleware.JWTAuthMiddleware(hb.Auth))
		group.POST("", h.InitiateSession)
		group.GET("/:draftID", h.GetReservation)
		group.POST("/:draftID/lookup", h.Lookup)
		group.PUT("/:draftID/assistance", h.SubmitAssistance)
		group.POST("/:draftID/bags", h.AddBag)
		group.POST("/:draftID/bags/complete", h.CompleteBaggage)
		group.DELETE("/:draftID/bags/:bagID", h.RemoveBag)
		group.POST("/:draftID/legs", h.AddLeg)
		group.POST("/:draftID/reset", h.Reset)
		group.POST("/:draftID/confirm", h.Confirm)
	}
}

// RegisterTicketRoutes sets up the submitted tickets endpoints.
func RegisterTicketRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/carriers", hb.ListCarriersHandler)

	group := r.Group("/api/tickets")
	{
		group.Use(middleware.JWTAuthMiddleware(hb.Auth))
		group.GET("", hb.ListTicketsHandler)
		group.GET("/history", hb.TicketHistoryHandler)
		group.DELETE("/:reservationNumber", hb.DeleteTicketHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm PMove"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	if hb.Metrics != nil {
		r.GET("/metrics", hb.Metrics)
	}
	RegisterUserRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterTicketRoutes(r, hb)
}
