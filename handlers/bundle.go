// File: pmove/handlers/bundle.go
package handlers

import (
	"pmove/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Auth middleware.SessionAuthenticator

	// Account endpoints
	RegisterUserHandler  gin.HandlerFunc
	LoginUserHandler     gin.HandlerFunc
	LogoutUserHandler    gin.HandlerFunc
	GetProfileHandler    gin.HandlerFunc
	UpdateProfileHandler gin.HandlerFunc

	// Reservation endpoints
	Reservation *ReservationHandler

	// Ticket endpoints
	ListTicketsHandler   gin.HandlerFunc
	TicketHistoryHandler gin.HandlerFunc
	DeleteTicketHandler  gin.HandlerFunc
	ListCarriersHandler  gin.HandlerFunc

	Metrics gin.HandlerFunc
}
