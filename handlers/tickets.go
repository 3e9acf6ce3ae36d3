package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	recordsRepo "pmove/database/repository/records"
	"pmove/middleware"
	"pmove/models"
	"pmove/services/reservation"
	"pmove/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TicketStore is the ticket part of the PMove API.
type TicketStore interface {
	GetTickets(ctx context.Context, name, surname string) ([]models.Ticket, error)
	DeleteReservation(ctx context.Context, reservationNumber string) error
}

type TicketsHandler struct {
	Store    TicketStore
	Archive  recordsRepo.TicketRecordRepository
	Payloads reservation.PayloadBuilder
}

type ticketView struct {
	models.Ticket
	SummaryURL string `json:"summaryUrl"`
}

// ListTickets returns the rider's tickets as stored by the PMove API.
func (h *TicketsHandler) ListTickets(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	tickets, err := h.Store.GetTickets(c.Request.Context(), sess.Profile.Name, sess.Profile.Surname)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]ticketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, ticketView{Ticket: tickets[i], SummaryURL: h.Payloads.SummaryURL(&tickets[i])})
	}
	c.JSON(http.StatusOK, gin.H{"billets": views})
}

// History lists the tickets this service submitted for the requester.
func (h *TicketsHandler) History(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	if h.Archive == nil {
		c.JSON(http.StatusOK, gin.H{"records": []models.TicketRecord{}})
		return
	}
	records, err := h.Archive.ListByRequester(c.Request.Context(), sess.Profile.Mail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// DeleteTicket removes a reservation at the PMove API and from the archive.
func (h *TicketsHandler) DeleteTicket(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	number := strings.TrimSpace(c.Param("reservationNumber"))

	// Only reservations on the rider's own tickets can be deleted.
	tickets, err := h.Store.GetTickets(c.Request.Context(), sess.Profile.Name, sess.Profile.Surname)
	if err != nil {
		respondError(c, err)
		return
	}
	if number == "" || !hasReservation(tickets, number) {
		getLogger(c).Warn("Refused to delete a reservation not owned by the session",
			zap.String("session", sess.ID), zap.String("reservation", number))
		utils.JSONError(c, http.StatusNotFound, "No ticket with this reservation number", number)
		return
	}

	if err := h.Store.DeleteReservation(c.Request.Context(), number); err != nil {
		respondError(c, err)
		return
	}

	if h.Archive != nil {
		err := h.Archive.DeleteByReservationNumber(c.Request.Context(), sess.Profile.Mail, number)
		if err != nil && !errors.Is(err, recordsRepo.ErrRecordNotFound) {
			getLogger(c).Warn("Failed to remove archived ticket", zap.String("reservation", number), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

func hasReservation(tickets []models.Ticket, number string) bool {
	for _, t := range tickets {
		for _, leg := range t.Legs {
			if leg.ReservationNumber == number {
				return true
			}
		}
	}
	return false
}

type carrierView struct {
	Carrier       models.Carrier `json:"carrier"`
	BaggagePolicy string         `json:"baggagePolicy"`
}

// ListCarriers returns the supported carriers with their luggage rules.
func ListCarriers(c *gin.Context) {
	out := make([]carrierView, 0, len(models.Carriers))
	for _, carrier := range models.Carriers {
		out = append(out, carrierView{Carrier: carrier, BaggagePolicy: reservation.BaggagePolicies[carrier]})
	}
	c.JSON(http.StatusOK, gin.H{"carriers": out})
}
