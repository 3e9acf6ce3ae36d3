package handlers

import (
	"errors"
	"net/http"

	"pmove/services/gateway"
	"pmove/services/reservation"
	"pmove/services/session"
	"pmove/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Messages of
// validation, lookup and submission errors reach the client unchanged.
func respondError(c *gin.Context, err error) {
	var (
		verr *reservation.ValidationError
		lerr *reservation.LookupError
		serr *reservation.SubmissionError
		aerr *gateway.APIError
	)

	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, verr.Message, verr.Field)
	case errors.As(err, &lerr):
		status := http.StatusBadGateway
		if lerr.NotFound {
			status = http.StatusNotFound
		}
		utils.JSONError(c, status, lerr.Message, "")
	case errors.As(err, &serr):
		utils.JSONError(c, upstreamStatus(serr.Status), serr.Message, "")
	case errors.Is(err, reservation.ErrDraftNotFound):
		utils.JSONError(c, http.StatusNotFound, "Reservation not found or expired, please start again", "")
	case errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, reservation.ErrDraftBusy),
		errors.Is(err, reservation.ErrStaleResponse),
		errors.Is(err, reservation.ErrTerminal):
		utils.JSONError(c, http.StatusConflict, err.Error(), "")
	case errors.Is(err, session.ErrBadCredentials):
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, utils.ErrInvalidToken):
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
	case errors.As(err, &aerr):
		utils.JSONError(c, upstreamStatus(aerr.Status), aerr.Message, "")
	default:
		getLogger(c).Error("Unexpected error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

// upstreamStatus keeps 4xx answers of the PMove API and reports anything
// else as a bad gateway.
func upstreamStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
