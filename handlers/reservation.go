package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"pmove/middleware"
	"pmove/models"
	"pmove/services/reservation"
	"pmove/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationHandler exposes the reservation steps to the mobile client.
// Every route runs behind JWTAuthMiddleware.
type ReservationHandler struct {
	Service reservation.ReservationService
}

func NewReservationHandler(svc reservation.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

// flexString accepts a JSON string or number; reservation numbers are typed
// into a numeric field on the client.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type lookupRequest struct {
	ReservationNumber flexString     `json:"reservationNumber"`
	Carrier           models.Carrier `json:"carrier"`
}

type bagRequest struct {
	Weight      flexString `json:"weight"`
	Description string     `json:"description"`
}

func (h *ReservationHandler) session(c *gin.Context) (*models.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
	}
	return sess, ok
}

func (h *ReservationHandler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		getLogger(c).Info("Invalid reservation request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return false
	}
	return true
}

func (h *ReservationHandler) respondDraft(c *gin.Context, status int, d models.Draft, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, h.Service.View(d))
}

// InitiateSession opens a new reservation at the lookup step.
func (h *ReservationHandler) InitiateSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	d, err := h.Service.InitiateSession(c.Request.Context(), sess)
	h.respondDraft(c, http.StatusCreated, d, err)
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.Service.Summary(c.Request.Context(), sess, c.Param("draftID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ReservationHandler) Lookup(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req lookupRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.Service.LookupReservation(c.Request.Context(), sess, c.Param("draftID"), string(req.ReservationNumber), req.Carrier)
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) SubmitAssistance(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var form struct {
		reservation.AssistanceForm
		DeclaredBagCount flexString `json:"declaredBagCount"`
	}
	if !h.bind(c, &form) {
		return
	}
	form.AssistanceForm.DeclaredBagCount = string(form.DeclaredBagCount)
	d, err := h.Service.SubmitAssistance(c.Request.Context(), sess, c.Param("draftID"), form.AssistanceForm)
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) AddBag(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req bagRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.Service.AddBag(c.Request.Context(), sess, c.Param("draftID"), string(req.Weight), req.Description)
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) RemoveBag(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	d, err := h.Service.RemoveBag(c.Request.Context(), sess, c.Param("draftID"), c.Param("bagID"))
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) CompleteBaggage(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	d, err := h.Service.CompleteBaggage(c.Request.Context(), sess, c.Param("draftID"))
	h.respondDraft(c, http.StatusOK, d, err)
}

// AddLeg looks up another reservation from the finalization screen.
func (h *ReservationHandler) AddLeg(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req lookupRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.Service.AddLeg(c.Request.Context(), sess, c.Param("draftID"), string(req.ReservationNumber), req.Carrier)
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) Reset(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	d, err := h.Service.Reset(c.Request.Context(), sess, c.Param("draftID"))
	h.respondDraft(c, http.StatusOK, d, err)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	conf, err := h.Service.Confirm(c.Request.Context(), sess, c.Param("draftID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}
