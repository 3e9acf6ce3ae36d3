package handlers

import (
	"context"
	"net/http"

	"pmove/middleware"
	"pmove/models"
	"pmove/services/reservation"
	"pmove/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionService is implemented by *session.Manager.
type SessionService interface {
	Login(ctx context.Context, mail, password string) (string, *models.Session, error)
	Register(ctx context.Context, reg models.UserRegistration) error
	UpdateProfile(ctx context.Context, sess *models.Session, p models.Profile) (*models.Session, error)
	Logout(ctx context.Context, id string) error
}

type AccountHandler struct {
	Sessions SessionService
	Payloads reservation.PayloadBuilder
}

func NewAccountHandler(sessions SessionService, payloads reservation.PayloadBuilder) *AccountHandler {
	return &AccountHandler{Sessions: sessions, Payloads: payloads}
}

// RegisterHandler forwards a sign-up to the PMove API.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.UserRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Info("Invalid registration request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Please fill in all required fields", err.Error())
		return
	}

	if err := h.Sessions.Register(c.Request.Context(), req); err != nil {
		logger.Warn("User registration failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created"})
}

// LoginHandler opens a session and returns its bearer token with the profile.
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Mail     string `json:"mail"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	token, sess, err := h.Sessions.Login(c.Request.Context(), req.Mail, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": sess.Profile})
}

func (h *AccountHandler) LogoutHandler(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	if err := h.Sessions.Logout(c.Request.Context(), sess.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) GetProfileHandler(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         sess.Profile,
		"handicapCode": models.HandicapCodes[sess.Profile.Handicap],
		"clientQrUrl":  h.Payloads.ClientURL(sess.Profile),
	})
}

// UpdateProfileHandler replaces the whole profile, as the PMove API does.
func (h *AccountHandler) UpdateProfileHandler(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Session expired, please log in again", "")
		return
	}
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	updated, err := h.Sessions.UpdateProfile(c.Request.Context(), sess, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": updated.Profile})
}
