package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pmove/models"
	"pmove/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrBadCredentials  = errors.New("please enter your e-mail and password")
)

// AccountGateway is the part of the PMove API that owns user accounts.
type AccountGateway interface {
	Login(ctx context.Context, mail, password string) (models.Profile, error)
	Register(ctx context.Context, reg models.UserRegistration) error
	UpdateProfile(ctx context.Context, p models.Profile) error
}

// Manager keeps one explicit Session per login in Redis. A session is set
// at login, changed only through UpdateProfile and dropped at logout.
type Manager struct {
	Client  *redis.Client
	Gateway AccountGateway
	TTL     time.Duration
	Logger  *zap.Logger
}

func NewManager(client *redis.Client, gateway AccountGateway, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{Client: client, Gateway: gateway, TTL: ttl, Logger: logger}
}

func sessionKey(id string) string { return utils.SessionPrefix + id }

// Login checks the credentials with the PMove API and opens a session.
// The returned token carries the session ID as its subject.
func (m *Manager) Login(ctx context.Context, mail, password string) (string, *models.Session, error) {
	mail = strings.TrimSpace(mail)
	if mail == "" || password == "" {
		return "", nil, ErrBadCredentials
	}

	profile, err := m.Gateway.Login(ctx, mail, password)
	if err != nil {
		m.Logger.Info("Login rejected", zap.String("mail", mail), zap.Error(err))
		return "", nil, err
	}

	now := time.Now().UTC()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	token, err := utils.GenerateToken(sess.ID, profile.Mail, m.TTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	sess.TokenHash = utils.HashToken(token)

	if err := m.save(ctx, sess, m.TTL); err != nil {
		return "", nil, err
	}
	m.Logger.Info("Session opened", zap.String("session", sess.ID), zap.Int("client", profile.ClientID))
	return token, sess, nil
}

// Register forwards a sign-up to the PMove API.
func (m *Manager) Register(ctx context.Context, reg models.UserRegistration) error {
	return m.Gateway.Register(ctx, reg)
}

func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := m.Client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &sess, nil
}

// Authenticate resolves a bearer token to its live session. Tokens of a
// closed session are rejected even before they expire.
func (m *Manager) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	id, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.TokenHash != utils.HashToken(token) {
		return nil, utils.ErrInvalidToken
	}
	return sess, nil
}

// UpdateProfile replaces the profile at the PMove API and, once accepted,
// in the session. The client id always comes from the session.
func (m *Manager) UpdateProfile(ctx context.Context, sess *models.Session, p models.Profile) (*models.Session, error) {
	p.ClientID = sess.Profile.ClientID
	if err := m.Gateway.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}

	updated := *sess
	updated.Profile = p
	updated.UpdatedAt = time.Now().UTC()
	if err := m.save(ctx, &updated, redis.KeepTTL); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.Client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	m.Logger.Info("Session closed", zap.String("session", id))
	return nil
}

func (m *Manager) save(ctx context.Context, sess *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.Client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
