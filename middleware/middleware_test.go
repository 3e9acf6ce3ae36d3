package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pmove/models"

	"github.com/gin-gonic/gin"
)

type staticAuth map[string]*models.Session

func (a staticAuth) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if s, ok := a[token]; ok {
		return s, nil
	}
	return nil, errors.New("invalid token")
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(staticAuth{"good": {ID: "sess-1"}}))
	r.GET("/me", func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.ID)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("got `%d`, want `%d`", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "sess-1" {
				t.Errorf("got `%s`, want `%s`", rec.Body.String(), "sess-1")
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if got := call("1.2.3.4"); got != http.StatusNoContent {
			t.Fatalf("got `%d`, want `%d` on call %d", got, http.StatusNoContent, i+1)
		}
	}
	if got := call("1.2.3.4"); got != http.StatusTooManyRequests {
		t.Errorf("got `%d`, want `%d`", got, http.StatusTooManyRequests)
	}
	if got := call("5.6.7.8"); got != http.StatusNoContent {
		t.Errorf("got `%d`, want `%d` for another client", got, http.StatusNoContent)
	}
}

func TestRateLimitKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{"first forwarded address", "1.2.3.4, 10.0.0.1", "9.9.9.9", "10.0.0.2:5000", "1.2.3.4"},
		{"real ip header", "", " 9.9.9.9 ", "10.0.0.2:5000", "9.9.9.9"},
		{"invalid forwarded value", "not-an-ip", "", "10.0.0.2:5000", "10.0.0.2"},
		{"ipv4 mapped peer", "", "", "[::ffff:10.0.0.3]:443", "10.0.0.3"},
		{"peer without port", "", "", "10.0.0.4", "10.0.0.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req

			if got := rateLimitKey(c); got != tt.want {
				t.Errorf("got `%s`, want `%s`", got, tt.want)
			}
		})
	}
}
