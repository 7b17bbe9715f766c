package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	handlers = append(handlers, func(c *gin.Context) {
		if claims, ok := auth.CurrentUser(c); ok {
			response.OK(c, claims.Public())
			return
		}
		response.OK(c, gin.H{"ok": true})
	})
	r.GET("/", handlers...)
	return r
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		header     string
		wantStatus int
	}{
		{"disabled when empty", "", "", http.StatusOK},
		{"matching key", "s3cret", "s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong key", "s3cret", "guess", http.StatusUnauthorized},
		{"prefix of key", "s3cret", "s3c", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(APIKey(tt.key))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAPIKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Invalid API Key", decodeBody(t, w).Error)
			}
		})
	}
}

func issue(t *testing.T, svc *auth.JWTService, admin bool) string {
	t.Helper()
	token, _, err := svc.Generate(&models.User{ID: 3, Username: "reception", IsAdmin: admin}, false)
	require.NoError(t, err)
	return token
}

func TestJWT(t *testing.T) {
	svc := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	other := auth.NewJWTService("other-secret", time.Hour, 24*time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid or expired token"},
		{"foreign signature", "Bearer " + issue(t, other, false), http.StatusUnauthorized, "invalid or expired token"},
		{"valid token", "Bearer " + issue(t, svc, false), http.StatusOK, ""},
		{"lower-case scheme", "bearer " + issue(t, svc, false), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(JWT(svc))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantError, body.Error)
			if tt.wantStatus == http.StatusOK {
				data := body.Data.(map[string]interface{})
				assert.Equal(t, "reception", data["username"])
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	r := newRouter(JWT(svc), RequireAdmin())

	t.Run("non-admin is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, svc, false))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not enough permissions", decodeBody(t, w).Error)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, svc, true))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("without JWT middleware", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(RequireAdmin()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCORSPreflightAllowsAPIKey(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000, http://kiosk.local"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://kiosk.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "API-KEY, Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://kiosk.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "api-key")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseOrigins(" a, ,b "))
	assert.Empty(t, parseOrigins(""))
}
