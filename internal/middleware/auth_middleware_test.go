package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(tokens *utils.TokenManager, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware(tokens))
	if len(roles) > 0 {
		group.Use(RoleAuthMiddleware(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(ContextUserID), "role": c.GetString(ContextUserRole)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	valid, err := tokens.GenerateAccessToken("u-1", "ana", models.RoleStaff)
	require.NoError(t, err)
	expired, err := utils.NewTokenManager("test-secret", -time.Minute).GenerateAccessToken("u-1", "ana", models.RoleStaff)
	require.NoError(t, err)
	foreign, err := utils.NewTokenManager("other-secret", time.Hour).GenerateAccessToken("u-1", "ana", models.RoleStaff)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, want: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + foreign, want: http.StatusUnauthorized},
		{name: "valid header", header: "Bearer " + valid, want: http.StatusOK},
		{name: "valid query token", query: "?access_token=" + valid, want: http.StatusOK},
	}

	engine := newTestEngine(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"id":"u-1"`)
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	engine := newTestEngine(tokens, models.RoleAdmin)

	staff, err := tokens.GenerateAccessToken("u-2", "bia", models.RoleStaff)
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken("u-3", "carla", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), utils.ErrCodeForbidden)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
