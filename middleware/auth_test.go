package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey      = []byte("middleware-test-secret-0123456789")
	testAudience = "studio-test"
)

type fakeLookup map[string]models.Principal

func (f fakeLookup) PrincipalFor(ctx context.Context, username string) (models.Principal, error) {
	p, ok := f[username]
	if !ok {
		return models.Principal{}, errors.New("unknown user")
	}
	return p, nil
}

func signTestToken(t *testing.T, subject, tokenType string, ttl time.Duration) string {
	t.Helper()
	token, err := utils.SignToken(testKey, testAudience, utils.TokenSpec{
		Subject:     subject,
		Authorities: []string{"ROLE_USER"},
		Type:        tokenType,
		IssuedAt:    time.Now(),
		TTL:         ttl,
	})
	require.NoError(t, err)
	return token
}

func setupAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	v, err := utils.NewTokenValidator(testKey, testAudience)
	require.NoError(t, err)

	lookup := fakeLookup{"ana": {UserID: 7, Username: "ana", Role: models.RoleUser}}

	router := gin.New()
	router.Use(EnsureValidToken(v, lookup))
	router.GET("/me", func(c *gin.Context) {
		p, err := GetPrincipal(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user_id": p.UserID, "username": p.Username}})
	})
	return router
}

func TestEnsureValidToken(t *testing.T) {
	router := setupAuthRouter(t)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid access token",
			header:     "Bearer " + signTestToken(t, "ana", "", time.Minute),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "malformed token",
			header:     "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "refresh token used as access token",
			header:     "Bearer " + signTestToken(t, "ana", utils.TokenTypeRefresh, time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "expired token",
			header:     "Bearer " + signTestToken(t, "ana", "", -time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "unknown subject",
			header:     "Bearer " + signTestToken(t, "ghost", "", time.Minute),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body must be a single JSON document")
			if tt.wantCode == "" {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(7), data["user_id"])
				return
			}
			assert.False(t, response["success"].(bool))
			assert.Equal(t, tt.wantCode, response["error"].(map[string]interface{})["code"])
		})
	}
}

func TestGetSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		want      string
		wantErr   bool
	}{
		{
			name:      "successfully extracts subject",
			setupFunc: func(c *gin.Context) { c.Set(subjectKey, "ana") },
			want:      "ana",
		},
		{
			name:      "subject not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name:      "subject is not a string",
			setupFunc: func(c *gin.Context) { c.Set(subjectKey, 12345) },
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			got, err := GetSubject(c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetClaimsAndPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetClaims(c)
	assert.Error(t, err)
	_, err = GetPrincipal(c)
	assert.Error(t, err)

	c.Set(claimsKey, "invalid")
	c.Set(principalKey, "invalid")
	_, err = GetClaims(c)
	assert.Error(t, err)
	_, err = GetPrincipal(c)
	assert.Error(t, err)

	SetPrincipal(c, models.Principal{UserID: 1, Username: "boss", Role: models.RoleAdmin})
	claims, err := GetClaims(c)
	require.NoError(t, err)
	assert.True(t, claims.HasAuthority(AuthorityAdmin))
	p, err := GetPrincipal(c)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
	subject, err := GetSubject(c)
	require.NoError(t, err)
	assert.Equal(t, "boss", subject)
}

func TestRequireAuthority(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupFunc      func(*gin.Context)
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name: "has required authority",
			setupFunc: func(c *gin.Context) {
				c.Set(claimsKey, &utils.TokenClaims{Authorities: []string{"ROLE_USER", "ROLE_ADMIN"}})
			},
			wantAborted: false,
		},
		{
			name: "missing required authority",
			setupFunc: func(c *gin.Context) {
				c.Set(claimsKey, &utils.TokenClaims{Authorities: []string{"ROLE_USER"}})
			},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:           "claims not in context",
			setupFunc:      func(c *gin.Context) {},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			tt.setupFunc(c)

			RequireAuthority(AuthorityAdmin)(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
			} else {
				assert.False(t, c.IsAborted())
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}
