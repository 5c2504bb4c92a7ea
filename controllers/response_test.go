package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "not found",
			err:            &services.ServiceError{Kind: services.ErrNotFound, Code: "PRODUCT_NOT_FOUND", Message: "product with id 7 not found"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "PRODUCT_NOT_FOUND",
			expectedMsg:    "product with id 7 not found",
		},
		{
			name:           "wrapped already exists",
			err:            fmt.Errorf("create: %w", &services.ServiceError{Kind: services.ErrAlreadyExists, Code: "USER_ALREADY_EXISTS", Message: "taken"}),
			expectedStatus: http.StatusConflict,
			expectedCode:   "USER_ALREADY_EXISTS",
			expectedMsg:    "taken",
		},
		{
			name:           "bad request",
			err:            &services.ServiceError{Kind: services.ErrBadRequest, Code: "INVALID_QUANTITY", Message: "bad"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_QUANTITY",
		},
		{
			name:           "authentication failed",
			err:            &services.ServiceError{Kind: services.ErrAuthenticationFailed, Code: "AUTHENTICATION_FAILED", Message: "no"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTHENTICATION_FAILED",
		},
		{
			name:           "forbidden",
			err:            &services.ServiceError{Kind: services.ErrForbidden, Code: "FORBIDDEN", Message: "not yours"},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "consistency keeps its code but hides the text",
			err:            &services.ServiceError{Kind: services.ErrConsistency, Code: "CONSISTENCY_ERROR", Message: "total drifted"},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "CONSISTENCY_ERROR",
			expectedMsg:    "An internal error occurred",
		},
		{
			name:           "plain error",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
			expectedMsg:    "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) { respondServiceError(c, tt.err) })

			w, response := performRequest(t, router, http.MethodGet, "/", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, false, response["success"])
			assert.Equal(t, tt.expectedCode, responseErrorCode(response))
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, response["error"].(map[string]interface{})["message"])
			}
		})
	}
}

func TestRespondServiceErrorLogsInternalErrors(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	router := gin.New()
	router.GET("/boom", func(c *gin.Context) { respondServiceError(c, errors.New("disk full")) })
	router.GET("/missing", func(c *gin.Context) {
		respondServiceError(c, &services.ServiceError{Kind: services.ErrNotFound, Code: "X_NOT_FOUND", Message: "x"})
	})

	performRequest(t, router, http.MethodGet, "/missing", nil)
	assert.Empty(t, hook.AllEntries())

	performRequest(t, router, http.MethodGet, "/boom", nil)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "/boom", entry.Data["path"])
}

func TestPathAndQueryID(t *testing.T) {
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		filter, ok := queryID(c, "user_id")
		if !ok {
			return
		}
		respond(c, http.StatusOK, gin.H{"id": id, "filtered": filter != nil})
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{name: "plain id", path: "/items/5", expectedStatus: http.StatusOK},
		{name: "with filter", path: "/items/5?user_id=2", expectedStatus: http.StatusOK},
		{name: "zero id", path: "/items/0", expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_ID"},
		{name: "word id", path: "/items/abc", expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_ID"},
		{name: "bad filter", path: "/items/5?user_id=me", expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_QUERY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, responseErrorCode(response))
			}
		})
	}
}

func TestPrincipalMissing(t *testing.T) {
	router := gin.New()
	router.GET("/me", func(c *gin.Context) {
		if _, ok := principal(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w, response := performRequest(t, router, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", responseErrorCode(response))
}
