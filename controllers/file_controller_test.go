package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/stretchr/testify/assert"
)

func TestGetFile(t *testing.T) {
	storage := services.NewMockFileStorage()
	storage.Put("3f2a.png", []byte("fake png"))
	storage.Put("notes.bin", []byte{0x01})

	router := gin.New()
	router.GET("/files/:filename", NewFileController(storage).GetFile)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedType   string
		expectedCode   string
	}{
		{name: "image", path: "/files/3f2a.png", expectedStatus: http.StatusOK, expectedType: "image/png"},
		{name: "unknown extension", path: "/files/notes.bin", expectedStatus: http.StatusOK, expectedType: "application/octet-stream"},
		{name: "missing", path: "/files/nope.png", expectedStatus: http.StatusNotFound, expectedCode: "FILE_NOT_FOUND"},
		{name: "traversal", path: "/files/..png", expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_FILENAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
				assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
			}
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, responseErrorCode(response))
			}
		})
	}

	w, _ := performRequest(t, router, http.MethodGet, "/files/3f2a.png", nil)
	assert.Equal(t, "fake png", w.Body.String())
}
