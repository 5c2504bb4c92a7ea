package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemsCreatedByKind(t *testing.T) {
	before := testutil.ToFloat64(LineItemsCreated.WithLabelValues("product"))
	LineItemsCreated.WithLabelValues("product").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LineItemsCreated.WithLabelValues("product")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	TokensPurged.Add(2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "studio_api_auth_verification_tokens_purged_total")
}
