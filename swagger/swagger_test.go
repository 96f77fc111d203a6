package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHandler(t *testing.T) {
	handler, err := GetHandler()
	require.NoError(t, err)

	testCases := []struct {
		path     string
		contains string
	}{
		{path: "/openapi.yaml", contains: "openapi: 3.0.3"},
		{path: "/", contains: "swagger-ui"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.contains)
		})
	}
}

func TestGetHandler_SpecHeaders(t *testing.T) {
	handler, err := GetHandler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
}

func TestSpecCoversBarterRoutes(t *testing.T) {
	spec, err := Spec()
	require.NoError(t, err)

	for _, route := range []string{"/barters/{id}/respond:", "/barters/{id}/complete:", "/users/{id}/trust-score:", "/communities/{id}/messages:"} {
		assert.Contains(t, string(spec), route)
	}
}
