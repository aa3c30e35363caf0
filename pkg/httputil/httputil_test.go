package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 201, map[string]string{"name": "users"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"users"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 404, "contract not found")

	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error":"contract not found"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dest struct {
		Version string `json:"version"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"version":"1.0.0"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, "1.0.0", dest.Version)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`not json`))
	err := DecodeJSON(httptest.NewRecorder(), req, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON body")
}
