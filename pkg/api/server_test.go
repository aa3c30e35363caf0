package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/compatibility"
	"github.com/ternhq/tern/pkg/observability"
	"github.com/ternhq/tern/pkg/storage"
)

// fakeStore is an in-memory storage.Store for handler tests.
type fakeStore struct {
	versions map[string][]*storage.Version
	healthy  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{versions: make(map[string][]*storage.Version), healthy: true}
}

func (f *fakeStore) PutVersion(ctx context.Context, v *storage.Version) error {
	for _, existing := range f.versions[v.Contract] {
		if existing.Version == v.Version {
			return fmt.Errorf("version %s of %s already exists", v.Version, v.Contract)
		}
	}
	if v.ID == "" {
		v.ID = fmt.Sprintf("id-%d", len(f.versions[v.Contract]))
	}
	v.Hash = storage.ContentHash([]byte(v.Content))
	v.CreatedAt = time.Now().UTC()
	// Store a copy so later caller mutations cannot reach the stored row.
	stored := *v
	f.versions[v.Contract] = append(f.versions[v.Contract], &stored)
	return nil
}

func (f *fakeStore) GetVersion(ctx context.Context, contract, version string) (*storage.Version, error) {
	for _, v := range f.versions[contract] {
		if v.Version == version {
			return v, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) LatestVersion(ctx context.Context, contract string) (*storage.Version, error) {
	vs := f.versions[contract]
	if len(vs) == 0 {
		return nil, storage.ErrNotFound
	}
	return vs[len(vs)-1], nil
}

func (f *fakeStore) ListVersions(ctx context.Context, contract string) ([]*storage.Version, error) {
	return f.versions[contract], nil
}

func (f *fakeStore) ListContracts(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.versions {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) HealthCheck(ctx context.Context) error {
	if !f.healthy {
		return fmt.Errorf("store down")
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	logger := observability.NewLogger(observability.ErrorLevel, &bytes.Buffer{})
	return NewServer(store, logger, prometheus.NewRegistry(), "test"), store
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const (
	avroUserV1 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"},
		{"name":"nickname","type":"string","default":"anon"}]}`
	avroUserV2 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"}]}`
	avroUserV3 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"},
		{"name":"email","type":"string"}]}`
)

func TestCompareEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/compare", map[string]string{
		"format": "avro",
		"old":    avroUserV1,
		"new":    avroUserV2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result compatibility.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, compatibility.LevelBackward, result.Level)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, "REMOVED_FIELD", result.Findings[0].Category)
}

func TestCompareEndpointWithMode(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/compare", map[string]string{
		"format": "avro",
		"old":    avroUserV1,
		"new":    avroUserV3,
		"mode":   "BACKWARD",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Compatible bool                  `json:"compatible"`
		Mode       string                `json:"mode"`
		Result     *compatibility.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Adding a required field breaks old readers; not backward compatible.
	assert.False(t, resp.Compatible)
	assert.Equal(t, "BACKWARD", resp.Mode)
}

func TestCompareEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/compare", map[string]string{
		"format": "thrift", "old": "x", "new": "y",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/compare", map[string]string{
		"format": "avro", "old": "not json", "new": avroUserV1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/compare", map[string]string{
		"format": "avro",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushAndFetchVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions", map[string]string{
		"version": "1.0.0",
		"format":  "avro",
		"content": avroUserV1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var pushed storage.Version
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pushed))
	assert.NotEmpty(t, pushed.Hash)
	assert.Empty(t, pushed.Content)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/contracts/users/versions/1.0.0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got storage.Version
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.JSONEq(t, avroUserV1, got.Content)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/contracts/users/versions/9.9.9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPushRejectsUnparseableContract(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions", map[string]string{
		"version": "1.0.0",
		"format":  "avro",
		"content": "{{{",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPushDuplicateVersionConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]string{"version": "1.0.0", "format": "avro", "content": avroUserV1}
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions", body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions", body).Code)
}

func TestListContractsAndVersions(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/contracts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contracts":[]}`, rec.Body.String())

	doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions",
		map[string]string{"version": "1.0.0", "format": "avro", "content": avroUserV1})

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/contracts/users/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Contract string             `json:"contract"`
		Versions []*storage.Version `json:"versions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Versions, 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/contracts/ghost/versions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckCompatibilityStoredVersions(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions",
		map[string]string{"version": "1.0.0", "format": "avro", "content": avroUserV1})
	doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions",
		map[string]string{"version": "2.0.0", "format": "avro", "content": avroUserV3})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/compatibility", map[string]string{
		"old_version": "1.0.0",
		"new_version": "2.0.0",
		"mode":        "BACKWARD",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Compatible bool `json:"compatible"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Compatible)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/compatibility", map[string]string{
		"old_version": "1.0.0",
		"new_version": "3.0.0",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckCandidateAgainstHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions",
		map[string]string{"version": "1.0.0", "format": "avro", "content": avroUserV1})
	doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/versions",
		map[string]string{"version": "1.1.0", "format": "avro", "content": avroUserV2})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/contracts/users/check", map[string]string{
		"format":  "avro",
		"content": avroUserV2,
		"mode":    "BACKWARD_TRANSITIVE",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Compatible bool                    `json:"compatible"`
		Results    []*compatibility.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Compatible)
	assert.Len(t, resp.Results, 2)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/contracts/ghost/check", map[string]string{
		"format":  "avro",
		"content": avroUserV1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	store.healthy = false
	rec = doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, srv, http.MethodGet, "/api/v1/contracts", nil)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tern_http_requests_total")
}

func TestParsedModelCache(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]string{"format": "avro", "old": avroUserV1, "new": avroUserV1}
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/v1/compare", body).Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/v1/compare", body).Code)

	hits := testutil.ToFloat64(srv.metrics.CacheHitsTotal.WithLabelValues("model"))
	assert.GreaterOrEqual(t, hits, 1.0)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/contracts", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
