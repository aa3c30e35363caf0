package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/storage"
)

func TestPushSendsContract(t *testing.T) {
	dir := t.TempDir()
	file := writeContract(t, dir, "user.avsc", avroRecordV1)

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(storage.Version{
			Contract: "users", Version: "1.0.0", Hash: "abc123",
		})
	}))
	defer server.Close()

	var out bytes.Buffer
	err := push(server.URL, "users", "1.0.0", "", file, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/contracts/users/versions", gotPath)
	assert.Equal(t, "1.0.0", gotBody["version"])
	assert.Equal(t, "avro", gotBody["format"])
	assert.JSONEq(t, avroRecordV1, gotBody["content"])
	assert.Contains(t, out.String(), "Pushed users version 1.0.0")
}

func TestPushRejectedByRegistry(t *testing.T) {
	dir := t.TempDir()
	file := writeContract(t, dir, "user.avsc", avroRecordV1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "version already exists", http.StatusConflict)
	}))
	defer server.Close()

	var out bytes.Buffer
	err := push(server.URL, "users", "1.0.0", "", file, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version already exists")
}

func TestPushValidation(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, push("http://localhost:1", "", "1.0.0", "", "f.avsc", &out))
	assert.Error(t, push("http://localhost:1", "users", "", "", "f.avsc", &out))
	assert.Error(t, push("http://localhost:1", "users", "1.0.0", "", "", &out))
}

func TestHistoryListsVersions(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/contracts/users/versions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"contract": "users",
			"versions": []*storage.Version{
				{Version: "1.0.0", Format: "avro", Hash: "aaa", CreatedAt: created},
				{Version: "1.1.0", Format: "avro", Hash: "bbb", CreatedAt: created.Add(time.Hour)},
			},
		})
	}))
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, history(server.URL, "users", &out))

	output := out.String()
	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "1.0.0")
	assert.Contains(t, output, "1.1.0")
	assert.Contains(t, output, "2026-03-14 09:30:00")
}

func TestHistoryContractNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "contract not found", http.StatusNotFound)
	}))
	defer server.Close()

	var out bytes.Buffer
	err := history(server.URL, "ghost", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract not found: ghost")
}
