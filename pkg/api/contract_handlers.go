package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ternhq/tern/pkg/httputil"
	"github.com/ternhq/tern/pkg/observability"
	"github.com/ternhq/tern/pkg/schema"
	"github.com/ternhq/tern/pkg/storage"
)

// pushVersion handles POST /api/v1/contracts/{name}/versions
func (s *Server) pushVersion(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Version string `json:"version"`
		Format  string `json:"format"`
		Content string `json:"content"`
	}
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Version == "" {
		httputil.WriteError(w, http.StatusBadRequest, "version is required")
		return
	}
	if req.Content == "" {
		httputil.WriteError(w, http.StatusBadRequest, "content is required")
		return
	}

	format, err := schema.ParseFormat(req.Format)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reject bodies the adapter cannot parse; a registry of unparseable
	// contracts cannot answer compatibility questions later.
	if _, err := s.parseContract([]byte(req.Content), format); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "failed to parse contract: "+err.Error())
		return
	}

	v := &storage.Version{
		Contract: name,
		Version:  req.Version,
		Format:   format,
		Content:  req.Content,
	}

	start := time.Now()
	err = s.store.PutVersion(r.Context(), v)
	s.observeStorage("put_version", err, time.Since(start))
	if err != nil {
		httputil.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	observability.FromContext(r.Context()).
		WithField("contract", name).
		WithField("version", req.Version).
		WithField("format", req.Format).
		Info("contract version pushed")

	v.Content = ""
	httputil.WriteJSON(w, http.StatusCreated, v)
}

// listContracts handles GET /api/v1/contracts
func (s *Server) listContracts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	names, err := s.store.ListContracts(r.Context())
	s.observeStorage("list_contracts", err, time.Since(start))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, struct {
		Contracts []string `json:"contracts"`
	}{Contracts: names})
}

// listVersions handles GET /api/v1/contracts/{name}/versions
func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	start := time.Now()
	versions, err := s.store.ListVersions(r.Context(), name)
	s.observeStorage("list_versions", err, time.Since(start))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(versions) == 0 {
		httputil.WriteError(w, http.StatusNotFound, "contract not found: "+name)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct {
		Contract string             `json:"contract"`
		Versions []*storage.Version `json:"versions"`
	}{Contract: name, Versions: versions})
}

// getVersion handles GET /api/v1/contracts/{name}/versions/{version}
func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	start := time.Now()
	v, err := s.store.GetVersion(r.Context(), vars["name"], vars["version"])
	s.observeStorage("get_version", err, time.Since(start))
	if err != nil {
		httpStoreError(w, "version", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) observeStorage(operation string, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StorageOperationsTotal.WithLabelValues(operation, "store", status).Inc()
	s.metrics.StorageOperationDuration.WithLabelValues(operation, "store").Observe(elapsed.Seconds())
}
