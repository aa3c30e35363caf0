package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"

	"github.com/ternhq/tern/pkg/compatibility"
	"github.com/ternhq/tern/pkg/httputil"
	"github.com/ternhq/tern/pkg/observability"
	"github.com/ternhq/tern/pkg/schema"
	"github.com/ternhq/tern/pkg/storage"
)

// compare handles POST /api/v1/compare
func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format string `json:"format"`
		Old    string `json:"old"`
		New    string `json:"new"`
		Mode   string `json:"mode"`
	}
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Old == "" || req.New == "" {
		httputil.WriteError(w, http.StatusBadRequest, "old and new contract bodies are required")
		return
	}

	format, err := schema.ParseFormat(req.Format)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	oldModel, err := s.parseContract([]byte(req.Old), format)
	if err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "failed to parse old contract: "+err.Error())
		return
	}
	newModel, err := s.parseContract([]byte(req.New), format)
	if err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "failed to parse new contract: "+err.Error())
		return
	}

	start := time.Now()
	result, err := s.engine.Compare(oldModel, newModel)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.observeComparison(result, time.Since(start))

	if req.Mode != "" {
		mode, err := compatibility.ParseMode(req.Mode)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		policyErr := compatibility.Check(result, mode)
		if policyErr != nil {
			observability.FromContext(r.Context()).WithError(policyErr).Info("policy violation")
		}
		httputil.WriteJSON(w, http.StatusOK, struct {
			Compatible bool                  `json:"compatible"`
			Mode       string                `json:"mode"`
			Result     *compatibility.Result `json:"result"`
		}{
			Compatible: policyErr == nil,
			Mode:       mode.String(),
			Result:     result,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// checkCompatibility handles POST /api/v1/contracts/{name}/compatibility
func (s *Server) checkCompatibility(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		OldVersion string `json:"old_version"`
		NewVersion string `json:"new_version"`
		Mode       string `json:"mode"`
	}
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OldVersion == "" {
		httputil.WriteError(w, http.StatusBadRequest, "old_version is required")
		return
	}
	if req.NewVersion == "" {
		httputil.WriteError(w, http.StatusBadRequest, "new_version is required")
		return
	}

	mode := compatibility.ModeBackward
	if req.Mode != "" {
		var err error
		if mode, err = compatibility.ParseMode(req.Mode); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	oldModel, err := s.loadStoredModel(r, name, req.OldVersion)
	if err != nil {
		httpStoreError(w, "old version", err)
		return
	}
	newModel, err := s.loadStoredModel(r, name, req.NewVersion)
	if err != nil {
		httpStoreError(w, "new version", err)
		return
	}

	start := time.Now()
	result, err := s.engine.Compare(oldModel, newModel)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.observeComparison(result, time.Since(start))

	httputil.WriteJSON(w, http.StatusOK, struct {
		Compatible bool                  `json:"compatible"`
		Mode       string                `json:"mode"`
		Result     *compatibility.Result `json:"result"`
	}{
		Compatible: compatibility.Check(result, mode) == nil,
		Mode:       mode.String(),
		Result:     result,
	})
}

// checkCandidate handles POST /api/v1/contracts/{name}/check: a candidate
// body is parsed and checked against the stored history under the requested
// mode. Transitive modes check every stored version, others only the latest.
func (s *Server) checkCandidate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Format  string `json:"format"`
		Content string `json:"content"`
		Mode    string `json:"mode"`
	}
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
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

	mode := compatibility.ModeBackward
	if req.Mode != "" {
		if mode, err = compatibility.ParseMode(req.Mode); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	candidate, err := s.parseContract([]byte(req.Content), format)
	if err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "failed to parse candidate: "+err.Error())
		return
	}

	versions, err := s.store.ListVersions(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(versions) == 0 {
		httputil.WriteError(w, http.StatusNotFound, "contract not found: "+name)
		return
	}

	history := make([]*schema.Model, 0, len(versions))
	for _, v := range versions {
		full, err := s.store.GetVersion(r.Context(), name, v.Version)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		model, err := s.parseContract([]byte(full.Content), full.Format)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to parse stored version "+v.Version+": "+err.Error())
			return
		}
		history = append(history, model)
	}

	results, policyErr := s.engine.CompareTransitive(history, candidate, mode)
	for _, result := range results {
		s.observeComparison(result, 0)
	}

	httputil.WriteJSON(w, http.StatusOK, struct {
		Compatible bool                    `json:"compatible"`
		Mode       string                  `json:"mode"`
		Results    []*compatibility.Result `json:"results"`
	}{
		Compatible: policyErr == nil,
		Mode:       mode.String(),
		Results:    results,
	})
}

func (s *Server) parseContract(raw []byte, format schema.Format) (*schema.Model, error) {
	key := modelCacheKey(raw, format)
	if model, ok := s.models.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues("model").Inc()
		}
		return model, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues("model").Inc()
	}

	model, err := s.registry.Parse(raw, format)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ParseErrorsTotal.WithLabelValues(string(format)).Inc()
		}
		return nil, err
	}
	s.models.Add(key, model)
	return model, nil
}

func modelCacheKey(raw []byte, format schema.Format) uint64 {
	d := xxhash.New()
	d.WriteString(string(format))
	d.Write([]byte{0})
	d.Write(raw)
	return d.Sum64()
}

func (s *Server) loadStoredModel(r *http.Request, contract, version string) (*schema.Model, error) {
	v, err := s.store.GetVersion(r.Context(), contract, version)
	if err != nil {
		return nil, err
	}
	return s.parseContract([]byte(v.Content), v.Format)
}

func (s *Server) observeComparison(result *compatibility.Result, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	bySeverity := make(map[string]int)
	for _, f := range result.Findings {
		bySeverity[f.Severity]++
	}
	s.metrics.ObserveComparison(string(result.Format), string(result.Level), bySeverity, elapsed)
}

func httpStoreError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, what+" not found")
		return
	}
	httputil.WriteError(w, http.StatusInternalServerError, err.Error())
}
