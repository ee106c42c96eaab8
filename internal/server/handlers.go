package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/insight"
	"github.com/Veraticus/finsight/internal/model"
)

type insightRequest struct {
	Question string         `json:"question"`
	Snapshot model.Snapshot `json:"snapshot"`
}

type insightResponse struct {
	ID     string              `json:"id,omitempty"`
	Report model.InsightReport `json:"report"`
}

type simulateRequest struct {
	Snapshot  model.Snapshot  `json:"snapshot"`
	Overrides model.Overrides `json:"overrides"`
}

type simulateResponse struct {
	ID string `json:"id,omitempty"`
	insight.WhatIfResult
}

type providerRequest struct {
	Name string `json:"name"`
}

type providerResponse struct {
	Active    model.ProviderName   `json:"active"`
	Providers []model.ProviderName `json:"providers"`
}

type connectionResponse struct {
	Provider model.ProviderName `json:"provider"`
	OK       bool               `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report := s.engine.ComputeInsight(r.Context(), req.Snapshot, req.Question)
	id := s.save(r, model.NewStoredReport(model.ReportKindInsight, req.Question, req.Snapshot, report))

	s.writeJSON(w, http.StatusOK, insightResponse{ID: id, Report: report})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	merged := req.Snapshot.Apply(req.Overrides)
	if err := merged.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("overrides: %w", err))
		return
	}

	result := s.engine.Compare(r.Context(), req.Snapshot, req.Overrides)
	id := s.save(r, model.NewStoredReport(model.ReportKindWhatIf, insight.SimulationQuestion, merged, result.Simulated))

	s.writeJSON(w, http.StatusOK, simulateResponse{ID: id, WhatIfResult: result})
}

func (s *Server) handleGetProvider(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, providerResponse{
		Active:    s.engine.ActiveProvider(),
		Providers: model.ProviderNames,
	})
}

func (s *Server) handleSwitchProvider(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	name, err := model.ParseProviderName(req.Name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.SwitchProvider(name); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.handleGetProvider(w, r)
}

func (s *Server) handleTestProvider(w http.ResponseWriter, r *http.Request) {
	active := s.engine.ActiveProvider()
	ok := s.engine.TestConnection(r.Context())
	s.writeJSON(w, http.StatusOK, connectionResponse{Provider: active, OK: ok})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxHistoryLimit {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = parsed
	}

	reports, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if reports == nil {
		reports = []model.StoredReport{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	report, err := s.store.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	if err := s.store.DeleteReport(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// save stores the report when history is enabled and returns its ID. A
// failed save is logged; the computed report is still returned.
func (s *Server) save(r *http.Request, stored model.StoredReport) string {
	if s.store == nil {
		return ""
	}
	if err := s.store.SaveReport(r.Context(), &stored); err != nil {
		s.logger.Warn("Failed to save report", "kind", stored.Kind, "error", err)
		return ""
	}
	return stored.ID
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("report history is disabled"))
		return false
	}
	return true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
