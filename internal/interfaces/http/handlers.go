package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/application"
	"github.com/sawpanic/techrun/internal/catalyst"
	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/pipeline"
	"github.com/sawpanic/techrun/internal/report"
)

const (
	defaultSignalLimit  = 10
	defaultListLimit    = 20
	defaultHistoryLimit = 12
)

// writeJSON writes data as JSON with the given status
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError writes a standardized error response
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not_found", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   s.config.Version,
	}
	if s.hub != nil {
		resp.WSClients = s.hub.Clients()
	}
	res, err := s.svc.Latest(r.Context())
	switch {
	case err != nil:
		resp.Status = "degraded"
	case res != nil:
		resp.LatestRunID = res.RunID
		resp.LatestAsOf = res.AsOf
	}
	if resp.Store = s.svc.StoreHealth(r.Context()); resp.Store != nil && !resp.Store.Healthy {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadRun resolves run id, or the latest run when id is empty or "latest".
// It writes the error response itself and returns nil on failure.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request, id string) *pipeline.Result {
	var (
		res *pipeline.Result
		err error
	)
	if id == "" || id == "latest" {
		res, err = s.svc.Latest(r.Context())
	} else {
		res, err = s.svc.Get(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return nil
	}
	if res == nil {
		if id == "" || id == "latest" {
			writeError(w, r, http.StatusNotFound, "no_runs", "no run has completed yet")
		} else {
			writeError(w, r, http.StatusNotFound, "run_not_found", fmt.Sprintf("run %s not found", id))
		}
		return nil
	}
	return res
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res := s.loadRun(w, r, r.URL.Query().Get("run"))
	if res == nil {
		return
	}
	resp := SummaryResponse{
		RunID:       res.RunID,
		ReportDate:  res.AsOf,
		Summary:     res.Summary,
		TierCounts:  catalyst.NewRegistry(res.Catalysts, res.AsOf).TierCounts(),
		Bottlenecks: len(res.Bottlenecks),
	}
	if res.Gates != nil {
		resp.RiskGates = res.Gates.Summary()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", defaultListLimit)
	if !ok {
		return
	}
	runs, err := s.svc.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if res := s.loadRun(w, r, mux.Vars(r)["id"]); res != nil {
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res := s.loadRun(w, r, mux.Vars(r)["id"])
	if res == nil {
		return
	}
	top, ok := intParam(w, r, "top", report.DefaultTopN)
	if !ok {
		return
	}
	doc := report.Build(res, top)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.WriteHeader(http.StatusOK)
		if err := report.WriteJSON(w, doc); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := report.WriteMarkdown(w, doc); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_format", fmt.Sprintf("unknown report format %q", format))
	}
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRunRequest
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}
		}
	}

	var asOf time.Time
	if req.AsOf != "" {
		t, err := application.ParseAsOf(req.AsOf)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_as_of", err.Error())
			return
		}
		asOf = t
	}

	res, err := s.svc.Execute(r.Context(), application.RunRequest{AsOf: asOf})
	if res == nil {
		status, code := http.StatusInternalServerError, "run_failed"
		if errors.Is(err, application.ErrRunInProgress) {
			status, code = http.StatusConflict, "run_in_progress"
		}
		writeError(w, r, status, code, err.Error())
		return
	}

	resp := TriggerRunResponse{RunID: res.RunID, AsOf: res.AsOf, Summary: res.Summary}
	if err != nil {
		resp.StoreError = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, ok := intParam(w, r, "n", defaultSignalLimit)
	if !ok {
		return
	}
	var rec models.Recommendation
	if raw := q.Get("recommendation"); raw != "" {
		parsed, known := models.ParseRecommendation(raw)
		if !known {
			writeError(w, r, http.StatusBadRequest, "invalid_recommendation", fmt.Sprintf("unknown recommendation %q", raw))
			return
		}
		rec = parsed
	}

	res := s.loadRun(w, r, q.Get("run"))
	if res == nil {
		return
	}
	sigs := res.Top(n, rec)
	writeJSON(w, http.StatusOK, SignalsResponse{RunID: res.RunID, Count: len(sigs), Signals: sigs})
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res := s.loadRun(w, r, r.URL.Query().Get("run"))
	if res == nil {
		return
	}
	sig, found := res.Signal(id)
	if !found {
		writeError(w, r, http.StatusNotFound, "company_not_found", fmt.Sprintf("company %s is not part of run %s", id, res.RunID))
		return
	}

	history, err := s.svc.History(r.Context(), id, defaultHistoryLimit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	reg := catalyst.NewRegistry(res.Catalysts, res.AsOf)
	resp := CompanyResponse{
		RunID:     res.RunID,
		Signal:    sig,
		Momentum:  res.Momentum[id],
		Moat:      res.Moat[id],
		Catalysts: reg.ForCompany(id),
		Plays:     res.PlaysFor(id),
		Warnings:  res.WarningsFor(id),
		History:   history,
	}
	if resp.Catalysts == nil {
		resp.Catalysts = []models.Catalyst{}
	}
	if next, ok := reg.Next(id); ok {
		resp.NextCatalyst = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlays(w http.ResponseWriter, r *http.Request) {
	res := s.loadRun(w, r, r.URL.Query().Get("run"))
	if res == nil {
		return
	}
	if company := r.URL.Query().Get("company"); company != "" {
		writeJSON(w, http.StatusOK, res.PlaysFor(company))
		return
	}
	writeJSON(w, http.StatusOK, res.Plays)
}

func (s *Server) handleBottlenecks(w http.ResponseWriter, r *http.Request) {
	if res := s.loadRun(w, r, r.URL.Query().Get("run")); res != nil {
		writeJSON(w, http.StatusOK, res.Bottlenecks)
	}
}

func (s *Server) handleCatalysts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	horizon, ok := intParam(w, r, "horizon_days", 0)
	if !ok {
		return
	}
	res := s.loadRun(w, r, q.Get("run"))
	if res == nil {
		return
	}

	reg := catalyst.NewRegistry(res.Catalysts, res.AsOf)
	kind := models.CatalystKind(strings.ToUpper(q.Get("kind")))
	tier := models.CatalystTier(strings.ToLower(q.Get("tier")))

	var cats []models.Catalyst
	switch sortBy := q.Get("sort"); sortBy {
	case "", "date":
		cats = reg.Filter(kind, tier, horizon)
	case "urgency":
		cats = filterCatalysts(reg.ByUrgency(), reg.Filter(kind, tier, horizon))
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_sort", fmt.Sprintf("unknown sort %q", sortBy))
		return
	}
	writeJSON(w, http.StatusOK, CatalystsResponse{RunID: res.RunID, AsOf: res.AsOf, Count: len(cats), Catalysts: cats})
}

// filterCatalysts keeps the order of ordered, restricted to members of keep
func filterCatalysts(ordered, keep []models.Catalyst) []models.Catalyst {
	type key struct {
		company string
		kind    models.CatalystKind
	}
	allowed := make(map[key]bool, len(keep))
	for _, c := range keep {
		allowed[key{c.CompanyID, c.Kind}] = true
	}
	out := make([]models.Catalyst, 0, len(keep))
	for _, c := range ordered {
		if allowed[key{c.CompanyID, c.Kind}] {
			out = append(out, c)
		}
	}
	return out
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("%s must be a non-negative integer", name))
		return 0, false
	}
	return v, true
}
