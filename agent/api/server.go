package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
	statex "github.com/tanpawarit/records-assistant/agent/state"
)

const maxBodyBytes = 64 << 10

// Service is the part of the orchestrator the HTTP API exposes.
type Service interface {
	ProcessUserRequest(ctx context.Context, text string) contractx.Response
	ExecuteCommand(ctx context.Context, cmd contractx.Command) contractx.Response
	History(limit int) []statex.Entry
	Stats() statex.Stats
	Status() contractx.BackendStatus
}

type Server struct {
	svc Service
}

type requestBody struct {
	Text string `json:"text"`
}

type commandBody struct {
	Domain     contractx.Domain `json:"domain"`
	Intent     contractx.Intent `json:"intent"`
	Operation  string           `json:"operation"`
	Parameters map[string]any   `json:"parameters"`
}

type historyResponse struct {
	Entries []statex.Entry `json:"entries"`
	Stats   statex.Stats   `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the router. Pipeline failures are still 200 responses
// with success=false; only malformed HTTP input gets a 4xx.
func NewHandler(svc Service) http.Handler {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/requests", s.handleRequest)
		r.Post("/commands", s.handleCommand)
		r.Get("/status", s.handleStatus)
		r.Get("/history", s.handleHistory)
	})
	return r
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ProcessUserRequest(r.Context(), body.Text))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var body commandBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd := contractx.Command{
		Domain:     contractx.Domain(strings.ToUpper(strings.TrimSpace(string(body.Domain)))),
		Intent:     body.Intent,
		Operation:  strings.TrimSpace(body.Operation),
		Parameters: body.Parameters,
	}
	if cmd.Parameters == nil {
		cmd.Parameters = map[string]any{}
	}
	writeJSON(w, http.StatusOK, s.svc.ExecuteCommand(r.Context(), cmd))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Entries: s.svc.History(limit),
		Stats:   s.svc.Stats(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Warn().Err(err).Int("status", status).Msg("api request rejected")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("api response encode failed")
	}
}
