// Package model exposes the model engine over HTTP.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/pipeline"
	"finmodel/pkg/core/scenario"
	"finmodel/pkg/core/valuation"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Runner is the part of the orchestrator the handlers use.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
	RunBatch(ctx context.Context, inputs []pipeline.Input) []pipeline.BatchOutcome
	Persist(ctx context.Context, res *pipeline.Result) error
}

// Handler holds dependencies for model endpoints
type Handler struct {
	runner  Runner
	persist bool
}

// NewHandler creates a new model handler. With persist set, every successful
// run is handed to the runner's writer before responding.
func NewHandler(runner Runner, persist bool) *Handler {
	return &Handler{runner: runner, persist: persist}
}

// Routes mounts the model endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors)
	r.Post("/run", h.HandleRun)
	r.Post("/batch", h.HandleBatch)
	r.Post("/forecast", h.HandleForecast)
	return r
}

// BatchRequest is the body of POST /batch.
type BatchRequest struct {
	Scenarios []json.RawMessage `json:"scenarios"`
}

// BatchItem is one scenario outcome in a batch response.
type BatchItem struct {
	Name   string           `json:"name"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Status int              `json:"status"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HandleRun evaluates one scenario document.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request", err)
		return
	}
	in, err := scenario.Parse(data, scenario.FormatHJSON, "api")
	if err != nil {
		writeError(w, statusFor(err), kindFor(err), err)
		return
	}

	res, err := h.runner.Run(r.Context(), in)
	if err != nil {
		writeError(w, statusFor(err), kindFor(err), err)
		return
	}
	if h.persist {
		if err := h.runner.Persist(r.Context(), res); err != nil {
			log.Error().Str("component", "api").Err(err).Msg("persist failed")
			writeError(w, http.StatusInternalServerError, "persist", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBatch evaluates several scenarios concurrently. The response is 200
// whenever the batch itself was readable; per-scenario failures are reported
// in the items.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request", fmt.Errorf("invalid batch body: %w", err))
		return
	}
	if len(req.Scenarios) == 0 {
		writeError(w, http.StatusBadRequest, "request", errors.New("batch has no scenarios"))
		return
	}

	items := make([]BatchItem, len(req.Scenarios))
	inputs := make([]pipeline.Input, 0, len(req.Scenarios))
	index := make([]int, 0, len(req.Scenarios))
	for i, raw := range req.Scenarios {
		in, err := scenario.Parse(raw, scenario.FormatHJSON, fmt.Sprintf("scenario_%d", i+1))
		if err != nil {
			items[i] = BatchItem{Name: fmt.Sprintf("scenario_%d", i+1), Error: err.Error(), Status: statusFor(err)}
			continue
		}
		inputs = append(inputs, in)
		index = append(index, i)
	}

	for j, out := range h.runner.RunBatch(r.Context(), inputs) {
		item := BatchItem{Name: out.Name, Result: out.Result, Status: http.StatusOK}
		if out.Err != nil {
			item.Result = nil
			item.Error = out.Err.Error()
			item.Status = statusFor(out.Err)
		} else if h.persist {
			if err := h.runner.Persist(r.Context(), out.Result); err != nil {
				item.Error = err.Error()
				item.Status = http.StatusInternalServerError
			}
		}
		items[index[j]] = item
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": items})
}

// HandleForecast runs the flat revenue forecaster.
func (h *Handler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	var in valuation.FlatForecastInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "request", fmt.Errorf("invalid forecast body: %w", err))
		return
	}
	res, err := valuation.FlatForecast(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHealthz reports liveness.
func HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, modelerr.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, modelerr.ErrInvariant):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, modelerr.ErrConfiguration):
		return "configuration"
	case errors.Is(err, modelerr.ErrInvariant):
		return "invariant"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Str("component", "api").Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

// cors adds the headers the local dashboard needs and answers preflights.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
