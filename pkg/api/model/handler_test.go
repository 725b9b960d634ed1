package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/pipeline"
)

// --- Mocks ---

type MockRunner struct {
	RunFunc     func(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
	PersistFunc func(ctx context.Context, res *pipeline.Result) error
	persisted   int
}

func (m *MockRunner) Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, in)
	}
	return &pipeline.Result{Name: in.Name, EnterpriseValue: 42}, nil
}

func (m *MockRunner) RunBatch(ctx context.Context, inputs []pipeline.Input) []pipeline.BatchOutcome {
	out := make([]pipeline.BatchOutcome, len(inputs))
	for i, in := range inputs {
		res, err := m.Run(ctx, in)
		out[i] = pipeline.BatchOutcome{Name: in.Name, Result: res, Err: err}
	}
	return out
}

func (m *MockRunner) Persist(ctx context.Context, res *pipeline.Result) error {
	m.persisted++
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, res)
	}
	return nil
}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rec
}

const runBody = `{"name": "base", "assumptions": {"start_year": 2026, "term_years": 3, "revenue_start": 1000000}}`

// --- Tests ---

func TestHandleRun(t *testing.T) {
	runner := &MockRunner{}
	h := NewHandler(runner, true)

	rec := serve(h, http.MethodPost, "/run", runBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Name != "base" || res.EnterpriseValue != 42 {
		t.Errorf("unexpected result %+v", res)
	}
	if runner.persisted != 1 {
		t.Errorf("expected one persist, got %d", runner.persisted)
	}
}

func TestHandleRun_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"configuration", modelerr.Missing("term_years"), http.StatusBadRequest, "configuration"},
		{"invariant", modelerr.InvariantViolations{{Year: 2027, Check: "balance_identity", Gap: 5}}, http.StatusUnprocessableEntity, "invariant"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &MockRunner{RunFunc: func(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
				return nil, tt.err
			}}
			rec := serve(NewHandler(runner, true), http.MethodPost, "/run", runBody)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, resp.Kind)
			}
			if runner.persisted != 0 {
				t.Errorf("failed runs must not be persisted")
			}
		})
	}
}

func TestHandleRun_BadDocument(t *testing.T) {
	rec := serve(NewHandler(&MockRunner{}, false), http.MethodPost, "/run", `{"assumptions": {"tax_rate": "high"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRun_MalformedBody(t *testing.T) {
	runner := &MockRunner{RunFunc: func(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
		t.Errorf("runner must not be called for an undecodable body")
		return nil, nil
	}}
	rec := serve(NewHandler(runner, true), http.MethodPost, "/run", `{"assumptions": [1,2`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "configuration" {
		t.Errorf("expected kind configuration, got %s", resp.Kind)
	}
}

func TestHandleRun_HorizonTooLong(t *testing.T) {
	h := NewHandler(pipeline.NewOrchestrator(nil), false)
	for _, years := range []string{"101", "1e13"} {
		body := `{"assumptions": {"start_year": 2026, "term_years": ` + years + `, "revenue_start": 1000000}}`
		rec := serve(h, http.MethodPost, "/run", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("term_years %s: expected 400, got %d", years, rec.Code)
		}
	}
	rec := serve(h, http.MethodPost, "/forecast", `{"start_year": 2026, "term_years": 1000, "revenue": 100, "fcf_margin": 0.1, "discount_rate": 0.1, "terminal_growth": 0.02}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("forecast: expected 400, got %d", rec.Code)
	}
}

func TestHandleRun_EndToEnd(t *testing.T) {
	h := NewHandler(pipeline.NewOrchestrator(nil), false)
	rec := serve(h, http.MethodPost, "/run", runBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"balance_sheet"`) {
		t.Errorf("expected statements in the response")
	}

	rec = serve(h, http.MethodPost, "/run", `{"assumptions": {"start_year": 2026}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing term_years should be 400, got %d", rec.Code)
	}
}

func TestHandleBatch(t *testing.T) {
	runner := &MockRunner{RunFunc: func(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
		if in.Name == "broken" {
			return nil, modelerr.Missing("start_year")
		}
		return &pipeline.Result{Name: in.Name}, nil
	}}
	body := `{"scenarios": [
		{"name": "a", "assumptions": {}},
		{"assumptions": {"tax_rate": "high"}},
		{"name": "broken", "assumptions": {}}
	]}`
	rec := serve(NewHandler(runner, false), http.MethodPost, "/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Outcomes []BatchItem `json:"outcomes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(resp.Outcomes))
	}
	if resp.Outcomes[0].Status != http.StatusOK || resp.Outcomes[0].Result == nil {
		t.Errorf("first scenario should succeed: %+v", resp.Outcomes[0])
	}
	if resp.Outcomes[1].Name != "scenario_2" || resp.Outcomes[1].Status != http.StatusBadRequest {
		t.Errorf("unparseable scenario should keep its slot: %+v", resp.Outcomes[1])
	}
	if resp.Outcomes[2].Name != "broken" || resp.Outcomes[2].Status != http.StatusBadRequest {
		t.Errorf("failed scenario should report 400: %+v", resp.Outcomes[2])
	}

	rec = serve(NewHandler(runner, false), http.MethodPost, "/batch", `{"scenarios": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch should be 400, got %d", rec.Code)
	}
}

func TestHandleForecast(t *testing.T) {
	h := NewHandler(&MockRunner{}, false)
	rec := serve(h, http.MethodPost, "/forecast",
		`{"start_year": 2026, "term_years": 5, "revenue": 1000, "fcf_margin": 0.1, "discount_rate": 0.1, "terminal_growth": 0.02}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Rows            []json.RawMessage `json:"rows"`
		EnterpriseValue float64           `json:"enterprise_value"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Rows) != 5 || res.EnterpriseValue <= 0 {
		t.Errorf("unexpected forecast %s", rec.Body.String())
	}

	rec = serve(h, http.MethodPost, "/forecast", `{"term_years": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero horizon, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(NewHandler(&MockRunner{}, false), http.MethodOptions, "/run", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected preflight 200 with CORS headers, got %d", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected healthz response %d %s", rec.Code, rec.Body.String())
	}
}
