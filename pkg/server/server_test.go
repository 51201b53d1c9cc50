package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptlab/saturn/pkg/config"
	"promptlab/saturn/pkg/providers"
)

type fakeExecutor struct {
	lastArgs map[string]any
	result   map[string]any
	panicMsg string
}

func (f *fakeExecutor) Execute(ctx context.Context, args map[string]any) map[string]any {
	f.lastArgs = args
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result
}

type fakeComparer struct {
	lastConfigs []map[string]any
	result      map[string]any
}

func (f *fakeComparer) Run(ctx context.Context, configs []map[string]any) map[string]any {
	f.lastConfigs = configs
	return f.result
}

type fakeCatalogs map[string][]providers.ModelInfo

func (f fakeCatalogs) Catalogs() map[string][]providers.ModelInfo { return f }

func newTestServer(executor *fakeExecutor, comparer *fakeComparer) *Server {
	cfg := config.DefaultConfig().Server
	return NewServer(Options{
		Config:   &cfg,
		Executor: executor,
		Comparer: comparer,
		Catalogs: fakeCatalogs{
			"openai": {{Type: "fast", Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60}},
		},
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestConversationEndpoint(t *testing.T) {
	executor := &fakeExecutor{result: map[string]any{"isError": false, "response": "hi"}}
	srv := newTestServer(executor, &fakeComparer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/conversation",
		strings.NewReader(`{"mode":"start","provider":"openai"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["isError"] != false || body["response"] != "hi" {
		t.Errorf("body = %v", body)
	}
	if executor.lastArgs["mode"] != "start" || executor.lastArgs["provider"] != "openai" {
		t.Errorf("executor args = %v", executor.lastArgs)
	}
}

func TestConversationOperationErrorStays200(t *testing.T) {
	// Operation failures are payload-level; HTTP status stays 200.
	executor := &fakeExecutor{result: map[string]any{
		"isError": true,
		"error":   "Provider 'cohere' not supported.",
	}}
	srv := newTestServer(executor, &fakeComparer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/conversation",
		strings.NewReader(`{"mode":"start"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, operation errors must not change HTTP status", rec.Code)
	}
	if decodeBody(t, rec)["isError"] != true {
		t.Error("isError not propagated")
	}
}

func TestConversationBadJSON(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/conversation", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid JSON body." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestConversationMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/v1/conversation", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q", got)
	}
}

func TestCompareEndpoint(t *testing.T) {
	comparer := &fakeComparer{result: map[string]any{
		"isError": false,
		"results": []map[string]any{{"isError": false, "response": "a"}},
	}}
	srv := newTestServer(&fakeExecutor{}, comparer)

	req := httptest.NewRequest(http.MethodPost, "/v1/compare",
		strings.NewReader(`{"comparisons":[{"provider":"openai","model":"gpt-4o-mini","system_prompt":"x"}]}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(comparer.lastConfigs) != 1 || comparer.lastConfigs[0]["provider"] != "openai" {
		t.Errorf("comparer configs = %v", comparer.lastConfigs)
	}
}

func TestProvidersEndpoint(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["isError"] != false {
		t.Errorf("isError = %v", body["isError"])
	}
	catalogs, ok := body["providers"].(map[string]any)
	if !ok {
		t.Fatalf("providers has type %T", body["providers"])
	}
	if _, ok := catalogs["openai"]; !ok {
		t.Errorf("providers = %v", catalogs)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Error("health body missing status ok")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("no request ID assigned")
	}
}

func TestRequestIDHonored(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("request ID = %q", got)
	}
}

func TestPanicRecovery(t *testing.T) {
	executor := &fakeExecutor{panicMsg: "boom"}
	srv := newTestServer(executor, &fakeComparer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/conversation",
		strings.NewReader(`{"mode":"start"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "An internal error occurred. Please try again later." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(&fakeExecutor{}, &fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
