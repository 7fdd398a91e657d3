package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
	statex "github.com/tanpawarit/records-assistant/agent/state"
)

type fakeService struct {
	texts    []string
	commands []contractx.Command
	limit    int
}

func (f *fakeService) ProcessUserRequest(_ context.Context, text string) contractx.Response {
	f.texts = append(f.texts, text)
	return contractx.Response{RequestID: "req-1", Success: text != "", UserInput: text, FormattedResponse: "✅ **Clients**"}
}

func (f *fakeService) ExecuteCommand(_ context.Context, cmd contractx.Command) contractx.Response {
	f.commands = append(f.commands, cmd)
	return contractx.Response{RequestID: "req-2", Success: true, Instruction: &cmd}
}

func (f *fakeService) History(limit int) []statex.Entry {
	f.limit = limit
	return []statex.Entry{{RequestID: "req-1", Success: true, Domain: contractx.DomainCRM}}
}

func (f *fakeService) Stats() statex.Stats {
	return statex.Stats{Total: 1, Successful: 1, SuccessRate: 100, ByDomain: map[contractx.Domain]int{contractx.DomainCRM: 1}}
}

func (f *fakeService) Status() contractx.BackendStatus {
	return contractx.BackendStatus{Mode: "local", Operations: 30}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostRequest(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	rec := do(t, NewHandler(svc), http.MethodPost, "/v1/requests", `{"text":"liste des clients"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp contractx.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !resp.Success || resp.UserInput != "liste des clients" {
		t.Fatalf("response = %+v", resp)
	}
	if len(svc.texts) != 1 {
		t.Fatalf("ProcessUserRequest calls = %d, want 1", len(svc.texts))
	}
}

func TestPostRequestRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	h := NewHandler(svc)
	for _, body := range []string{`{`, `{"text":"a","extra":1}`} {
		rec := do(t, h, http.MethodPost, "/v1/requests", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if len(svc.texts) != 0 {
		t.Fatalf("ProcessUserRequest called for malformed body")
	}
}

func TestPostCommandNormalisesDomain(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	rec := do(t, NewHandler(svc), http.MethodPost, "/v1/commands", `{"domain":" hr ","intent":"status","operation":"status_leave"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(svc.commands) != 1 {
		t.Fatalf("ExecuteCommand calls = %d, want 1", len(svc.commands))
	}
	cmd := svc.commands[0]
	if cmd.Domain != contractx.DomainHR || cmd.Operation != "status_leave" || cmd.Parameters == nil {
		t.Fatalf("command = %+v", cmd)
	}
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	h := NewHandler(svc)

	rec := do(t, h, http.MethodGet, "/v1/history?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.limit != 5 {
		t.Fatalf("History limit = %d, want 5", svc.limit)
	}
	var got historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got.Entries) != 1 || got.Stats.Total != 1 {
		t.Fatalf("history = %+v", got)
	}

	if rec := do(t, h, http.MethodGet, "/v1/history?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStatusHealthAndMetrics(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeService{})

	rec := do(t, h, http.MethodGet, "/v1/status", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"local"`) {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}
