package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medvox/rxscribe/internal/health"
)

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) (status string, checks map[string]string) {
	t.Helper()
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body.Status, body.Checks
}

func TestHealthz_AlwaysOK(t *testing.T) {
	t.Parallel()

	h := health.New(health.Checker{
		Name:  "broken",
		Check: func(context.Context) error { return errors.New("down") },
	})

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status=%d, want 200 regardless of checkers", rec.Code)
	}
	status, _ := decodeResult(t, rec)
	if status != "ok" {
		t.Errorf("status field=%q, want ok", status)
	}
}

func TestReadyz_AllCheckersPass(t *testing.T) {
	t.Parallel()

	h := health.New(
		health.Checker{Name: "stt", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "extraction", Check: func(context.Context) error { return nil }},
	)

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	status, checks := decodeResult(t, rec)
	if status != "ok" {
		t.Errorf("status field=%q, want ok", status)
	}
	if checks["stt"] != "ok" || checks["extraction"] != "ok" {
		t.Errorf("checks=%v", checks)
	}
}

func TestReadyz_FailingChecker(t *testing.T) {
	t.Parallel()

	h := health.New(
		health.Checker{Name: "stt", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "extraction", Check: func(context.Context) error { return errors.New("no api key") }},
	)

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rec.Code)
	}
	status, checks := decodeResult(t, rec)
	if status != "fail" {
		t.Errorf("status field=%q, want fail", status)
	}
	if checks["stt"] != "ok" {
		t.Errorf("healthy checker reported %q", checks["stt"])
	}
	if !strings.HasPrefix(checks["extraction"], "fail:") {
		t.Errorf("failing checker reported %q", checks["extraction"])
	}
}

func TestReadyz_CheckerGetsDeadline(t *testing.T) {
	t.Parallel()

	var hadDeadline bool
	h := health.New(health.Checker{
		Name: "stt",
		Check: func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if !hadDeadline {
		t.Error("checker context has no deadline")
	}
}

func TestRegister_Routes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	health.New().Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status=%d, want 200", path, rec.Code)
		}
	}
}
