package router

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"employee-directory/internal/handlers"
	"employee-directory/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestDirectoryOpsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	m.IncNotification("success")

	r := New(quietLogger())
	SetupDirectory(r, handlers.NewDirectoryHandler(nil, quietLogger()), reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "directory_notifications_total") {
		t.Fatalf("expected directory metrics, got %d %s", rec.Code, rec.Body.String())
	}
}

func preflight(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/employee", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRecordStoreCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRecordHandler(nil, quietLogger())

	open := New(quietLogger())
	SetupRecordStore(open, h, nil, nil)
	if got := preflight(open, "http://anywhere.test").Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected any origin, got %q", got)
	}

	restricted := New(quietLogger())
	SetupRecordStore(restricted, h, []string{"http://ui.test"}, nil)
	if got := preflight(restricted, "http://ui.test").Header().Get("Access-Control-Allow-Origin"); got != "http://ui.test" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if rec := preflight(restricted, "http://evil.test"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", rec.Code)
	}
}

func TestRecordStoreHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(quietLogger())
	SetupRecordStore(r, handlers.NewRecordHandler(nil, quietLogger()), nil, func() error {
		return errors.New("db down")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "db down") {
		t.Fatalf("expected db error, got %d %s", rec.Code, rec.Body.String())
	}
}
