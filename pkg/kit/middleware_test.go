package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecoverer_PanicBecomes500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want=500", rec.Code)
	}
	if logs.FilterMessage("handler panic").Len() != 1 {
		t.Fatalf("panic not logged: %v", logs.All())
	}
}

func TestRecoverer_PassesThrough(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d want=204", rec.Code)
	}
}

func TestLogging_RecordsStatusAndBytes(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	body := "created"
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d want=1", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["status"]; got != int64(http.StatusCreated) {
		t.Fatalf("status field=%v want=201", got)
	}
	if got := fields["bytes"]; got != int64(len(body)) {
		t.Fatalf("bytes field=%v want=%d", got, len(body))
	}
	// Outside a router there is no matched pattern; the raw path stands in.
	if got := fields["route"]; got != "/signup" {
		t.Fatalf("route field=%v want=/signup", got)
	}
}
