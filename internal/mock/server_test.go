package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/jsonstash/internal/core/response"
	"github.com/sadopc/jsonstash/internal/logger"
)

func testTable() *RouteTable {
	return NewRouteTable(
		Route{
			Path: "/a",
			Response: response.New(`{"name":"a"}`, map[string]string{
				"content-type":      "application/json",
				"transfer-encoding": "chunked",
				"content-length":    "999",
				"x-origin":          "upstream-a",
			}),
		},
		Route{
			Path: "/b",
			Response: response.New(`{"name":"b"}`, map[string]string{
				"content-type": "application/json; charset=utf-8",
				"etag":         `"b-1"`,
			}),
		},
		Route{
			Path:     "/static/greeting",
			Response: response.New("hello world", nil),
		},
		Route{
			Path:     "/with space",
			Response: response.New("spaced", nil),
		},
	)
}

func TestRouteMatching(t *testing.T) {
	srv := New(testTable())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /a", "GET", "/a", http.StatusOK},
		{"GET /b", "GET", "/b", http.StatusOK},
		{"HEAD /a", "HEAD", "/a", http.StatusOK},
		{"GET /static/greeting", "GET", "/static/greeting", http.StatusOK},
		{"GET escaped path", "GET", "/with%20space", http.StatusOK},
		{"unmatched path", "GET", "/c", http.StatusNotFound},
		{"prefix only", "GET", "/static", http.StatusNotFound},
		{"trailing slash", "GET", "/a/", http.StatusNotFound},
		{"wrong method", "POST", "/a", http.StatusMethodNotAllowed},
		{"wrong method unmatched", "DELETE", "/c", http.StatusNotFound},
	}

	handler := srv.Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouteMatchingLiteralPercent(t *testing.T) {
	handler := New(NewRouteTable(Route{
		Path:     "/already%20escaped",
		Response: response.New("literal", nil),
	})).Handler()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/already%2520escaped", http.StatusOK},
		{"/already%20escaped", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouteMatchingWithQueryParams(t *testing.T) {
	handler := New(testTable()).Handler()

	// Query params should not affect path matching
	req := httptest.NewRequest("GET", "/a?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestResponseBodyServing(t *testing.T) {
	handler := New(testTable()).Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		wantBody string
	}{
		{"GET /a returns only a", "GET", "/a", `{"name":"a"}`},
		{"GET /b returns only b", "GET", "/b", `{"name":"b"}`},
		{"file body", "GET", "/static/greeting", "hello world"},
		{"HEAD has no body", "HEAD", "/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("got body %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestReplayHeaders(t *testing.T) {
	handler := New(testTable()).Handler()

	req := httptest.NewRequest("GET", "/a", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	h := rec.Result().Header
	if ct := h.Get("Content-Type"); ct != "application/json" {
		t.Errorf("got Content-Type %q", ct)
	}
	if v := h.Get("X-Origin"); v != "upstream-a" {
		t.Errorf("got X-Origin %q", v)
	}
	if te := h.Get("Transfer-Encoding"); te != "" {
		t.Errorf("transfer-encoding must not be replayed, got %q", te)
	}
	if cl := h.Get("Content-Length"); cl == "999" {
		t.Error("stale content-length replayed")
	}
	if etag := h.Get("Etag"); etag != "" {
		t.Errorf("/a leaked header from /b: %q", etag)
	}
	if origin := h.Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("CORS should be off by default, got %q", origin)
	}
}

func TestNoContentTypeSniffing(t *testing.T) {
	handler := New(testTable()).Handler()

	req := httptest.NewRequest("GET", "/static/greeting", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Errorf("got Content-Type %q, want none", ct)
	}
}

func TestNotFoundBody(t *testing.T) {
	handler := New(testTable()).Handler()

	req := httptest.NewRequest("GET", "/c", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("404 body is not JSON: %v", err)
	}
	if !strings.Contains(body["error"], "/c") {
		t.Errorf("got error %q", body["error"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(testTable(), WithCORSOrigin("https://myapp.example.com"))
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/a", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "https://myapp.example.com" {
		t.Errorf("got ACAO %q", origin)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); methods == "" {
		t.Error("expected Access-Control-Allow-Methods to be set")
	}

	// OPTIONS preflight
	req = httptest.NewRequest("OPTIONS", "/a", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS got status %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestLatencySimulation(t *testing.T) {
	latency := 50 * time.Millisecond
	handler := New(testTable(), WithLatency(latency)).Handler()

	req := httptest.NewRequest("GET", "/a", nil)
	rec := httptest.NewRecorder()

	start := time.Now()
	handler.ServeHTTP(rec, req)
	elapsed := time.Since(start)

	if elapsed < latency {
		t.Errorf("response took %v, expected at least %v", elapsed, latency)
	}
}

func TestErrorRate(t *testing.T) {
	handler := New(testTable(), WithErrorRate(1.0)).Handler()

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/a", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("got status %d, want 500", rec.Code)
		}
	}
}

func TestRequestLogging(t *testing.T) {
	var logs bytes.Buffer
	handler := New(testTable(), WithLogger(logger.New(&logs))).Handler()

	req := httptest.NewRequest("GET", "/c", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := logs.String()
	for _, want := range []string{`"path":"/c"`, `"status":404`, `"request_id":`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %s", out, want)
		}
	}
}

func TestRoutes(t *testing.T) {
	srv := New(testTable())
	routes := srv.Routes()
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4", len(routes))
	}
	if routes[0] != "/a" {
		t.Errorf("routes not sorted: %v", routes)
	}

	if got := len(New(nil).Routes()); got != 0 {
		t.Errorf("nil table has %d routes", got)
	}
}

func TestAddr(t *testing.T) {
	srv := New(nil, WithAddr("0.0.0.0"), WithPort(8080))
	if srv.Addr() != "0.0.0.0:8080" {
		t.Errorf("got %q", srv.Addr())
	}
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(testTable()).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/b")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != `{"name":"b"}` {
		t.Errorf("got body %q", body)
	}
	if resp.Header.Get("Etag") != `"b-1"` {
		t.Errorf("got etag %q", resp.Header.Get("Etag"))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
