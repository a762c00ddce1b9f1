package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mash-protocol/matter-bridge/internal/simstack"
	"github.com/mash-protocol/matter-bridge/pkg/config"
	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/nodestore"
	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

func newTestServer(t *testing.T) (*Server, *simstack.Stack) {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Path = ":memory:"

	stack := simstack.New(simstack.Options{})
	ctrl := controller.New(stack, controller.Options{
		RequestTimeout: 500 * time.Millisecond,
	})
	stack.SetReportHandler(ctrl)

	store, err := nodestore.New(cfg.Store.Path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.DiscardHandler)
	return NewServer(cfg, ctrl, store, logger), stack
}

func TestHelpListsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/help", nil)
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Endpoints []endpointInfo `json:"endpoints"`
		Total     int            `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total == 0 || len(resp.Endpoints) != resp.Total {
		t.Errorf("unexpected endpoint listing: %+v", resp)
	}

	listed := make(map[string]bool, len(resp.Endpoints))
	for _, ep := range resp.Endpoints {
		listed[ep.Path] = true
	}
	for _, path := range []string{"/api/group-settings", "/api/udc", "/api/pairing", "/api/read-attribute"} {
		if !listed[path] {
			t.Errorf("endpoint %s missing from help listing", path)
		}
	}
}

func TestGroupSettingsThroughMux(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"action":     "add-group",
		"group_id":   "1",
		"group_name": "kitchen",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/group-settings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body, _ = json.Marshal(map[string]string{"action": "reset"})
	req = httptest.NewRequest(http.MethodPost, "/api/udc", bytes.NewReader(body))
	w = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/read-attribute", nil)
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
}

func TestCORSDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.cfg.Server.CORSEnable = false

	req := httptest.NewRequest(http.MethodGet, "/api/help", nil)
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header, got %q", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/help", nil)
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/help", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("expected request id to pass through, got %q", got)
	}
}

func TestReadAttributeThroughMux(t *testing.T) {
	srv, stack := newTestServer(t)

	stack.AddNode(0x7)
	path := wire.Path{EndpointID: 1, ClusterID: 0x0006, AttributeID: 0x0000}
	if err := stack.SetAttribute(0x7, path, wire.WireTypeBoolean, true); err != nil {
		t.Fatalf("failed to seed attribute: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"node_id":       "0x7",
		"endpoint_ids":  "1",
		"cluster_ids":   "6",
		"attribute_ids": "0",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/read-attribute", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
