package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mash-protocol/matter-bridge/cmd/matter-bridge/api"
	"github.com/mash-protocol/matter-bridge/pkg/config"
	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/nodestore"
)

// Server is the HTTP frontend of the bridge.
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server
	store  *nodestore.Store
	log    *slog.Logger

	bridge  *api.BridgeAPI
	nodes   *api.NodesAPI
	devices *api.DevicesAPI
}

// NewServer creates a server over an already-wired controller and store.
func NewServer(cfg *config.Config, ctrl *controller.Controller, store *nodestore.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		store:   store,
		log:     logger,
		bridge:  api.NewBridgeAPI(ctrl, store, logger),
		nodes:   api.NewNodesAPI(store, logger),
		devices: api.NewDevicesAPI(),
	}

	s.registerRoutes()

	handler := s.requestID(s.cors(s.mux))
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/help", s.handleHelp)

	// Device commands
	s.mux.HandleFunc("/api/pairing", s.bridge.HandlePairing)
	s.mux.HandleFunc("/api/open-commissioning-window", s.bridge.HandleOpenCommissioningWindow)
	s.mux.HandleFunc("/api/invoke-command", s.bridge.HandleInvokeCommand)
	s.mux.HandleFunc("/api/read-attribute", s.bridge.HandleReadAttribute)
	s.mux.HandleFunc("/api/write-attribute", s.bridge.HandleWriteAttribute)
	s.mux.HandleFunc("/api/read-event", s.bridge.HandleReadEvent)
	s.mux.HandleFunc("/api/subscribe-attribute", s.bridge.HandleSubscribeAttribute)
	s.mux.HandleFunc("/api/subscribe-event", s.bridge.HandleSubscribeEvent)
	s.mux.HandleFunc("/api/shutdown-subscription", s.bridge.HandleShutdownSubscription)
	s.mux.HandleFunc("/api/shutdown-all-subscriptions", s.bridge.HandleShutdownAllSubscriptions)
	s.mux.HandleFunc("/api/ble-scan", s.bridge.HandleBLEScan)
	s.mux.HandleFunc("/api/group-settings", s.bridge.HandleGroupSettings)
	s.mux.HandleFunc("/api/udc", s.bridge.HandleUDC)

	// Registry and discovery
	s.mux.HandleFunc("/api/nodes", s.nodes.HandleNodes)
	s.mux.HandleFunc("/api/nodes/", s.nodes.HandleNodeByID)
	s.mux.HandleFunc("/api/devices", s.devices.HandleDevices)
}

// cors adds the CORS headers and answers preflight requests. Disabled via
// config for deployments behind a gateway that sets its own.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.CORSEnable {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with an id for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		s.log.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// endpointInfo describes one API endpoint in the help listing.
type endpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// handleHelp returns the endpoint listing.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	endpoints := []endpointInfo{
		{"GET", "/api/help", "This endpoint listing"},
		{"POST", "/api/pairing", "Commission a device (onnetwork, code, ble-wifi, ble-thread)"},
		{"POST", "/api/open-commissioning-window", "Open a commissioning window on a node"},
		{"POST", "/api/invoke-command", "Invoke a cluster command"},
		{"POST", "/api/read-attribute", "Read attributes and wait for the values"},
		{"POST", "/api/write-attribute", "Write attributes"},
		{"POST", "/api/read-event", "Read events and wait for the values"},
		{"POST", "/api/subscribe-attribute", "Subscribe to attribute reports"},
		{"POST", "/api/subscribe-event", "Subscribe to event reports"},
		{"POST", "/api/shutdown-subscription", "Shut down one subscription"},
		{"POST", "/api/shutdown-all-subscriptions", "Shut down all subscriptions"},
		{"POST", "/api/ble-scan", "Start a BLE discovery scan"},
		{"POST", "/api/group-settings", "Manage multicast groups (show-groups, add-group, remove-group)"},
		{"POST", "/api/udc", "User-directed commissioning (reset, print, commission)"},
		{"GET", "/api/nodes", "List commissioned nodes"},
		{"DELETE", "/api/nodes/{node_id}", "Forget a commissioned node"},
		{"GET", "/api/devices", "Discover devices via mDNS"},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"endpoints": endpoints,
		"total":     len(endpoints),
	})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Close shuts down the server's store.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
