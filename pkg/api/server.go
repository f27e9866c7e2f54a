// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package api exposes the REST interface: device inventory, metrics,
// alerts, topology, compliance, SLA status and the agent chat endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/cwccie/netopshub/pkg/agents"
	"github.com/cwccie/netopshub/pkg/anomaly"
	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/discover"
	"github.com/cwccie/netopshub/pkg/monitor"
	"github.com/cwccie/netopshub/pkg/netconf"
	"github.com/cwccie/netopshub/pkg/util/log"
)

var apiJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// State holds the shared subsystems the API serves from.
type State struct {
	Collector     *collect.UnifiedCollector
	Scanner       *discover.NetworkScanner
	Topology      *discover.TopologyDiscovery
	HealthMonitor *monitor.HealthMonitor
	AlertManager  *monitor.AlertManager
	SLAMonitor    *monitor.SLAMonitor
	Detector      *anomaly.Detector
	ConfigManager *netconf.Manager
	Compliance    *compliance.Engine
	Coordinator   *agents.Coordinator
}

// NewState wires every subsystem from the process configuration.
func NewState(cfg config.Config) *State {
	collector := collect.NewUnifiedCollector(cfg)
	scanner := discover.NewNetworkScanner(collector.SNMP, cfg.GetBool("demo_mode"))
	topology := discover.NewTopologyDiscovery()
	engine := compliance.NewEngine(cfg.GetBool("demo_mode"))
	return &State{
		Collector:     collector,
		Scanner:       scanner,
		Topology:      topology,
		HealthMonitor: monitor.NewHealthMonitor(nil, cfg.GetInt("health.max_history")),
		AlertManager:  monitor.NewAlertManager(),
		SLAMonitor:    monitor.NewSLAMonitor(nil, cfg.GetInt("sla.max_history")),
		Detector: anomaly.NewDetector(anomaly.Options{
			ZScoreThreshold: cfg.GetFloat64("anomaly.z_threshold"),
			IQRMultiplier:   cfg.GetFloat64("anomaly.iqr_multiplier"),
			EWMAAlpha:       cfg.GetFloat64("anomaly.ewma_alpha"),
			MinSamples:      cfg.GetInt("anomaly.min_samples"),
			MaxHistory:      cfg.GetInt("anomaly.max_history"),
		}),
		ConfigManager: netconf.NewManager(),
		Compliance:    engine,
		Coordinator:   agents.NewCoordinator(scanner, topology, engine),
	}
}

// Server is the HTTP front end.
type Server struct {
	state  *State
	router *mux.Router
	srv    *http.Server
}

// NewServer builds the server and registers all routes.
func NewServer(state *State, addr string) *Server {
	s := &Server{
		state:  state,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Router exposes the route table, mainly for tests.
func (s *Server) Router() http.Handler { return corsMiddleware(s.router) }

// Run starts collection engines and serves until the context is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.state.Collector.Start(ctx); err != nil {
		return err
	}
	log.Infof("NetOpsHub API listening on %s", s.srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.state.Collector.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	s.state.Collector.Stop()
	log.Info("NetOpsHub API stopped")
	return err
}

func (s *Server) registerRoutes() {
	r := s.router.PathPrefix("/api/v1").Subrouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	r.HandleFunc("/devices", s.handleListDevices).Methods(http.MethodGet)
	r.HandleFunc("/devices/scan", s.handleScanDevices).Methods(http.MethodPost)

	r.HandleFunc("/metrics", s.handleGetMetrics).Methods(http.MethodGet)
	r.HandleFunc("/metrics/collect", s.handleTriggerCollection).Methods(http.MethodPost)

	r.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{alert_id}/acknowledge", s.handleAcknowledgeAlert).Methods(http.MethodPost)
	r.HandleFunc("/alerts/{alert_id}/resolve", s.handleResolveAlert).Methods(http.MethodPost)

	r.HandleFunc("/topology", s.handleTopology).Methods(http.MethodGet)

	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/chat/history", s.handleChatHistory).Methods(http.MethodGet)

	r.HandleFunc("/compliance/audit", s.handleComplianceAudit).Methods(http.MethodPost)
	r.HandleFunc("/compliance/status", s.handleComplianceStatus).Methods(http.MethodGet)

	r.HandleFunc("/sla", s.handleSLA).Methods(http.MethodGet)
	r.HandleFunc("/agents", s.handleAgents).Methods(http.MethodGet)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := apiJSON.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	return apiJSON.NewDecoder(r.Body).Decode(dst)
}
