// Package http exposes collected trial data and live lifecycle events
// over a small REST surface, for dashboards and analysis scripts that
// watch an experiment while it runs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// Server serves run data from a DataStore and streams lifecycle events
// to SSE subscribers.
type Server struct {
	Engine  *trialflow.Engine
	Store   ports.DataStore
	Streams *StreamManager
	Logger  *slog.Logger
}

// NewServer creates a Server over the store. The usual wiring order is:
// build the server, build the engine with the server's Hooks attached, set
// Engine, then mount Handler.
func NewServer(store ports.DataStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Store:   store,
		Streams: NewStreamManager(logger),
		Logger:  logger,
	}
}

// NewHandler is shorthand for serving an engine built elsewhere. /events
// subscribers only see trials run through an engine carrying this server's
// Hooks, so callers that need the live stream use NewServer instead.
func NewHandler(engine *trialflow.Engine, store ports.DataStore, logger *slog.Logger) http.Handler {
	server := NewServer(store, logger)
	server.Engine = engine
	return server.Handler()
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/plugins", s.GetPlugins)
	r.Get("/runs", s.ListRuns)
	r.Get("/runs/{runID}/data", s.GetRunData)
	r.Delete("/runs/{runID}", s.DeleteRun)
	r.Get("/events", s.SubscribeEvents)

	return enableCORS(r)
}

// Hooks returns lifecycle hooks that broadcast every event to the SSE
// subscribers of its run. Attach them to the engine serving this handler.
func (s *Server) Hooks() domain.LifecycleHooks {
	broadcast := func(event *domain.TrialEvent) {
		payload, err := json.Marshal(event)
		if err != nil {
			s.Logger.Warn("event encode failed", "err", err)
			return
		}
		s.Streams.Broadcast(event.RunID, string(payload))
	}
	return domain.LifecycleHooks{
		OnTrialStart:  func(_ context.Context, e *domain.TrialEvent) { broadcast(e) },
		OnPhaseChange: func(_ context.Context, e *domain.TrialEvent) { broadcast(e) },
		OnTrialFinish: func(_ context.Context, e *domain.TrialEvent) { broadcast(e) },
		OnTrialAbort:  func(_ context.Context, e *domain.TrialEvent) { broadcast(e) },
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "trialflow-http",
		"version": strings.TrimSpace(trialflow.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetPlugins handles the GET /plugins request. Each entry carries the
// plugin's full parameter schema in type-string notation, so clients can
// pre-validate trials with schema.ParseTypeMap.
func (s *Server) GetPlugins(w http.ResponseWriter, r *http.Request) {
	type pluginInfo struct {
		Name       string        `json:"name"`
		Parameters schema.Schema `json:"parameters"`
	}

	names := s.Engine.Plugins()
	resp := make([]pluginInfo, 0, len(names))
	for _, name := range names {
		plug, err := s.Engine.Plugin(name)
		if err != nil {
			continue
		}
		resp = append(resp, pluginInfo{Name: name, Parameters: plug.Schema()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("plugins response encode failed", "err", err)
	}
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "No data store configured", http.StatusNotImplemented)
		return
	}

	runs, err := s.Store.ListRuns(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("list runs failed", "err", err)
		return
	}
	if runs == nil {
		runs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.Logger.Error("runs response encode failed", "err", err)
	}
}

// GetRunData handles the GET /runs/{runID}/data request.
func (s *Server) GetRunData(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "No data store configured", http.StatusNotImplemented)
		return
	}

	runID := chi.URLParam(r, "runID")
	rows, err := s.Store.LoadRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("load run failed", "run_id", runID, "err", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		s.Logger.Error("run data encode failed", "run_id", runID, "err", err)
	}
}

// DeleteRun handles the DELETE /runs/{runID} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "No data store configured", http.StatusNotImplemented)
		return
	}

	runID := chi.URLParam(r, "runID")
	if err := s.Store.DeleteRun(r.Context(), runID); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("delete run failed", "run_id", runID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// run_id query parameter narrows the stream to one run.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	runID := r.URL.Query().Get("run_id")
	s.Logger.Info("sse subscriber connected", "run_id", runID)

	ch, cancel := s.Streams.Subscribe(runID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("sse subscriber disconnected", "run_id", runID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager handles active SSE connections. Subscribers with an
// empty run ID receive events from every run.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // RunID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(runID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[runID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, runID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(runID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	deliver := func(subs map[chan<- string]struct{}) {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("sse client buffer full, dropping message", "run_id", runID)
			}
		}
	}

	if subs, ok := sm.subscribers[runID]; ok {
		deliver(subs)
	}
	if runID != "" {
		if subs, ok := sm.subscribers[""]; ok {
			deliver(subs)
		}
	}
}
