package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dusk-indust/deckgen/internal/jobs"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"go.uber.org/zap"
)

// Server exposes the deck job API over HTTP: job submission, job lookup,
// job listing, and a live SSE stream of batch events per job.
type Server struct {
	store  *jobs.Store
	worker *jobs.Worker
	hub    *Hub
	logger *zap.Logger
	http   *http.Server
}

// NewServer creates a Server over the given store, worker, and hub.
// logger may be nil.
func NewServer(store *jobs.Store, worker *jobs.Worker, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:  store,
		worker: worker,
		hub:    hub,
		logger: logger,
	}
}

// Start creates an HTTP server, registers routes, and begins serving.
// It returns immediately after starting the server in a background
// goroutine.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go s.http.ListenAndServe()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the route handler, for serving through an external
// listener or in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/decks", s.handleSubmit)
	mux.HandleFunc("GET /v1/decks", s.handleList)
	mux.HandleFunc("GET /v1/decks/{id}", s.handleGet)
	mux.HandleFunc("GET /v1/decks/{id}/events", s.handleEvents)
	return mux
}

// submitRequest is the POST /v1/decks payload. TimeoutSeconds maps to the
// per-slide generation deadline.
type submitRequest struct {
	Topic          string   `json:"topic"`
	Slides         int      `json:"slides"`
	Backends       []string `json:"backends"`
	Theme          string   `json:"theme,omitempty"`
	Window         int      `json:"window,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	job, err := s.worker.Submit(jobs.Request{
		Topic:    req.Topic,
		Slides:   req.Slides,
		Backends: req.Backends,
		Theme:    req.Theme,
		Window:   req.Window,
		Timeout:  time.Duration(req.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		var cfgErr *orchestrator.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.logger.Info("deck job submitted",
		zap.String("job", job.ID),
		zap.String("topic", job.Request.Topic),
		zap.Int("slides", job.Request.Slides))

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := jobs.ListRequest{
		State:     jobs.State(q.Get("state")),
		PageToken: q.Get("pageToken"),
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pageSize: "+raw)
			return
		}
		filter.PageSize = n
	}

	resp, err := s.store.List(filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEvents streams batch events for one job as SSE. The stream ends
// when the client disconnects or, for a job already terminal at
// subscription time, immediately after a synthetic status frame.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Subscribe before inspecting the job so a completion between the two
	// steps is observed one way or the other.
	events, cancel := s.hub.Subscribe(id)
	defer cancel()

	job, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	sw := NewSSEWriter(w)
	sw.Init()

	if job.State.IsTerminal() {
		// Nothing further will be published; report the final state and
		// close the stream.
		ev := orchestrator.Event{
			Type:    orchestrator.EventBatchComplete,
			Topic:   job.Request.Topic,
			Message: string(job.State),
			Totals:  job.Totals,
		}
		_ = sw.WriteEvent(ev)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sw.WriteEvent(ev); err != nil {
				return
			}
			if ev.Type == orchestrator.EventBatchComplete {
				return
			}
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
