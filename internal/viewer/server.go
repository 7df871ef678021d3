package viewer

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/onnwee/gravity-sim/internal/errorreporting"
	"github.com/onnwee/gravity-sim/internal/logger"
)

// Server exposes a running simulation. The simulation loop calls Publish
// after each dumped step; HTTP handlers only ever see encoded frames, so
// they never race with the solver.
type Server struct {
	hub     *Hub
	frames  *FrameCache
	limiter *rate.Limiter

	mu     sync.RWMutex
	latest []byte
	state  State
}

// State is the /api/state payload.
type State struct {
	Step    int     `json:"step"`
	Bodies  int     `json:"bodies"`
	Engine  string  `json:"engine"`
	Time    float64 `json:"time"`
	Energy  float64 `json:"energy,omitempty"`
	Clients int     `json:"clients"`
}

// NewServer creates a server broadcasting at most fps frames per second to
// WebSocket clients, with a frame rewind cache of cacheMB megabytes.
func NewServer(fps float64, cacheMB int64) (*Server, error) {
	frames, err := NewFrameCache(cacheMB)
	if err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = 30
	}
	return &Server{
		hub:     NewHub(),
		frames:  frames,
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
	}, nil
}

// Hub returns the WebSocket hub; the caller runs it.
func (s *Server) Hub() *Hub { return s.hub }

// Publish caches the frame and, within the frame-rate budget, broadcasts
// it. Frames beyond the budget are still cached for rewind.
func (s *Server) Publish(f *Frame, st State) error {
	encoded, err := f.Encode()
	if err != nil {
		return err
	}
	s.frames.Put(f.Step, encoded)

	s.mu.Lock()
	s.latest = encoded
	st.Clients = s.hub.ClientCount()
	s.state = st
	s.mu.Unlock()

	if s.limiter.Allow() {
		s.hub.Broadcast(encoded)
	}
	return nil
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/frame/latest", s.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/frame/{step:[0-9]+}", s.handleFrame).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.ServeWS)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	st.Clients = s.hub.ClientCount()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no frame published yet"})
		return
	}
	writeRawJSON(w, latest)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(mux.Vars(r)["step"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad step"})
		return
	}
	encoded, ok := s.frames.Get(step)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "frame not cached"})
		return
	}
	writeRawJSON(w, encoded)
}

// Close releases the frame cache.
func (s *Server) Close() { s.frames.Close() }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, encoded []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(encoded)
}

// recoveryMiddleware turns handler panics into 500s and reports them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithComponent("viewer").Error("handler panic",
					"path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				if err, ok := rec.(error); ok {
					errorreporting.CaptureError(err, "viewer")
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
