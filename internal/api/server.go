package api

import (
	"encoding/json"
	"image"
	"image/png"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"miniball/internal/render"
	"miniball/internal/sim"
	"miniball/internal/vm"
)

// Server is the HTTP surface of the reference host: state endpoint, debug
// frame, metrics, and the websocket participants connect through.
type Server struct {
	host        *Host
	renderer    *render.Renderer
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer wires the router. The websocket hub and the tick loop do not
// start until Start() is called, so tests can construct a server and use
// Router() without the simulation advancing. The rate limiter's cleanup
// goroutine starts here; Stop() ends it.
func NewServer(host *Host, renderer *render.Renderer) *Server {
	s := &Server{
		host:        host,
		renderer:    renderer,
		wsHub:       NewWebSocketHub(host),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	r.Use(s.rateLimiter.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/state", s.handleState)
	r.Get("/api/frame", s.handleFrame)
	r.Get("/api/version", s.handleVersion)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.wsHub.HandleWebSocket(w, r)
	})

	s.router = r
	return s
}

// Start launches the hub, the tick loop, and the HTTP listener. Blocks
// until the listener fails.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.host.SetOnTick(s.wsHub.BroadcastSummary)
	s.host.Start()

	log.Printf("🌐 host API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	s.host.Stop()
	s.rateLimiter.Stop()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.host.Summary())
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"version":        vm.CurrentVersion,
		"tickDurationMs": vm.TickDurationMs,
		"stateOctetSize": vm.StateOctetSize,
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	if s.renderer == nil {
		http.Error(w, "frame rendering disabled", http.StatusNotFound)
		return
	}

	var img image.Image
	s.host.WithGame(func(g *sim.Game) {
		img = s.renderer.Frame(g)
	})

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("⚠️ frame encode failed: %v", err)
	}
}
