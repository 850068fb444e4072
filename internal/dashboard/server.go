package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type Server struct {
	cfg      Config
	token    string
	snaps    Snapshots
	history  HistoryReader
	metrics  prometheus.Gatherer
	logger   logger.Logger
	upgrader websocket.Upgrader
	clients  sync.WaitGroup
}

// New builds the server. An empty token is replaced by a random one.
func New(cfg Config, snaps Snapshots, hist HistoryReader, metrics prometheus.Gatherer, log logger.Logger) (*Server, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if snaps == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "snapshot source is required")
	}

	s := &Server{
		cfg:     cfg,
		token:   cfg.Token,
		snaps:   snaps,
		history: hist,
		metrics: metrics,
		logger:  log,
	}
	if s.token == "" {
		s.token = uuid.NewString()
		log.Info().Str("token", s.token).Msg("generated dashboard token")
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.originAllowed,
	}

	return s, nil
}

func (s *Server) Token() string {
	return s.token
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.GET("/snapshot", s.authorized(s.handleSnapshot))
	router.GET("/history", s.authorized(s.handleHistory))
	router.GET("/ws", s.authorized(s.handleWebSocket))
	if s.metrics != nil {
		metrics := promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})
		router.GET("/metrics", s.authorized(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			metrics.ServeHTTP(w, r)
		}))
	}

	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrServeFailed, err)
	}
	return ln, nil
}

// Serve handles connections on ln until ctx is done, then shuts down and
// waits for websocket clients to leave.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errFactory := errors.New()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("dashboard listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errFactory.Wrap(errors.ErrServeFailed, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.clients.Wait()
	if err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}

	s.logger.Debug().Msg("dashboard stopped")

	return nil
}

func (s *Server) authorized(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !s.validToken(requestToken(r)) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

func (s *Server) validToken(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap, ok := s.snaps.Latest()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.history == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	points, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history query failed")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, points)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Err(err).Msg("writing response")
	}
}
