package relay

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FireRat666/Banter-Reversi/internal/property"
)

// DefaultSpace is joined when a client names none.
const DefaultSpace = "lobby"

// Server hosts named property spaces.
type Server struct {
	log      *zap.SugaredLogger
	ids      property.IdentityGenerator
	metrics  *Metrics
	upgrader websocket.Upgrader

	mu     sync.Mutex
	spaces map[string]*property.Space
}

// Option configures a Server.
type Option func(*Server)

// WithIdentity sets the participant identity generator.
func WithIdentity(gen property.IdentityGenerator) Option {
	return func(s *Server) { s.ids = gen }
}

// WithOriginCheck restricts websocket origins. By default every origin is
// accepted.
func WithOriginCheck(check func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = check }
}

// NewServer creates a relay logging to log.
func NewServer(log *zap.SugaredLogger, opts ...Option) *Server {
	s := &Server{
		log:     log,
		ids:     property.UUIDv7Generator{},
		metrics: &Metrics{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		spaces: make(map[string]*property.Space),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the relay's HTTP routes: /ws, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", s.HandleMetrics)
	return mux
}

// Metrics returns the live counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Space returns the named space, creating it on first use.
func (s *Server) Space(name string) *property.Space {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.spaces[name]
	if !ok {
		sp = property.NewSpace()
		s.spaces[name] = sp
		s.log.Infof("space created: %s", name)
	}
	return sp
}

// SpaceNames lists the hosted spaces in order.
func (s *Server) SpaceNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.spaces))
	for n := range s.spaces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HandleWS accepts a websocket client: /ws?space=lobby
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("space")
	if name == "" {
		name = DefaultSpace
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("upgrade error: %v", err)
		return
	}

	space := s.Space(name)
	uid := s.ids.Generate()
	c := newClient(ws, space, space.Join(uid), uid, s.metrics, s.log.With("space", name, "uid", uid))
	s.metrics.connOpened()
	c.log.Infof("client joined from %s", r.RemoteAddr)

	c.welcome()
	go c.writePump()
	go c.forward()
	go func() {
		c.readPump()
		s.metrics.connClosed()
		c.log.Info("client left")
	}()
}

// HandleMetrics reports counters and hosted spaces as JSON.
func (s *Server) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"spaces":  s.SpaceNames(),
		"metrics": s.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
