package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"lightline-cli/internal/model"
)

type Server struct {
	mu      sync.RWMutex
	player  *Player
	fps     int
	clock   model.Time
	frameID uint64
	clients map[*websocket.Conn]bool
	started time.Time
}

func NewServer(lvl model.Level, fps int) *Server {
	return &Server{
		player:  NewPlayer(lvl),
		fps:     max(1, fps),
		clients: map[*websocket.Conn]bool{},
		started: time.Now(),
	}
}

// SetLevel swaps the level being played and restarts the clock.
func (s *Server) SetLevel(lvl model.Level) {
	p := NewPlayer(lvl)
	s.mu.Lock()
	s.player = p
	s.clock = 0
	s.mu.Unlock()
}

// Tick advances the playback clock by dt, looping after the level ends, and
// broadcasts the new frame.
func (s *Server) Tick(dt model.Time) Frame {
	s.mu.Lock()
	s.clock += dt
	if d := s.player.Duration(); d > 0 && s.clock > d {
		s.clock %= d
	}
	s.frameID++
	f := s.player.At(s.clock)
	f.FrameID = s.frameID
	s.mu.Unlock()

	s.broadcast(f)
	return f
}

// Run ticks at the configured rate until ctx is done.
func (s *Server) Run(ctx context.Context) {
	interval := time.Second / time.Duration(s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	step := model.Time(interval / time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			return
		case <-ticker.C:
			s.Tick(step)
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /level", s.HandleLevel)
	mux.HandleFunc("GET /frames", s.HandleFramesWS)
	mux.HandleFunc("GET /health", s.HandleHealth)
	return mux
}

func (s *Server) HandleLevel(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	lvl := s.player.Level()
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lvl)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"t":        s.clock,
		"uptime_s": time.Since(s.started).Seconds(),
		"clients":  len(s.clients),
		"fps":      s.fps,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("upgrade frames")
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	current := s.player.At(s.clock)
	current.FrameID = s.frameID
	// The current frame goes out before any broadcast reaches this client.
	err = writeFrame(conn, current)
	s.mu.Unlock()
	if err != nil {
		s.drop(conn)
		return
	}
	log.Debug().Str("remote", r.RemoteAddr).Msg("preview client connected")

	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := writeFrame(c, f); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func writeFrame(c *websocket.Conn, f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = c.Close()
		delete(s.clients, c)
	}
}
