// Package server exposes the websocket call gateway. Each connection
// carries one voice call bridged by the telephony edge: inbound frames
// deliver caller utterances, outbound frames carry prompts to speak.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           int           `envconfig:"PORT" split_words:"true" default:"8080"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" split_words:"true" default:"*"`
	MaxSessions    int           `envconfig:"MAX_SESSIONS" split_words:"true" default:"200"`
	SessionTimeout time.Duration `envconfig:"SESSION_TIMEOUT" split_words:"true" default:"30m"`
}

type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	manager    *Manager
	cfg        Config
}

func NewServer(cfg Config, manager *Manager) *Server {
	s := &Server{
		manager: manager,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/call", s.handleCall)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("call gateway listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("call gateway shutting down")
	s.manager.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess, err := s.manager.CreateSession(r.Context(), conn)
	if err != nil {
		log.Warn().Err(err).Msg("call session rejected")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	log.Info().Str("session_id", sess.ID).Msg("call connected")
	sess.run(r.Context())

	_ = s.manager.RemoveSession(context.Background(), sess.ID)
	log.Info().Str("session_id", sess.ID).Msg("call closed")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","calls":%d}`, s.manager.ActiveCount())
}
