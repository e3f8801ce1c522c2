// Package ws is the websocket transport: it frames and (de)serializes
// messages and converts router results into reply frames sent back over the
// originating connection only. All chat semantics live in services.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SergioBarbosa7/socket-chat/services"
)

const shutdownTimeout = 5 * time.Second

// Server accepts websocket clients on /ws and runs one handler per
// connection. It implements contract.Worker so the supervisor owns its
// lifecycle.
type Server struct {
	addr      string
	readLimit int64
	service   services.IChatService
	log       *slog.Logger
	upgrader  websocket.Upgrader
}

func NewServer(addr string, readLimit int64, service services.IChatService, log *slog.Logger) *Server {
	return &Server{
		addr:      addr,
		readLimit: readLimit,
		service:   service,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Run serves until the context is canceled, then drains with a bounded
// shutdown.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{Addr: s.addr, Handler: s.mux()}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("Chat server listening", "addr", s.addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("Shutdown did not drain cleanly", "error", err)
		}
		return ctx.Err()
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(s.readLimit)

	handler := newClientHandler(conn, s.service, s.log)
	handler.run()
}
