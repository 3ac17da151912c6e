package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hectorgimenez/questengine/internal/event"
)

type Controller interface {
	Status() event.Status
	Stop()
}

// HttpServer exposes the run status over plain HTTP and pushes every change
// to websocket clients.
type HttpServer struct {
	logger     *slog.Logger
	controller Controller
	wsServer   *WebSocketServer
	server     *http.Server
	ctx        context.Context
}

func New(logger *slog.Logger, controller Controller) *HttpServer {
	return &HttpServer{
		logger:     logger,
		controller: controller,
		wsServer:   NewWebSocketServer(logger),
		ctx:        context.Background(),
	}
}

func (s *HttpServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.status)
	mux.HandleFunc("POST /stop", s.stop)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.wsServer.HandleWebSocket(s.ctx, w, r, s.statusJSON())
	})
	return mux
}

// Listen serves until ctx is done.
func (s *HttpServer) Listen(ctx context.Context, port int) error {
	s.ctx = ctx
	go s.wsServer.Run(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Warn("HTTP server shutdown failed", slog.Any("error", err))
		}
	}()

	s.logger.Info("Status server listening", slog.Int("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HttpServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Handle pushes the latest status to websocket clients. Register it on the
// event listener after the status tracker.
func (s *HttpServer) Handle(_ context.Context, _ event.Event) error {
	s.wsServer.Broadcast(s.statusJSON())
	return nil
}

func (s *HttpServer) statusJSON() []byte {
	data, err := json.Marshal(s.controller.Status())
	if err != nil {
		s.logger.Error("Failed to marshal status data", slog.Any("error", err))
		return []byte("{}")
	}
	return data
}

func (s *HttpServer) status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.statusJSON())
}

func (s *HttpServer) stop(w http.ResponseWriter, _ *http.Request) {
	if !s.controller.Status().Playing {
		http.Error(w, "no quest is running", http.StatusConflict)
		return
	}

	s.controller.Stop()
	s.logger.Info("Quest run stopped over HTTP")
	w.WriteHeader(http.StatusAccepted)
}
