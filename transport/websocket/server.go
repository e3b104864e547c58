package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 4096
)

type gameManager interface {
	CreateGame(ctx context.Context) (entity.State, error)
	GetState(ctx context.Context, gameID string) (entity.State, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*usecase.TurnReport, error)
	RequestComputerMove(ctx context.Context, gameID string) (usecase.TurnResult, entity.State, error)
	ResetGame(ctx context.Context, gameID string) (entity.State, error)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

// Server plays games over a websocket. Each connection drives one game at a time.
type Server struct {
	logger   *slog.Logger
	games    gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	mu     sync.Mutex
	conns  map[*connection]struct{}
	closed bool
}

func New(logger *slog.Logger, games gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
		conns:    make(map[*connection]struct{}),
	}

	server.handlers[actionNew] = server.handleNewGame
	server.handlers[actionJoin] = server.handleJoinGame
	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionComputer] = server.handleComputerMove
	server.handlers[actionReset] = server.handleResetGame

	return server
}

// ServeHTTP - upgrades the connection to WebSocket and serves it until the client
// leaves or the server shuts down.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	if that.isClosed() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &connection{ws: ws, cancel: cancel}
	if !that.track(conn) {
		conn.goAway()
		return
	}
	defer that.untrack(conn)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// Shutdown closes every live connection and refuses new ones. Hijacked
// connections are not tracked by http.Server, so this has to be registered
// with its RegisterOnShutdown.
func (that *Server) Shutdown() {
	that.mu.Lock()
	that.closed = true
	conns := make([]*connection, 0, len(that.conns))
	for conn := range that.conns {
		conns = append(conns, conn)
	}
	that.mu.Unlock()

	for _, conn := range conns {
		conn.goAway()
	}

	that.logger.Info("WebSocket connections closed", "count", len(conns))
}

func (that *Server) isClosed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

func (that *Server) track(conn *connection) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	that.conns[conn] = struct{}{}

	return true
}

func (that *Server) untrack(conn *connection) {
	that.mu.Lock()
	delete(that.conns, conn)
	that.mu.Unlock()

	conn.close()
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.ws.SetReadLimit(maxFrameSize)
	if err := conn.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go conn.keepAlive(done)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("connection closed", "gameID", conn.gameID, "reason", ctx.Err())
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("client left", "gameID", conn.gameID)
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			if err = conn.sendError(actionError, errMalformedMessage); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			if err = conn.sendError(message.Action, errUnknownAction); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			if errors.Is(err, errWrite) {
				return err
			}
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
