package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

const (
	actionNew      = "game:new"
	actionJoin     = "game:join"
	actionTurn     = "game:turn"
	actionComputer = "game:computer"
	actionReset    = "game:reset"
	actionError    = "error"
)

var (
	errWrite            = errors.New("failed to write message")
	errMalformedMessage = errors.New("message must be {\"action\": ..., \"payload\": ...}")
	errUnknownAction    = errors.New("unknown action")
	errNoGame           = errors.New("no game on this connection, send game:new or game:join first")
	errCellRequired     = errors.New("cell is required")
	errGameIDRequired   = errors.New("game_id is required")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	GameID string `json:"game_id,omitempty"`
	Cell   *int   `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game     *entity.State       `json:"game,omitempty"`
	Human    *usecase.TurnResult `json:"human,omitempty"`
	Computer *usecase.TurnResult `json:"computer,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// connection is one client socket and the game it currently drives.
// Only the read loop writes data frames; pings go through WriteControl.
type connection struct {
	ws     *websocket.Conn
	cancel context.CancelFunc
	gameID string
}

func (that *connection) send(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("%w: %w", errWrite, err)
	}

	if err = that.ws.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("%w: %w", errWrite, err)
	}

	return nil
}

func (that *connection) sendError(action string, err error) error {
	return that.send(action, ResponsePayload{Error: err.Error()})
}

func (that *connection) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// goAway cancels the connection's context, then tells the client the server is
// leaving and drops the socket.
func (that *connection) goAway() {
	that.cancel()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = that.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))

	that.close()
}

func (that *connection) close() {
	_ = that.ws.Close()
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
