package websocket

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	state, err := that.games.CreateGame(ctx)
	if err != nil {
		return that.fail(conn, msg.Action, err)
	}

	conn.gameID = state.ID
	that.logger.Debug("game started over websocket", "gameID", state.ID)

	return conn.send(msg.Action, ResponsePayload{Game: &state})
}

func (that *Server) handleJoinGame(ctx context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	if payload.GameID == "" {
		return conn.sendError(msg.Action, errGameIDRequired)
	}

	state, err := that.games.GetState(ctx, payload.GameID)
	if err != nil {
		return that.fail(conn, msg.Action, err)
	}

	conn.gameID = state.ID

	return conn.send(msg.Action, ResponsePayload{Game: &state})
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	if payload.Cell == nil {
		return conn.sendError(msg.Action, errCellRequired)
	}

	if conn.gameID == "" {
		return conn.sendError(msg.Action, errNoGame)
	}

	report, err := that.games.MakeTurn(ctx, conn.gameID, *payload.Cell)
	if err != nil {
		if report != nil {
			return conn.send(msg.Action, ResponsePayload{
				Game:  &report.State,
				Human: &report.Human,
				Error: err.Error(),
			})
		}

		return that.fail(conn, msg.Action, err)
	}

	return conn.send(msg.Action, ResponsePayload{
		Game:     &report.State,
		Human:    &report.Human,
		Computer: report.Computer,
	})
}

func (that *Server) handleComputerMove(ctx context.Context, conn *connection, msg *Message) error {
	if conn.gameID == "" {
		return conn.sendError(msg.Action, errNoGame)
	}

	result, state, err := that.games.RequestComputerMove(ctx, conn.gameID)
	if errors.Is(err, apperror.ErrSearchNotAllowed) {
		return conn.send(msg.Action, ResponsePayload{Game: &state, Error: err.Error()})
	}

	if err != nil {
		return that.fail(conn, msg.Action, err)
	}

	return conn.send(msg.Action, ResponsePayload{Game: &state, Computer: &result})
}

func (that *Server) handleResetGame(ctx context.Context, conn *connection, msg *Message) error {
	if conn.gameID == "" {
		return conn.sendError(msg.Action, errNoGame)
	}

	state, err := that.games.ResetGame(ctx, conn.gameID)
	if err != nil {
		return that.fail(conn, msg.Action, err)
	}

	return conn.send(msg.Action, ResponsePayload{Game: &state})
}

// fail reports err to the client. Unexpected errors are also logged.
func (that *Server) fail(conn *connection, action string, err error) error {
	if !errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Error("failed to process action", "action", action, "gameID", conn.gameID, "error", err)
	}

	return conn.sendError(action, err)
}
