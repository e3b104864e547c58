package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

type gameManager interface {
	CreateGame(ctx context.Context) (entity.State, error)
	GetState(ctx context.Context, gameID string) (entity.State, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*usecase.TurnReport, error)
	RequestComputerMove(ctx context.Context, gameID string) (usecase.TurnResult, entity.State, error)
	ResetGame(ctx context.Context, gameID string) (entity.State, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type computerResponse struct {
	Computer usecase.TurnResult `json:"computer"`
	State    entity.State       `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger *slog.Logger
	games  gameManager
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, "createGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, state)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "getGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "deleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"cell\": <0-8>}"})
		return
	}

	report, err := that.games.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		if report != nil && !report.Human.Accepted {
			that.writeJSON(w, http.StatusUnprocessableEntity, struct {
				*usecase.TurnReport
				Error string `json:"error"`
			}{report, err.Error()})
			return
		}

		that.writeError(w, "makeTurn", err)
		return
	}

	that.writeJSON(w, http.StatusOK, report)
}

func (that *handlers) computerMove(w http.ResponseWriter, r *http.Request) {
	result, state, err := that.games.RequestComputerMove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "computerMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, computerResponse{Computer: result, State: state})
}

func (that *handlers) resetGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.ResetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "resetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidMove), errors.Is(err, apperror.ErrWrongTurn):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrSearchNotAllowed):
		status = http.StatusConflict
	default:
		that.logger.Error("request failed", "method", method, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
