package usecase

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// HumanMark is the mark of the human player, who always moves first.
const HumanMark = entity.PlayerX

// TurnResult reports one move attempt back to the presentation layer.
type TurnResult struct {
	Accepted bool           `json:"accepted"`
	Cell     int            `json:"cell"`
	Outcome  entity.Outcome `json:"outcome"`
}

type botService interface {
	MakeTurn(game *entity.Game) (int, entity.Outcome, error)
}

// Session drives a single game between the human and the computer.
// It is synchronous and not safe for concurrent use.
type Session struct {
	game *entity.Game
	bot  botService
}

func NewSession(game *entity.Game, bot botService) *Session {
	return &Session{
		game: game,
		bot:  bot,
	}
}

// ApplyHumanMove plays cell for the human. A rejected move changes nothing
// and comes back with Accepted false and the reason as the error.
func (that *Session) ApplyHumanMove(cell int) (TurnResult, error) {
	outcome, err := that.game.MakeTurn(HumanMark, cell)
	if err != nil {
		return TurnResult{Cell: cell, Outcome: outcome}, fmt.Errorf("human move rejected: %w", err)
	}

	return TurnResult{Accepted: true, Cell: cell, Outcome: outcome}, nil
}

// RequestComputerMove lets the computer search for and play its move.
// The game must be active with the computer to move.
func (that *Session) RequestComputerMove() (TurnResult, error) {
	cell, outcome, err := that.bot.MakeTurn(that.game)
	if err != nil {
		return TurnResult{Cell: cell, Outcome: outcome}, fmt.Errorf("computer move: %w", err)
	}

	return TurnResult{Accepted: true, Cell: cell, Outcome: outcome}, nil
}

// Play applies the human move and, if the game goes on, the computer's reply.
// computer is nil when no reply was made.
func (that *Session) Play(cell int) (TurnResult, *TurnResult, error) {
	human, err := that.ApplyHumanMove(cell)
	if err != nil || human.Outcome.IsTerminal() {
		return human, nil, err
	}

	computer, err := that.RequestComputerMove()
	if err != nil {
		return human, nil, err
	}

	return human, &computer, nil
}

func (that *Session) Reset() {
	that.game.Reset()
}

func (that *Session) CurrentState() entity.State {
	return that.game.Snapshot()
}
