package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/pkg"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// TurnReport is the result of a full turn: the human move, the computer's
// reply if one was made, and the state afterwards.
type TurnReport struct {
	Human    TurnResult   `json:"human"`
	Computer *TurnResult  `json:"computer,omitempty"`
	State    entity.State `json:"state"`
}

// GameManager hosts many sessions, one per stored game.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	bot      botService

	locks *gameLocks
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		bot:      bot,
		locks:    newGameLocks(),
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (entity.State, error) {
	game := entity.NewGame(pkg.GenerateGameID())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return entity.State{}, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Debug("game created", "gameID", game.ID)

	return game.Snapshot(), nil
}

func (that *GameManager) GetState(ctx context.Context, gameID string) (entity.State, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return entity.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game.Snapshot(), nil
}

// MakeTurn plays the human move on cell and lets the computer reply.
// A rejected move is returned as a report with Human.Accepted false
// together with the rejection error; nothing is stored in that case.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, cell int) (*TurnReport, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", gameID)

	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	session := NewSession(game, that.bot)

	human, computer, err := session.Play(cell)
	report := &TurnReport{Human: human, Computer: computer, State: session.CurrentState()}

	if err != nil {
		if !human.Accepted {
			log.Debug("move rejected", "cell", cell, "error", err)
			return report, err
		}

		return nil, err
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if report.State.Outcome.IsTerminal() {
		log.Info("game finished", "outcome", report.State.Outcome.String())
	}

	return report, nil
}

// RequestComputerMove asks the computer to move on its own turn.
func (that *GameManager) RequestComputerMove(ctx context.Context, gameID string) (TurnResult, entity.State, error) {
	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return TurnResult{}, entity.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	session := NewSession(game, that.bot)

	result, err := session.RequestComputerMove()
	if err != nil {
		return result, session.CurrentState(), err
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return TurnResult{}, entity.State{}, fmt.Errorf("failed to update game: %w", err)
	}

	return result, session.CurrentState(), nil
}

func (that *GameManager) ResetGame(ctx context.Context, gameID string) (entity.State, error) {
	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return entity.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	session := NewSession(game, that.bot)
	session.Reset()

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return entity.State{}, fmt.Errorf("failed to update game: %w", err)
	}

	return session.CurrentState(), nil
}

func (that *GameManager) DeleteGame(ctx context.Context, gameID string) error {
	unlock := that.locks.lock(gameID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Debug("game deleted", "gameID", gameID)

	return nil
}

// gameLocks serializes calls per game id.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[string]*gameLock)}
}

func (that *gameLocks) lock(id string) func() {
	that.mu.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &gameLock{}
		that.locks[id] = l
	}
	l.refs++
	that.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}
