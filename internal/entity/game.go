package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Mark is the content of a single cell.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Board is a 3x3 board stored row-major.
type Board [BoardSize]Mark

// WinCombos lists every line of three that wins the game.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// EmptyCells returns the indexes of the empty cells in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that Board) Count(mark Mark) int {
	n := 0
	for _, cell := range that {
		if cell == mark {
			n++
		}
	}
	return n
}

// IsValid reports whether the board could appear in a game where X moves first.
func (that Board) IsValid() bool {
	x, o := that.Count(PlayerX), that.Count(PlayerO)
	if x+o+that.Count(EmptyCell) != BoardSize {
		return false
	}
	return x == o || x == o+1
}

// Evaluate derives the outcome of a board. Winning lines are checked before
// the board-full check, so a full board with a line is a win, never a tie.
func Evaluate(board *Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome(a)
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == EmptyCell {
			return OutcomeOngoing
		}
	}

	return OutcomeTie
}

// Game is the authoritative state of one session.
type Game struct {
	ID     string `json:"id"`
	Board  Board  `json:"board"`
	Turn   Mark   `json:"player_turn"`
	Status string `json:"status"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Turn:   PlayerX,
		Status: StatusOngoing,
	}
}

func (that *Game) IsActive() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// ApplyMove places mark on cell. A rejected move leaves the game untouched.
func (that *Game) ApplyMove(cell int, mark Mark) error {
	if !that.IsActive() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = mark

	return nil
}

func (that *Game) AdvanceTurn() {
	that.Turn = that.Turn.Opponent()
}

// Reset clears the board and hands the first move back to X.
func (that *Game) Reset() {
	that.Board = Board{}
	that.Turn = PlayerX
	that.Status = StatusOngoing
}

// MakeTurn applies a move and advances the state machine: a terminal result
// finishes the game, anything else passes the turn to the opponent.
func (that *Game) MakeTurn(mark Mark, cell int) (Outcome, error) {
	if err := that.ApplyMove(cell, mark); err != nil {
		return Evaluate(&that.Board), err
	}

	outcome := Evaluate(&that.Board)
	if outcome.IsTerminal() {
		that.Status = StatusFinished
		return outcome, nil
	}

	that.AdvanceTurn()

	return outcome, nil
}

// Snapshot returns a read-only copy of the game for rendering.
func (that *Game) Snapshot() State {
	return State{
		ID:            that.ID,
		Board:         that.Board,
		CurrentPlayer: that.Turn,
		IsActive:      that.IsActive(),
		Outcome:       Evaluate(&that.Board),
	}
}

// State is what a presentation layer sees of a game.
type State struct {
	ID            string  `json:"id"`
	Board         Board   `json:"board"`
	CurrentPlayer Mark    `json:"current_player"`
	IsActive      bool    `json:"is_active"`
	Outcome       Outcome `json:"outcome"`
}
