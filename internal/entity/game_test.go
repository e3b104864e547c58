package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = PlayerX
	o = PlayerO
	e = EmptyCell
)

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// Then: it should be finished and not active
		assert.True(t, game.IsFinished())
		assert.False(t, game.IsActive())
	})

	t.Run("IsActive returns true when game status is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// Then: it should be active
		assert.True(t, game.IsActive())
		assert.False(t, game.IsFinished())
	})
}

func TestNewGame(t *testing.T) {
	// When: a new game is created
	game := NewGame("123")

	// Then: the board is empty, X moves and the game is active
	expected := &Game{
		ID:     "123",
		Board:  Board{e, e, e, e, e, e, e, e, e},
		Turn:   PlayerX,
		Status: StatusOngoing,
	}
	require.Equal(t, expected, game)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  Outcome
	}{
		{
			name:  "top row X",
			board: Board{x, x, x, o, o, e, e, e, e},
			want:  OutcomeX,
		},
		{
			name:  "full board without a line",
			board: Board{x, o, x, o, x, o, o, x, o},
			want:  OutcomeTie,
		},
		{
			name:  "main diagonal X",
			board: Board{x, e, e, e, x, e, e, e, x},
			want:  OutcomeX,
		},
		{
			name:  "anti diagonal O",
			board: Board{x, x, o, e, o, e, o, x, e},
			want:  OutcomeO,
		},
		{
			name:  "middle column O",
			board: Board{x, o, e, x, o, e, e, o, x},
			want:  OutcomeO,
		},
		{
			name:  "empty board",
			board: Board{},
			want:  OutcomeOngoing,
		},
		{
			name:  "in progress",
			board: Board{x, o, x, e, o, e, x, e, e},
			want:  OutcomeOngoing,
		},
		{
			name:  "full board with a line is a win, not a tie",
			board: Board{x, x, x, o, o, x, x, o, o},
			want:  OutcomeX,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(&tt.board))
		})
	}
}

func TestGame_MakeTurn(t *testing.T) {
	t.Run("MakeTurn", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: player X makes a turn
		outcome, err := game.MakeTurn(PlayerX, 0)
		require.NoError(t, err)

		// Then: the cell is taken, the turn passes to O and the game continues
		expected := &Game{
			ID:     "123",
			Board:  Board{x, e, e, e, e, e, e, e, e},
			Turn:   PlayerO,
			Status: StatusOngoing,
		}
		require.Equal(t, expected, game)
		assert.Equal(t, OutcomeOngoing, outcome)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where X has taken cell 0
		game := NewGame("123")
		_, err := game.MakeTurn(PlayerX, 0)
		require.NoError(t, err)
		before := *game

		// When: player O tries to move to the same cell
		_, err = game.MakeTurn(PlayerO, 0)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.Equal(t, before, *game)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: player O tries to move first
		_, err := game.MakeTurn(PlayerO, 1)

		// Then: ErrNotYourTurn is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.ErrorIs(t, err, apperror.ErrWrongTurn)
		require.Equal(t, NewGame("123"), game)
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		for _, cell := range []int{-1, 9, 20} {
			game := NewGame("123")

			_, err := game.MakeTurn(PlayerX, cell)

			assert.ErrorIs(t, err, apperror.ErrInvalidCell)
			assert.Equal(t, NewGame("123"), game)
		}
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: X is one move away from the top row
		game := NewGame("123")
		game.Board = Board{x, x, e, o, o, e, e, e, e}

		// When: X completes the line
		outcome, err := game.MakeTurn(PlayerX, 2)

		// Then: X wins, the game is finished and the turn stays with X
		require.NoError(t, err)
		assert.Equal(t, OutcomeX, outcome)
		assert.Equal(t, PlayerX, outcome.Winner())
		assert.True(t, game.IsFinished())
		assert.Equal(t, PlayerX, game.Turn)
	})

	t.Run("Last cell without a line is a tie", func(t *testing.T) {
		// Given: one empty cell left that completes no line
		game := NewGame("123")
		game.Board = Board{x, o, x, o, x, o, o, x, e}
		game.Turn = PlayerO

		// When: O fills it
		outcome, err := game.MakeTurn(PlayerO, 8)

		// Then: the game ends in a tie
		require.NoError(t, err)
		assert.Equal(t, OutcomeTie, outcome)
		assert.Equal(t, EmptyCell, outcome.Winner())
		assert.True(t, game.IsFinished())
	})

	t.Run("Move After Game Finished", func(t *testing.T) {
		// Given: a game where X has already won
		game := NewGame("123")
		game.Board = Board{x, x, x, e, o, e, e, o, e}
		game.Status = StatusFinished
		game.Turn = PlayerO
		before := *game

		// When: O tries to move
		_, err := game.MakeTurn(PlayerO, 3)

		// Then: ErrGameFinished is returned and the board is untouched
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, *game)
	})
}

func TestGame_Reset(t *testing.T) {
	// Given: a finished game where O was last to move
	game := NewGame("123")
	game.Board = Board{o, o, o, x, x, e, x, e, e}
	game.Turn = PlayerO
	game.Status = StatusFinished

	// When: the game is reset
	game.Reset()

	// Then: it is back to the initial state and keeps its id
	require.Equal(t, NewGame("123"), game)
}

func TestGame_Snapshot(t *testing.T) {
	game := NewGame("123")
	_, err := game.MakeTurn(PlayerX, 4)
	require.NoError(t, err)

	first := game.Snapshot()
	second := game.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, State{
		ID:            "123",
		Board:         Board{e, e, e, e, x, e, e, e, e},
		CurrentPlayer: PlayerO,
		IsActive:      true,
		Outcome:       OutcomeOngoing,
	}, first)

	// the snapshot is a copy
	first.Board[0] = PlayerO
	assert.Equal(t, EmptyCell, game.Board[0])
}

func TestApplyAndClearRestoresOutcome(t *testing.T) {
	board := Board{x, o, e, e, x, e, o, e, e}
	before := Evaluate(&board)

	for _, cell := range board.EmptyCells() {
		for _, mark := range []Mark{PlayerX, PlayerO} {
			board[cell] = mark
			_ = Evaluate(&board)
			board[cell] = EmptyCell

			assert.Equal(t, before, Evaluate(&board))
		}
	}
}

func hasLine(board *Board, mark Mark) bool {
	for _, combo := range WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}
	return false
}

// walk visits every board reachable from game through legal play.
func walk(t *testing.T, game Game, visit func(*Game)) {
	visit(&game)
	if !game.IsActive() {
		return
	}

	for _, cell := range game.Board.EmptyCells() {
		next := game
		_, err := next.MakeTurn(next.Turn, cell)
		require.NoError(t, err)
		walk(t, next, visit)
	}
}

func TestReachableBoards(t *testing.T) {
	visited := 0

	walk(t, *NewGame("walk"), func(game *Game) {
		visited++
		board := &game.Board

		// at most one winner
		xWins, oWins := hasLine(board, PlayerX), hasLine(board, PlayerO)
		if xWins && oWins {
			t.Fatalf("both marks have a line on %v", *board)
		}

		// a win is reported only for a monochromatic line
		outcome := Evaluate(board)
		switch outcome {
		case OutcomeX:
			require.True(t, xWins)
		case OutcomeO:
			require.True(t, oWins)
		default:
			require.False(t, xWins || oWins)
		}

		// X moves first, so counts differ by at most one
		require.True(t, board.IsValid(), "invalid counts on %v", *board)

		// terminal boards and finished games coincide
		require.Equal(t, outcome.IsTerminal(), game.IsFinished())
	})

	// 549946 nodes in the full tic-tac-toe game tree, root included
	assert.Equal(t, 549946, visited)
}

func TestBoard_Helpers(t *testing.T) {
	board := Board{x, e, o, e, x, e, e, e, e}

	assert.Equal(t, []int{1, 3, 5, 6, 7, 8}, board.EmptyCells())
	assert.Equal(t, 2, board.Count(PlayerX))
	assert.Equal(t, 1, board.Count(PlayerO))
	assert.True(t, board.IsValid())

	invalid := Board{o, o, e, e, e, e, e, e, e}
	assert.False(t, invalid.IsValid())
}

func TestBoard_HelpersOnSnapshot(t *testing.T) {
	// Given: a game with one move each
	game := NewGame("g1")
	_, err := game.MakeTurn(PlayerX, 0)
	require.NoError(t, err)
	_, err = game.MakeTurn(PlayerO, 4)
	require.NoError(t, err)

	// Then: the helpers work straight off a returned snapshot
	assert.Equal(t, []int{1, 2, 3, 5, 6, 7, 8}, game.Snapshot().Board.EmptyCells())
	assert.Equal(t, 1, game.Snapshot().Board.Count(PlayerX))
	assert.Equal(t, 1, game.Snapshot().Board.Count(PlayerO))
	assert.True(t, game.Snapshot().Board.IsValid())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Player X Won", OutcomeX.String())
	assert.Equal(t, "Player O Won", OutcomeO.String())
	assert.Equal(t, "Tie", OutcomeTie.String())
	assert.Equal(t, "Ongoing", OutcomeOngoing.String())
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
}
