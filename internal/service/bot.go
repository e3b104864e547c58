package service

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// BotMark is the mark the computer plays.
const BotMark = entity.PlayerO

// scores of terminal outcomes from the computer's point of view
var scores = map[entity.Outcome]int{
	entity.OutcomeO:   1,
	entity.OutcomeX:   -1,
	entity.OutcomeTie: 0,
}

type BotService interface {
	MakeTurn(game *entity.Game) (int, entity.Outcome, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// MakeTurn searches for the best cell and plays it as the computer.
func (that *botService) MakeTurn(game *entity.Game) (int, entity.Outcome, error) {
	if !game.IsActive() || game.Turn != BotMark {
		return -1, entity.Evaluate(&game.Board), apperror.ErrSearchNotAllowed
	}

	board := game.Board
	cell := BestMove(&board)

	outcome, err := game.MakeTurn(BotMark, cell)
	if err != nil {
		return -1, outcome, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return cell, outcome, nil
}

// BestMove returns the cell with the strictly greatest minimax score for O.
// The lowest index wins ties. The board is restored before returning.
// A full board has no move and yields -1; callers must not ask for one.
func BestMove(board *entity.Board) int {
	bestScore := math.MinInt
	bestMove := -1

	for i := range board {
		if board[i] != entity.EmptyCell {
			continue
		}

		board[i] = BotMark
		score := minimax(board, 0, false)
		board[i] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			bestMove = i
		}
	}

	return bestMove
}

// minimax scores a board by exhaustive search. Terminal scores are scaled by
// depth+1, depth counting plies from the top-level call. Every hypothetical
// mark is cleared before the call returns.
func minimax(board *entity.Board, depth int, isMaximizing bool) int {
	if result := entity.Evaluate(board); result.IsTerminal() {
		return scores[result] * (depth + 1)
	}

	if isMaximizing {
		bestScore := math.MinInt

		for i := range board {
			if board[i] == entity.EmptyCell {
				board[i] = entity.PlayerO
				bestScore = max(bestScore, minimax(board, depth+1, false))
				board[i] = entity.EmptyCell
			}
		}

		return bestScore
	}

	bestScore := math.MaxInt

	for i := range board {
		if board[i] == entity.EmptyCell {
			board[i] = entity.PlayerX
			bestScore = min(bestScore, minimax(board, depth+1, true))
			board[i] = entity.EmptyCell
		}
	}

	return bestScore
}
