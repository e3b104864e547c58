package apperror

import (
	"errors"
	"fmt"
)

// Rejection categories. Every move rejection wraps exactly one of them.
var (
	ErrInvalidMove = errors.New("invalid move")
	ErrWrongTurn   = errors.New("wrong turn")
)

var (
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrInvalidMove)
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", ErrWrongTurn)

	ErrSearchNotAllowed = errors.New("computer move requested out of turn")
	ErrGameNotFound     = errors.New("game not found")
)
