package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
)

// WinCombos - rows, columns, diagonals, in evaluation order.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - reconstructs cell occupancy from the move list.
func Board(moves []entity.Move) [entity.BoardSize]entity.Role {
	var board [entity.BoardSize]entity.Role

	for _, move := range moves {
		if move.Position >= 0 && move.Position < entity.BoardSize {
			board[move.Position] = move.Player
		}
	}

	return board
}

// WinningLine - the first line held entirely by one role.
func WinningLine(moves []entity.Move) ([3]int, bool) {
	board := Board(moves)

	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

// Winner - the role holding a full line, if any. Draws are decided by the caller.
func Winner(moves []entity.Move) (entity.Role, bool) {
	line, ok := WinningLine(moves)
	if !ok {
		return entity.EmptyCell, false
	}

	return Board(moves)[line[0]], true
}

// MakeMove - validates and applies one move, completing the game on a win or a full board.
// The game is left untouched when an error is returned.
func MakeMove(game *entity.Game, callerID string, position int) error {
	if game.IsCompleted() {
		return apperror.ErrGameFinished
	}

	if err := validateMove(game, callerID, position); err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	game.Moves = append(game.Moves, entity.Move{Position: position, Player: game.CurrentRole()})
	updateGameStatus(game)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, callerID string, position int) error {
	if position < 0 || position >= entity.BoardSize {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidCell, position)
	}

	if game.IsOccupied(position) {
		return fmt.Errorf("%w: %d", apperror.ErrCellOccupied, position)
	}

	if game.ParticipantFor(game.CurrentRole()) != callerID {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(game *entity.Game) {
	if role, ok := Winner(game.Moves); ok {
		game.Status = entity.StatusCompleted
		game.Winner = entity.Winner(role)
		return
	}

	if len(game.Moves) == entity.BoardSize {
		game.Status = entity.StatusCompleted
		game.Winner = entity.WinnerDraw
	}
}
