package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
)

// RequestRematch - records callerID as the rematch requester of a completed game.
// Any caller may request; acceptance is restricted to participants.
func RequestRematch(game *entity.Game, callerID string) error {
	if !game.IsCompleted() {
		return apperror.ErrGameNotCompleted
	}

	if game.RematchPending() {
		return apperror.ErrRematchAlreadyRequested
	}

	game.Rematch = entity.Rematch{RequestedBy: callerID, Accepted: false}

	return nil
}

// AcceptRematch - accepts a pending rematch and resets the same game into a fresh round.
// No rematch state survives the reset.
func AcceptRematch(game *entity.Game, callerID string) error {
	if game.Rematch.RequestedBy == "" {
		return apperror.ErrNoRematchRequested
	}

	if game.Rematch.Accepted {
		return apperror.ErrRematchAlreadyAccepted
	}

	if !game.IsParticipant(callerID) {
		return apperror.ErrNotParticipant
	}

	game.Rematch.Accepted = true
	reset(game)

	return nil
}

func reset(game *entity.Game) {
	game.Moves = []entity.Move{}
	game.Winner = entity.NoWinner
	game.Status = entity.StatusInProgress
	game.Rematch = entity.Rematch{}
}
