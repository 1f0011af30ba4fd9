package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rematch/testing/suite"
)

const (
	playerA = "player-a"
	playerB = "player-b"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Create(ctx context.Context, game *entity.Game) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameRepo) Update(ctx context.Context, game *entity.Game) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) ListByParticipant(ctx context.Context, userID string) ([]*entity.Game, error) {
	args := that.Called(ctx, userID)
	games, _ := args.Get(0).([]*entity.Game)
	return games, args.Error(1)
}

func newGameUseCase(t *testing.T) (context.Context, GameUseCase, repository.GameRepository) {
	t.Helper()

	ctx, st := suite.New(t)
	gameRepo := repository.NewGameRepository(st.Storage)

	return ctx, NewGameUseCase(st.Logger, gameRepo), gameRepo
}

func play(ctx context.Context, t *testing.T, uc GameUseCase, gameID string, moves ...int) *entity.Game {
	t.Helper()

	var (
		game *entity.Game
		err  error
	)

	for i, position := range moves {
		caller := playerA
		if i%2 == 1 {
			caller = playerB
		}

		game, err = uc.MakeMove(ctx, caller, gameID, position)
		require.NoError(t, err, "move %d at %d", i, position)
	}

	return game
}

func assertWinnerInvariant(t *testing.T, game *entity.Game) {
	t.Helper()

	assert.Equal(t, game.IsCompleted(), game.Winner != entity.NoWinner,
		"status %q winner %q", game.Status, game.Winner)
}

func TestGameUseCase_Start(t *testing.T) {
	t.Run("Creates an in-progress game", func(t *testing.T) {
		ctx, uc, gameRepo := newGameUseCase(t)

		// When: A starts a game against B
		game, err := uc.Start(ctx, playerA, playerB)

		// Then: the game is stored in progress with A as Player1
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, playerA, game.Player1)
		assert.Equal(t, playerB, game.Player2)
		assert.Empty(t, game.Moves)
		assert.Equal(t, entity.StatusInProgress, game.Status)
		assert.Equal(t, entity.Rematch{}, game.Rematch)
		assertWinnerInvariant(t, game)

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game.ID, stored.ID)
	})

	t.Run("Error on missing opponent", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		game, err := uc.Start(ctx, playerA, "")

		require.ErrorIs(t, err, apperror.ErrInvalidInput)
		assert.Nil(t, game)
	})

	t.Run("Error on missing caller", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		_, err := uc.Start(ctx, "", playerB)

		require.ErrorIs(t, err, apperror.ErrMissingParticipant)
	})

	t.Run("Storage failure is surfaced", func(t *testing.T) {
		// Given: a store that fails to create
		repo := &mockGameRepo{}
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(apperror.Storage("create game", errRedisDown)).
			Once()
		uc := NewGameUseCase(suite.Logger(), repo)

		// When: a game is started
		_, err := uc.Start(context.Background(), playerA, playerB)

		// Then: the storage error is returned as-is
		require.ErrorIs(t, err, apperror.ErrStorage)
		require.ErrorIs(t, err, errRedisDown)
		repo.AssertExpectations(t)
	})
}

func TestGameUseCase_MakeMove(t *testing.T) {
	t.Run("Player1 wins on the top row", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		// Given: Start(A, B)
		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		// When: A 0, B 4, A 1, B 5, A 2
		game = play(ctx, t, uc, game.ID, 0, 4, 1, 5, 2)

		// Then: the game is completed with Player1 as the winner
		assert.Equal(t, entity.StatusCompleted, game.Status)
		assert.Equal(t, entity.WinnerPlayer1, game.Winner)
		assert.Len(t, game.Moves, 5)
	})

	t.Run("Draw on a full board", func(t *testing.T) {
		ctx, uc, gameRepo := newGameUseCase(t)

		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		game = play(ctx, t, uc, game.ID, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		assert.Equal(t, entity.StatusCompleted, game.Status)
		assert.Equal(t, entity.WinnerDraw, game.Winner)

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.WinnerDraw, stored.Winner)
		assert.Equal(t, int64(10), stored.Version)
	})

	t.Run("Winner invariant holds after every move", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		for i, position := range []int{4, 0, 8, 2, 1, 7, 6, 3, 5} {
			caller := playerA
			if i%2 == 1 {
				caller = playerB
			}

			game, err = uc.MakeMove(ctx, caller, game.ID, position)
			require.NoError(t, err)
			assertWinnerInvariant(t, game)
		}
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		_, err := uc.MakeMove(ctx, playerA, "missing", 0)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Wrong turn is forbidden and leaves the stored game unchanged", func(t *testing.T) {
		ctx, uc, gameRepo := newGameUseCase(t)

		// Given: a game where A has played
		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)
		play(ctx, t, uc, game.ID, 0)

		before, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)

		// When: A tries to play again
		_, err = uc.MakeMove(ctx, playerA, game.ID, 1)

		// Then: Forbidden is returned and nothing was persisted
		require.ErrorIs(t, err, apperror.ErrForbidden)

		after, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Occupied cell is invalid input", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)
		play(ctx, t, uc, game.ID, 0)

		_, err = uc.MakeMove(ctx, playerB, game.ID, 0)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Completed game rejects moves", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)
		play(ctx, t, uc, game.ID, 0, 4, 1, 5, 2)

		_, err = uc.MakeMove(ctx, playerB, game.ID, 8)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Concurrent moves apply exactly once", func(t *testing.T) {
		ctx, uc, gameRepo := newGameUseCase(t)

		// Given: a fresh game
		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		// When: A submits several different first moves at once
		const attempts = 8

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)

		for position := 0; position < attempts; position++ {
			wg.Add(1)
			go func(position int) {
				defer wg.Done()

				if _, err := uc.MakeMove(ctx, playerA, game.ID, position); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				} else {
					kind := apperror.KindOf(err)
					assert.True(t, kind == apperror.ErrConflict || kind == apperror.ErrForbidden, err.Error())
				}
			}(position)
		}
		wg.Wait()

		// Then: exactly one move is stored
		assert.Equal(t, 1, successes)

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Moves, 1)
	})

	t.Run("Storage failure on update is surfaced", func(t *testing.T) {
		// Given: a store that loads a game but fails to save it
		repo := &mockGameRepo{}
		game := entity.NewGame("g1", playerA, playerB, time.Now())
		repo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(apperror.Storage("update game", errRedisDown)).
			Once()
		uc := NewGameUseCase(suite.Logger(), repo)

		// When: a move is made
		result, err := uc.MakeMove(context.Background(), playerA, "g1", 4)

		// Then: the storage error is returned and no game is handed back
		require.ErrorIs(t, err, apperror.ErrStorage)
		assert.Nil(t, result)
		repo.AssertExpectations(t)
	})
}

func TestGameUseCase_History(t *testing.T) {
	ctx, uc, _ := newGameUseCase(t)

	// Given: A plays B twice and C plays B once
	first, err := uc.Start(ctx, playerA, playerB)
	require.NoError(t, err)
	second, err := uc.Start(ctx, playerB, playerA)
	require.NoError(t, err)
	_, err = uc.Start(ctx, "player-c", playerB)
	require.NoError(t, err)

	// When: A's history is fetched
	games, err := uc.History(ctx, playerA)

	// Then: both of A's games are present
	require.NoError(t, err)
	ids := make([]string, 0, len(games))
	for _, game := range games {
		ids = append(ids, game.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	t.Run("Empty for a stranger", func(t *testing.T) {
		games, err := uc.History(ctx, "stranger")

		require.NoError(t, err)
		assert.Empty(t, games)
	})
}

func TestGameUseCase_Rematch(t *testing.T) {
	startCompleted := func(t *testing.T) (context.Context, GameUseCase, *entity.Game) {
		t.Helper()

		ctx, uc, _ := newGameUseCase(t)
		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		return ctx, uc, play(ctx, t, uc, game.ID, 0, 4, 1, 5, 2)
	}

	t.Run("Request, accept, reset", func(t *testing.T) {
		// Given: a game completed with winner Player1
		ctx, uc, game := startCompleted(t)
		require.Equal(t, entity.WinnerPlayer1, game.Winner)

		// When: B requests a rematch
		requested, err := uc.RequestRematch(ctx, playerB, game.ID)

		// Then: B is the pending requester
		require.NoError(t, err)
		assert.Equal(t, entity.Rematch{RequestedBy: playerB, Accepted: false}, requested.Rematch)

		status, err := uc.RematchStatus(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Rematch{RequestedBy: playerB}, status)

		// When: A accepts
		reset, err := uc.AcceptRematch(ctx, playerA, game.ID)

		// Then: the same game is back in progress with no moves, winner or requester
		require.NoError(t, err)
		assert.Equal(t, game.ID, reset.ID)
		assert.Empty(t, reset.Moves)
		assert.Equal(t, entity.NoWinner, reset.Winner)
		assert.Equal(t, entity.StatusInProgress, reset.Status)
		assert.Empty(t, reset.Rematch.RequestedBy)
		assertWinnerInvariant(t, reset)

		fetched, err := uc.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, reset.Moves, fetched.Moves)
		assert.Equal(t, entity.StatusInProgress, fetched.Status)

		// And: the new round is playable from Player1
		_, err = uc.MakeMove(ctx, playerA, game.ID, 4)
		require.NoError(t, err)
	})

	t.Run("Request on a game in progress is invalid state", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)
		game, err := uc.Start(ctx, playerA, playerB)
		require.NoError(t, err)

		_, err = uc.RequestRematch(ctx, playerA, game.ID)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Second request conflicts", func(t *testing.T) {
		ctx, uc, game := startCompleted(t)
		_, err := uc.RequestRematch(ctx, playerB, game.ID)
		require.NoError(t, err)

		_, err = uc.RequestRematch(ctx, playerA, game.ID)

		require.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("Accept without request is invalid state", func(t *testing.T) {
		ctx, uc, game := startCompleted(t)

		_, err := uc.AcceptRematch(ctx, playerA, game.ID)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Accept by outsider is forbidden", func(t *testing.T) {
		ctx, uc, game := startCompleted(t)
		_, err := uc.RequestRematch(ctx, playerB, game.ID)
		require.NoError(t, err)

		_, err = uc.AcceptRematch(ctx, "player-c", game.ID)

		require.ErrorIs(t, err, apperror.ErrForbidden)

		status, err := uc.RematchStatus(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, playerB, status.RequestedBy)
	})

	t.Run("Unknown game is not found", func(t *testing.T) {
		ctx, uc, _ := newGameUseCase(t)

		for name, call := range map[string]func() error{
			"request": func() error { _, err := uc.RequestRematch(ctx, playerA, "missing"); return err },
			"accept":  func() error { _, err := uc.AcceptRematch(ctx, playerA, "missing"); return err },
			"status":  func() error { _, err := uc.RematchStatus(ctx, "missing"); return err },
			"get":     func() error { _, err := uc.GetGame(ctx, "missing"); return err },
		} {
			require.ErrorIs(t, call(), apperror.ErrNotFound, fmt.Sprintf("%s on a missing game", name))
		}
	})
}
