package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/entity"
)

const (
	gameKeyPrefix        = "game:"
	participantKeyPrefix = "player:"
	participantKeySuffix = ":games"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

func participantKey(userID string) string {
	return participantKeyPrefix + userID + participantKeySuffix
}

// Create - stores a new game at version 1 and indexes it under both participants.
func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	stored := *game
	stored.Version = 1

	gameJSON, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	key := gameKey(game.ID)
	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return apperror.Storage("check game", err)
		}

		if exists > 0 {
			return fmt.Errorf("%w: game %s already exists", apperror.ErrConflict, game.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)
			pipe.SAdd(ctx, participantKey(game.Player1), game.ID)
			pipe.SAdd(ctx, participantKey(game.Player2), game.ID)
			return nil
		})

		return err
	}, key)
	if err != nil {
		return mapTxError("create game", err)
	}

	game.Version = stored.Version

	return nil
}

// Update - saves the game if nobody else saved it since it was loaded.
// Returns ErrConcurrentModification on a stale version or a racing write.
func (that *dbGame) Update(ctx context.Context, game *entity.Game) error {
	stored := *game
	stored.Version = game.Version + 1

	gameJSON, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	key := gameKey(game.ID)
	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getGame(ctx, tx, key)
		if err != nil {
			return err
		}

		if current.Version != game.Version {
			return fmt.Errorf("%w: stored version %d, have %d",
				apperror.ErrConcurrentModification, current.Version, game.Version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)
			return nil
		})

		return err
	}, key)
	if err != nil {
		return mapTxError("update game", err)
	}

	game.Version = stored.Version

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return getGame(ctx, that.client, gameKey(id))
}

// ListByParticipant - all games the user is seated in, oldest first.
func (that *dbGame) ListByParticipant(ctx context.Context, userID string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, participantKey(userID)).Result()
	if err != nil {
		return nil, apperror.Storage("list participant games", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperror.Storage("get participant games", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, apperror.Storage("unmarshal game", err)
		}

		games = append(games, &game)
	}

	sort.SliceStable(games, func(i, j int) bool {
		if games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})

	return games, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getGame(ctx context.Context, client getter, key string) (*entity.Game, error) {
	response, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, apperror.Storage("get game", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, apperror.Storage("unmarshal game", err)
	}

	return &existingGame, nil
}

// mapTxError - keeps tagged errors, turns an aborted transaction into a conflict and
// anything else into a storage failure.
func mapTxError(op string, err error) error {
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return apperror.ErrConcurrentModification
	case apperror.KindOf(err) != nil:
		return err
	default:
		return apperror.Storage(op, err)
	}
}
