package entity

import "time"

type Role string

const (
	Player1 Role = "Player1"
	Player2 Role = "Player2"
)

type Winner string

const (
	NoWinner      Winner = ""
	WinnerPlayer1 Winner = Winner(Player1)
	WinnerPlayer2 Winner = Winner(Player2)
	WinnerDraw    Winner = "Draw"
)

type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

const (
	BoardSize = 9
	EmptyCell = Role("")
)

type Move struct {
	Position int  `json:"position"`
	Player   Role `json:"player"`
}

type Rematch struct {
	RequestedBy string `json:"requestedBy,omitempty"`
	Accepted    bool   `json:"accepted"`
}

type Game struct {
	ID        string    `json:"id"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Moves     []Move    `json:"moves"`
	Winner    Winner    `json:"winner"`
	Status    Status    `json:"status"`
	Rematch   Rematch   `json:"rematch"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewGame(id, player1, player2 string, now time.Time) *Game {
	return &Game{
		ID:        id,
		Player1:   player1,
		Player2:   player2,
		Moves:     []Move{},
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CurrentRole - the role to move next, derived from the move count.
func (that *Game) CurrentRole() Role {
	if len(that.Moves)%2 == 0 {
		return Player1
	}

	return Player2
}

// ParticipantFor - the user id seated in role.
func (that *Game) ParticipantFor(role Role) string {
	if role == Player1 {
		return that.Player1
	}

	return that.Player2
}

func (that *Game) IsParticipant(userID string) bool {
	return userID != "" && (userID == that.Player1 || userID == that.Player2)
}

func (that *Game) IsCompleted() bool {
	return that.Status == StatusCompleted
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsOccupied(position int) bool {
	for _, move := range that.Moves {
		if move.Position == position {
			return true
		}
	}

	return false
}

func (that *Game) RematchPending() bool {
	return that.Rematch.RequestedBy != "" && !that.Rematch.Accepted
}

// Clone - deep copy of the game, moves included.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Moves = make([]Move, len(that.Moves))
	copy(clone.Moves, that.Moves)

	return &clone
}
