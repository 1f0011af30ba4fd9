package pkg

import "github.com/google/uuid"

// GenerateID - generates a new random identifier for games and users.
func GenerateID() string {
	return uuid.NewString()
}
