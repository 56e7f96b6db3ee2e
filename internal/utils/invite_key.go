package utils

import "github.com/google/uuid"

// GenerateInviteKey returns a random (version 4) UUID in its 36-character
// canonical form. Collisions are detected by the unique index on
// organizations.invite_key.
func GenerateInviteKey() string {
	return uuid.NewString()
}
