package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"name"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	Provider     *string   `db:"provider" json:"provider,omitempty"`
	ProviderID   *string   `db:"provider_id" json:"-"`
	AvatarURL    *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
}
