package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID             uint64
	Username       string
	Email          string
	CanonicalEmail string
	PasswordHash   string
	IsConfirmed    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EmailConfirmation struct {
	ID         uint64
	UserID     uint64
	Code       string
	CreatedAt  time.Time
	ConsumedAt sql.NullTime
}

// Consumed reports whether the code has already been redeemed.
func (c *EmailConfirmation) Consumed() bool {
	return c.ConsumedAt.Valid
}
