package model

import (
	"time"
)

// User is a login account. Accounts are created by the seed bootstrap only;
// no exposed operation deletes one.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Not exposed
	CreatedAt    time.Time `json:"created_at"`
}
