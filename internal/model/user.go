package model

import "time"

// User represents a row of the `users` table. Wallet is a non-negative
// balance changed only by reward, clear and purchase operations.
type User struct {
	ID           uint64    `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Wallet       float64   `json:"wallet"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the public view of a user used in listings.
type UserSummary struct {
	ID       uint64 `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Nickname: u.Nickname, Email: u.Email}
}
