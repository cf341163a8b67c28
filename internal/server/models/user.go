// Package models contains persistence-level data structures shared by
// repositories and services.
package models

import "time"

// User is a stored identity record. PasswordHash holds the bcrypt hash of
// the account secret and is never serialized into API responses.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
