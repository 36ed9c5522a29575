package models

import "time"

// User is a verified account. Email is stored normalized and is unique.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
