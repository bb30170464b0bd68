package entity

import "time"

// User is an account allowed to call the API. An empty PasswordHash marks an
// account that cannot log in with a password.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	DateJoined   time.Time
}

// Token is the single API key issued to a user on first login.
type Token struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}
