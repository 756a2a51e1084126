package models

import "time"

// User is a stored account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"-"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"-"`
}

// SerializedUser is the public view of a User. It is what registration
// returns and what tokens carry as their user claim.
type SerializedUser struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Serialize drops everything but the non-secret profile fields.
func (u User) Serialize() SerializedUser {
	return SerializedUser{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
