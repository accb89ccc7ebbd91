package domain

import "time"

// User models a portal account as held by the credential store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the only user shape that leaves the service.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Public projects the user onto its client-visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username}
}

// Claims returns the identity claims embedded in tokens minted for u.
func (u *User) Claims() Claims {
	return Claims{ID: u.ID, Email: u.Email, Username: u.Username}
}

// Claims is the identity bundle carried by access and refresh tokens.
type Claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session is the result of a successful login, registration or refresh.
// RefreshToken is empty for refreshes; the stored token is not rotated.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         PublicUser
}
