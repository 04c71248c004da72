package models

import "time"

// Session is the authenticated identity and credential held for the current process.
type Session struct {
	User   Farmer     `json:"user"`
	Token  string     `json:"token"`
	Expiry *time.Time `json:"expiry,omitempty"`
}

// UserID returns the id of the logged in farmer.
func (s Session) UserID() int { return s.User.ID }

// DisplayName returns the farmer's name for greetings.
func (s Session) DisplayName() string { return s.User.Name }

// Expired reports whether the token carries an expiry that is already in the past.
func (s Session) Expired(now time.Time) bool {
	return s.Expiry != nil && !now.Before(*s.Expiry)
}

// Credentials is the POST /login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupForm is the POST /signup payload.
type SignupForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}
