package users

import "time"

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the redacted projection returned by auth endpoints.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
