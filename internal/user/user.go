// Package user defines the identity model used throughout the application.
// A User is only ever constructed through New, which hashes the plaintext
// password before the record can reach any storage backend.
package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultLocation is assigned when a registering user omits the location field.
const DefaultLocation = "India"

// User represents a registered identity, uniquely keyed by email.
// PasswordHash is never serialized to JSON and is only populated on
// read paths that explicitly request the secret.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
}

// New builds a User from profile fields and a plaintext password.
// The plaintext is bcrypt-hashed here and discarded; it is never stored.
func New(name, lastName, email, location, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if location == "" {
		location = DefaultLocation
	}

	return &User{
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		Location:     location,
	}, nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Sanitized returns a copy of the user with the password hash stripped,
// suitable for inclusion in API responses.
func (u *User) Sanitized() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	return &sanitized
}
