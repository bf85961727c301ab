package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the single operator account that unlocks the dashboard.
// Only a bcrypt hash of the password is kept.
type Credentials struct {
	username string
	hash     []byte
}

func NewCredentials(username, password string, cost int) (*Credentials, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &Credentials{username: username, hash: hash}, nil
}

func (c *Credentials) Username() string { return c.username }

func (c *Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
