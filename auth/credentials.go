// Package auth checks request credentials against the flat user table.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"little-realm/server/errs"
)

// CredentialTable authenticates a user acting as one of their characters.
type CredentialTable interface {
	Authenticate(username, password, character string) error
}

// Account is one row of the user table. Password is either plain text or a
// bcrypt hash.
type Account struct {
	Password   string   `json:"password"`
	Characters []string `json:"characters"`
}

// Table is an in-memory CredentialTable keyed by username.
type Table struct {
	accounts map[string]Account
}

// NewTable builds a table from accounts.
func NewTable(accounts map[string]Account) *Table {
	return &Table{accounts: accounts}
}

// LoadFile reads a users.json file of the form
// {"user": {"password": "...", "characters": ["Name"]}}.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user table %s: %w", path, err)
	}
	var accounts map[string]Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parse user table %s: %w", path, err)
	}
	return NewTable(accounts), nil
}

// Authenticate fails with AuthError unless the password matches and the
// character belongs to the user. The message never says which check failed.
func (t *Table) Authenticate(username, password, character string) error {
	invalid := errs.New(errs.AuthError, "Credentials invalid")

	account, ok := t.accounts[username]
	if !ok {
		return invalid
	}
	if !passwordMatches(account.Password, password) {
		return invalid
	}
	for _, c := range account.Characters {
		if c == character {
			return nil
		}
	}
	return invalid
}

func passwordMatches(stored, given string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword returns a bcrypt hash suitable for the user table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
