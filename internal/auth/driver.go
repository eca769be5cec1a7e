package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an identity/secret pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Driver is an authenticated driver.
type Driver struct {
	ID   string
	Name string
}

// Verifier checks a driver's credentials against a credential table.
type Verifier interface {
	Verify(ctx context.Context, id, secret string) (Driver, error)
}

// Credential is one row of a credential table. Secret holds either a bcrypt
// hash or, for the in-memory demo table, the plain password.
type Credential struct {
	ID     string
	Secret string
	Name   string
}

// DemoCredentials is the built-in table used by the memory backend.
var DemoCredentials = []Credential{
	{ID: "driver001", Secret: "driver123", Name: "John Smith"},
	{ID: "driver002", Secret: "sarah456", Name: "Sarah Johnson"},
	{ID: "driver003", Secret: "mike789", Name: "Mike Wilson"},
}

// StaticTable is an immutable in-memory credential table.
type StaticTable struct {
	byID map[string]Credential
}

var _ Verifier = (*StaticTable)(nil)

func NewStaticTable(creds []Credential) *StaticTable {
	t := &StaticTable{byID: make(map[string]Credential, len(creds))}
	for _, c := range creds {
		t.byID[c.ID] = c
	}
	return t
}

func (t *StaticTable) Verify(_ context.Context, id, secret string) (Driver, error) {
	c, ok := t.byID[id]
	if !ok || !MatchSecret(c.Secret, secret) {
		return Driver{}, ErrInvalidCredentials
	}
	return Driver{ID: c.ID, Name: c.Name}, nil
}

// HashSecret bcrypt-hashes a password for storage.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

// MatchSecret compares a stored secret with a candidate. Stored values that
// look like bcrypt hashes are compared with bcrypt, anything else in constant time.
func MatchSecret(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
