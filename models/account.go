package models

import (
	"strings"
	"time"
)

// AuthOrigin says how an account proves its identity.
type AuthOrigin string

const (
	OriginLocal    AuthOrigin = "LOCAL"
	OriginExternal AuthOrigin = "EXTERNAL_PROVIDER"
)

// Account is one natural person able to authenticate.
//
// A LOCAL account carries a password hash and no subject id; an
// EXTERNAL_PROVIDER account carries a subject id and no password hash.
type Account struct {
	ID           string     `bson:"id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string     `bson:"password_hash,omitempty" json:"-"`
	Origin       AuthOrigin `bson:"origin" json:"origin"`
	SubjectID    string     `bson:"subject_id,omitempty" json:"-"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updatedAt"`
}

// HasPassword reports whether the account can log in locally.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// Consistent checks the origin/credential pairing.
func (a *Account) Consistent() bool {
	switch a.Origin {
	case OriginLocal:
		return a.PasswordHash != "" && a.SubjectID == ""
	case OriginExternal:
		return a.PasswordHash == "" && a.SubjectID != ""
	}
	return false
}

// LinkExternal moves the account to provider-backed login. The local password
// is discarded so the origin/credential pairing stays consistent.
func (a *Account) LinkExternal(subjectID, name string) {
	a.Origin = OriginExternal
	a.SubjectID = subjectID
	a.PasswordHash = ""
	a.Name = name
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ExternalAssertion is a verified identity from the external provider. Only
// these three attributes cross into the identity resolver.
type ExternalAssertion struct {
	Email     string
	Name      string
	SubjectID string
}
