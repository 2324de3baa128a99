package core

import "github.com/google/uuid"

// IdentifierNew returns a fresh opaque identifier for a scene node. Identifiers
// are never reused, so a reloaded scene never aliases ids from a previous one.
func IdentifierNew() string {
	return uuid.NewString()
}

// IdentifierIsValid reports whether id was produced by IdentifierNew.
func IdentifierIsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
