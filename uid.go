package ical

import "github.com/google/uuid"

// NewUID generates a globally unique component identifier suitable for UID
// (RFC 5545 §3.8.4.7), scoped to domain so identifiers from different
// producers don't collide. Callers that already have a stable identifier
// (a ticket number, a database primary key) should build UID strings
// themselves instead of calling this.
func NewUID(domain string) string {
	return uuid.NewString() + "@" + domain
}
