// Package ledger gives each entity collection a single owner component with
// exclusive read/write access. Ledgers never reach across collections; the
// notepads orchestrator sequences cross-ledger writes.
package ledger

import "errors"

// ErrNotFound is returned when an entity does not exist or is not visible to
// the requesting owner. Owner-scoped lookups deliberately do not distinguish
// "missing" from "owned by someone else".
var ErrNotFound = errors.New("ledger: not found")

// User is an account created on first login from the identity provider.
// Categories and Notepads are denormalized id sets maintained by the
// orchestrator; every id must reference an entity owned by this user.
type User struct {
	ID         string   `bson:"_id" json:"id"`
	ProviderID string   `bson:"providerId" json:"providerId"`
	Name       string   `bson:"name" json:"name"`
	PhotoURL   string   `bson:"photo" json:"photo"`
	Categories []string `bson:"categories" json:"categories"`
	Notepads   []string `bson:"notepads" json:"notepads"`
}

// Category groups notepads for one user. NotepadsCount is denormalized and
// maintained by the orchestrator's call ordering, not enforced by the store;
// it can diverge on partial failure.
type Category struct {
	ID            string `bson:"_id" json:"id"`
	Name          string `bson:"name" json:"name"`
	UserID        string `bson:"user" json:"user"`
	NotepadsCount int    `bson:"notepadsCount" json:"notepadsCount"`
}

// Notepad is the leaf entity. It carries no counters of its own.
type Notepad struct {
	ID         string `bson:"_id" json:"id"`
	Title      string `bson:"title" json:"title"`
	Text       string `bson:"text" json:"text"`
	CategoryID string `bson:"category" json:"category"`
	UserID     string `bson:"user" json:"user"`
}
