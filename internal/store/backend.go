// Package store is the synchronization layer: a versioned key/value medium
// shared by every client, plus change notifications to the clients that did
// not make the change.
package store

import (
	"context"
	"errors"
	"time"
)

// Logical keys of the shared medium.
const (
	KeyChallenges = "challenges"
	KeyMatches    = "matches"
)

var (
	// ErrConflict is returned by Backend.Put when the stored version moved on
	// since it was read.
	ErrConflict = errors.New("store: version conflict")
	// ErrUnavailable marks a medium that cannot be reached.
	ErrUnavailable = errors.New("store: storage unavailable")
)

// Entry is one stored value. A key that was never written has Version 0.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte
	Version   int64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}

// Backend persists entries. Put is a compare-and-swap on the version: it
// succeeds only if the stored version still equals expected, and stores the
// value under expected+1.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, value []byte, expected int64) (Entry, error)
	Versions(ctx context.Context, keys []string) (map[string]int64, error)
}
