// Package persist moves editor documents between the editor and storage:
// a SQL table for the local cache and server side, the two profile
// endpoints for the remote side, and a Bridge that combines them.
package persist

import (
	"context"
	"errors"

	"pagesmith/internal/editor"
)

var (
	// ErrNotFound means the user has no saved document yet.
	ErrNotFound = errors.New("no saved document")
	// ErrPersistence wraps every load or save failure.
	ErrPersistence = errors.New("persistence failure")
)

// Store loads and saves one document per user.
type Store interface {
	Load(ctx context.Context, username string) (*editor.Document, error)
	Save(ctx context.Context, username string, doc *editor.Document) error
}
