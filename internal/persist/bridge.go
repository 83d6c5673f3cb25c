package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pagesmith/internal/editor"
)

// Source tells where a loaded document came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	// SourceNone means no document exists and the caller should build the
	// default content.
	SourceNone Source = "none"
)

// Bridge loads from the remote store first and falls back to the local
// cache. Saves go to both. Either store may be nil.
type Bridge struct {
	remote Store
	cache  Store
	logger *zap.Logger

	loads singleflight.Group

	mu    sync.Mutex
	saved map[string]uint64
}

func NewBridge(remote, cache Store, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{remote: remote, cache: cache, logger: logger, saved: map[string]uint64{}}
}

type loaded struct {
	doc *editor.Document
	src Source
}

// Load returns the user's document. A remote failure falls back to the
// cache; when neither has a document it returns SourceNone, with an
// ErrPersistence error if a store failed. Concurrent loads of the same user
// share one request.
func (b *Bridge) Load(ctx context.Context, username string) (*editor.Document, Source, error) {
	v, err, _ := b.loads.Do(username, func() (any, error) {
		return b.load(ctx, username)
	})
	if err != nil {
		return nil, SourceNone, err
	}
	l := v.(loaded)
	return l.doc, l.src, nil
}

func (b *Bridge) load(ctx context.Context, username string) (loaded, error) {
	var remoteErr error
	if b.remote != nil {
		doc, err := b.remote.Load(ctx, username)
		switch {
		case err == nil:
			b.remember(username, doc)
			b.writeCache(ctx, username, doc)
			return loaded{doc, SourceRemote}, nil
		case errors.Is(err, ErrNotFound):
			return loaded{nil, SourceNone}, nil
		default:
			b.logger.Warn("remote load failed, trying cache", zap.String("user", username), zap.Error(err))
			remoteErr = err
		}
	}
	if b.cache != nil {
		doc, err := b.cache.Load(ctx, username)
		switch {
		case err == nil:
			return loaded{doc, SourceCache}, nil
		case errors.Is(err, ErrNotFound):
		default:
			b.logger.Warn("cache load failed", zap.String("user", username), zap.Error(err))
			remoteErr = errors.Join(remoteErr, err)
		}
	}
	if remoteErr != nil {
		return loaded{}, fmt.Errorf("%w: load %s: %w", ErrPersistence, username, remoteErr)
	}
	return loaded{nil, SourceNone}, nil
}

// Save stores doc remotely and in the cache. A document identical to the
// last one saved or loaded for the user is skipped and reported as false.
// A remote failure still updates the cache and is returned. Without a
// remote the cache is the only copy, so its failure is returned too.
func (b *Bridge) Save(ctx context.Context, username string, doc *editor.Document) (bool, error) {
	sum, err := digest(doc)
	if err != nil {
		return false, fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	b.mu.Lock()
	unchanged := b.saved[username] == sum
	b.mu.Unlock()
	if unchanged {
		b.logger.Debug("document unchanged, save skipped", zap.String("user", username))
		return false, nil
	}

	var remoteErr error
	if b.remote != nil {
		remoteErr = b.remote.Save(ctx, username, doc)
	}
	cacheErr := b.writeCache(ctx, username, doc)
	if remoteErr != nil {
		b.logger.Error("remote save failed", zap.String("user", username), zap.Error(remoteErr))
		return false, remoteErr
	}
	if b.remote == nil && b.cache == nil {
		return false, fmt.Errorf("%w: no store configured", ErrPersistence)
	}
	if b.remote == nil && cacheErr != nil {
		return false, fmt.Errorf("%w: save %s: %w", ErrPersistence, username, cacheErr)
	}

	b.mu.Lock()
	b.saved[username] = sum
	b.mu.Unlock()
	b.logger.Info("document saved", zap.String("user", username), zap.Int("components", doc.Len()))
	return true, nil
}

func (b *Bridge) writeCache(ctx context.Context, username string, doc *editor.Document) error {
	if b.cache == nil {
		return nil
	}
	err := b.cache.Save(ctx, username, doc)
	if err != nil {
		b.logger.Warn("cache write failed", zap.String("user", username), zap.Error(err))
	}
	return err
}

func (b *Bridge) remember(username string, doc *editor.Document) {
	sum, err := digest(doc)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.saved[username] = sum
	b.mu.Unlock()
}

func digest(doc *editor.Document) (uint64, error) {
	data, err := doc.Marshal()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
