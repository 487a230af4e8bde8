// Package store provides the persistence layer: a record store for saved study
// sets with a remote-first/local-fallback composition, and a synchronous
// key/value store for session state blobs.
package store

import (
	"context"
	"errors"

	"github.com/studydeck/studydeck-api/models"
)

// ErrNotFound is returned when a record id does not exist in the target store.
var ErrNotFound = errors.New("record not found")

// RecordStore persists saved study sets. Both the remote database and the
// local fallback implement it; callers normally use the Fallback composition
// rather than either backend directly.
type RecordStore interface {
	List(ctx context.Context) ([]models.SavedSet, error)
	Insert(ctx context.Context, set models.SavedSet) error
	Update(ctx context.Context, id string, set models.SavedSet) error
	Delete(ctx context.Context, id string) error
}

// KeyValue is synchronous local-only persistence for small state blobs.
// Writes never fail from the caller's perspective; storage errors are logged
// and swallowed.
type KeyValue interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Keys for the locally persisted state blobs.
const (
	KeyContent      = "flashcard_content" // currently loaded set: title, cards, grouping, description, testerName
	KeyState        = "flashcard_state"   // starred indices, cursor, engagement flag
	KeyViewed       = "study_viewed"      // viewed card indices
	KeyPreferences  = "view_preferences"  // per-view sort/filter/mode settings
	KeyCacheVersion = "cache_version"     // schema version marker for the keys above
)
