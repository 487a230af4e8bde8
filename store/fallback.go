package store

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/models"
)

// Fallback composes the remote record store with the local one: every
// operation tries the remote first and, on any failure, retries against the
// local store. Remote failures are logged and never surfaced to callers, so
// from above this looks like a single store that degrades to local-only
// persistence. A nil remote runs local-only from the start.
type Fallback struct {
	remote RecordStore
	local  RecordStore
}

func NewFallback(remote, local RecordStore) *Fallback {
	return &Fallback{remote: remote, local: local}
}

func (f *Fallback) List(ctx context.Context) ([]models.SavedSet, error) {
	if f.remote != nil {
		sets, err := f.remote.List(ctx)
		if err == nil {
			return sets, nil
		}
		logrus.WithError(err).Warn("remote list failed, using local store")
	}
	return f.local.List(ctx)
}

func (f *Fallback) Insert(ctx context.Context, set models.SavedSet) error {
	if f.remote != nil {
		err := f.remote.Insert(ctx, set)
		if err == nil {
			return nil
		}
		logrus.WithError(err).Warn("remote insert failed, using local store")
	}
	return f.local.Insert(ctx, set)
}

// Update writes through to the remote store when possible. When the write
// lands on the local store and the id is missing there, the update degrades to
// an insert rather than failing.
func (f *Fallback) Update(ctx context.Context, id string, set models.SavedSet) error {
	if f.remote != nil {
		if err := f.remote.Update(ctx, id, set); err == nil {
			return nil
		} else {
			logrus.WithError(err).Warn("remote update failed, using local store")
		}
	}
	err := f.local.Update(ctx, id, set)
	if errors.Is(err, ErrNotFound) {
		set.ID = id
		return f.local.Insert(ctx, set)
	}
	return err
}

// Delete always removes the id from the local store as well, so a record
// deleted remotely cannot resurface from a stale local copy.
func (f *Fallback) Delete(ctx context.Context, id string) error {
	if f.remote != nil {
		if err := f.remote.Delete(ctx, id); err != nil {
			logrus.WithError(err).Warn("remote delete failed, using local store")
		}
	}
	return f.local.Delete(ctx, id)
}
