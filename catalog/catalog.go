// Package catalog is the CRUD layer over saved study sets. It owns the
// canonical list; the deck holds at most a working copy of one entry's
// contents, and nothing mutates the catalog except an explicit save.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/studydeck/studydeck-api/models"
	"github.com/studydeck/studydeck-api/store"
)

// Catalog lists and edits saved sets through the fallback record store. It
// keeps the last fetched list as a snapshot for the few call sites that must
// read catalog data without awaiting a fetch.
type Catalog struct {
	records store.RecordStore

	mu       sync.Mutex
	snapshot []models.SavedSet
}

func New(records store.RecordStore) *Catalog {
	return &Catalog{records: records}
}

// List fetches all saved sets, newest first, deduplicated for presentation:
// first occurrence per id, then most recent per (title, cardCount) key. The
// dedup only filters the returned list; duplicate rows stay in storage. The
// result also becomes the ListSync snapshot.
func (c *Catalog) List(ctx context.Context) ([]models.SavedSet, error) {
	sets, err := c.records.List(ctx)
	if err != nil {
		return nil, err
	}

	sets = Dedup(sets)

	c.mu.Lock()
	c.snapshot = sets
	c.mu.Unlock()

	return sets, nil
}

// ListSync returns the snapshot from the last List call, empty before the
// first one.
func (c *Catalog) ListSync() []models.SavedSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SavedSet(nil), c.snapshot...)
}

// Get fetches a single saved set by id from a fresh list.
func (c *Catalog) Get(ctx context.Context, id string) (models.SavedSet, bool) {
	sets, err := c.List(ctx)
	if err != nil {
		logrus.WithError(err).Warn("catalog get: list failed")
		return models.SavedSet{}, false
	}
	for _, set := range sets {
		if set.ID == id {
			return set, true
		}
	}
	return models.SavedSet{}, false
}

// Create saves a new set and returns its id. The id is allocated here, once,
// and never reassigned; the time prefix keeps local-only rows orderable when
// no server timestamp exists, the nanoid suffix keeps ids collision-free.
func (c *Catalog) Create(ctx context.Context, title string, cards []models.Card, grouping *models.Grouping, description, testerName string) (string, error) {
	id := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), gonanoid.Must(8))
	set := newRecord(id, title, cards, grouping, description, testerName)
	if err := c.records.Insert(ctx, set); err != nil {
		return "", fmt.Errorf("catalog create: %w", err)
	}
	logrus.WithFields(logrus.Fields{"id": id, "title": title, "cards": len(cards)}).Info("saved set created")
	return id, nil
}

// Update rewrites an existing set in place under the same id. A missing id
// degrades to create in the backing store rather than erroring.
func (c *Catalog) Update(ctx context.Context, id, title string, cards []models.Card, grouping *models.Grouping, description, testerName string) error {
	set := newRecord(id, title, cards, grouping, description, testerName)
	if err := c.records.Update(ctx, id, set); err != nil {
		return fmt.Errorf("catalog update: %w", err)
	}
	logrus.WithFields(logrus.Fields{"id": id, "title": title}).Info("saved set updated")
	return nil
}

// Delete removes a set by id. Deleting an id that no longer exists is not an
// error.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("catalog delete: %w", err)
	}
	logrus.WithField("id", id).Info("saved set deleted")
	return nil
}

// Dedup collapses a raw listing for presentation. Two independent persistence
// paths can race and double-save a set, so the listing keeps the first
// occurrence per id and then the most recent entry per (title, cardCount)
// key. Idempotent; applying it twice changes nothing.
func Dedup(sets []models.SavedSet) []models.SavedSet {
	sorted := append([]models.SavedSet(nil), sets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SavedAt.After(sorted[j].SavedAt)
	})

	sorted = lo.UniqBy(sorted, func(s models.SavedSet) string {
		return s.ID
	})
	return lo.UniqBy(sorted, func(s models.SavedSet) string {
		return fmt.Sprintf("%s-%d", s.Title, s.CardCount)
	})
}

// FlagActive marks the entry matching the currently loaded deck content by
// (title, cardCount). At most one entry is flagged; the first match wins.
func FlagActive(sets []models.SavedSet, title string, cardCount int) {
	if cardCount == 0 {
		return
	}
	for i := range sets {
		if sets[i].Title == title && sets[i].CardCount == cardCount {
			sets[i].Active = true
			return
		}
	}
}

func newRecord(id, title string, cards []models.Card, grouping *models.Grouping, description, testerName string) models.SavedSet {
	return models.SavedSet{
		ID:          id,
		Title:       title,
		TesterName:  testerName,
		CardCount:   len(cards),
		Flashcards:  datatypes.NewJSONSlice(cards),
		Grouping:    datatypes.NewJSONType(grouping),
		Description: description,
		SavedAt:     time.Now(),
	}
}
