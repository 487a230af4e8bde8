package models

import (
	"time"

	"gorm.io/datatypes"
)

// SavedSet represents a persisted study set, one row per set. The same shape is
// stored by the remote database and the local fallback store.
type SavedSet struct {
	ID          string                        `gorm:"primaryKey;size:64" json:"id"`
	Title       string                        `gorm:"not null;size:200" json:"title"`
	TesterName  string                        `gorm:"size:100" json:"testerName"`
	CardCount   int                           `gorm:"not null" json:"cardCount"`
	Flashcards  datatypes.JSONSlice[Card]     `json:"flashcards"`
	Grouping    datatypes.JSONType[*Grouping] `json:"grouping"`
	Description string                        `gorm:"size:1000" json:"description"`
	SavedAt     time.Time                     `gorm:"column:created_at;index" json:"savedAt"`

	// Active marks the entry matching the currently loaded deck. Derived per
	// render, never stored.
	Active bool `gorm:"-" json:"active"`
}

func (SavedSet) TableName() string {
	return "study_sets"
}

// Cards returns the stored flashcards as a plain slice.
func (s SavedSet) Cards() []Card {
	return []Card(s.Flashcards)
}

// GroupingOrNil returns the stored grouping, or nil when none was saved.
func (s SavedSet) GroupingOrNil() *Grouping {
	g := s.Grouping.Data()
	if g == nil || g.IsZero() {
		return nil
	}
	return g
}
