// Package deck owns the in-memory study state: the active deck of cards, the
// navigation cursor, per-card annotations, and the topic grouping derived for
// the deck. It is the single source of truth every view reads from.
package deck

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/studydeck/studydeck-api/models"
	"github.com/studydeck/studydeck-api/store"
)

// Observer is a view-refresh callback. Subscribed observers are invoked after
// every state mutation, outside the state lock.
type Observer func()

// State is the active deck plus its annotations. All methods are safe for
// concurrent use; HTTP handlers run in parallel, unlike the single-threaded
// event loop this state model comes from.
type State struct {
	mu sync.Mutex
	kv store.KeyValue

	title       string
	description string
	testerName  string
	cards       []models.Card
	grouping    models.Grouping

	currentIndex int // -1 when the deck is empty
	starred      map[int]struct{}
	viewed       map[int]struct{}
	hasEngaged   bool

	observers  map[int]Observer
	observerID int
}

// stateBlob is the persisted shape of starred/cursor/engagement state.
type stateBlob struct {
	StarredCards []int `json:"starredCards"`
	CurrentIndex int   `json:"currentIndex"`
	HasEngaged   bool  `json:"hasEngagedWithStudy"`
}

// contentBlob is the persisted shape of the currently loaded set.
type contentBlob struct {
	Title       string           `json:"title"`
	Flashcards  []models.Card    `json:"flashcards"`
	Grouping    *models.Grouping `json:"grouping,omitempty"`
	Description string           `json:"description,omitempty"`
	TesterName  string           `json:"testerName,omitempty"`
	SavedAt     time.Time        `json:"savedAt"`
}

func NewState(kv store.KeyValue) *State {
	return &State{
		kv:           kv,
		currentIndex: -1,
		starred:      make(map[int]struct{}),
		viewed:       make(map[int]struct{}),
		observers:    make(map[int]Observer),
	}
}

// Restore loads the previous session from the key/value store: starred cards
// and engagement first, then the current content, then the viewed set filtered
// to the restored deck's length. The cursor is not restored; every session
// starts at the first card.
func (s *State) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.kv.Get(store.KeyState); ok {
		var blob stateBlob
		if err := json.Unmarshal([]byte(raw), &blob); err != nil {
			logrus.WithError(err).Warn("discarding unreadable state blob")
		} else {
			for _, idx := range blob.StarredCards {
				s.starred[idx] = struct{}{}
			}
			s.hasEngaged = blob.HasEngaged
		}
	}

	if raw, ok := s.kv.Get(store.KeyViewed); ok {
		var viewed []int
		if err := json.Unmarshal([]byte(raw), &viewed); err != nil {
			logrus.WithError(err).Warn("discarding unreadable viewed blob")
		} else {
			for _, idx := range viewed {
				s.viewed[idx] = struct{}{}
			}
		}
	}

	if raw, ok := s.kv.Get(store.KeyContent); ok {
		var blob contentBlob
		if err := json.Unmarshal([]byte(raw), &blob); err != nil {
			logrus.WithError(err).Warn("discarding unreadable content blob")
		} else if len(blob.Flashcards) > 0 {
			s.title = blob.Title
			s.description = blob.Description
			s.testerName = blob.TesterName
			s.cards = blob.Flashcards
			s.currentIndex = 0
			if blob.Grouping != nil {
				s.grouping = *blob.Grouping
			}
		}
	}

	// Stored viewed indices may point past the restored deck.
	s.filterViewedLocked()
	s.persistViewedLocked()
}

// ReplaceDeck swaps in a new deck. The cursor resets to the first card,
// starred cards are cleared, and viewed indices beyond the new length are
// dropped. Viewed indices still in range carry over even though they now name
// different cards; annotations are positional.
func (s *State) ReplaceDeck(cards []models.Card) {
	s.mu.Lock()
	s.cards = append([]models.Card(nil), cards...)
	s.currentIndex = -1
	if len(s.cards) > 0 {
		s.currentIndex = 0
	}
	s.starred = make(map[int]struct{})
	s.filterViewedLocked()
	s.persistStateLocked()
	s.persistViewedLocked()
	s.mu.Unlock()

	s.notify()
}

// AdoptContent attaches set metadata to the current deck and persists the
// whole current-content blob. Called by the import pipeline once the AI
// results (or their fallbacks) are in.
func (s *State) AdoptContent(title string, grouping models.Grouping, description, testerName string) {
	s.mu.Lock()
	s.title = title
	s.grouping = grouping
	s.description = description
	s.testerName = testerName
	s.persistContentLocked()
	s.mu.Unlock()

	s.notify()
}

// LoadSaved makes a catalog entry the active deck: cards, grouping,
// description, and title all come from the stored set, the cursor resets, and
// starred cards are cleared.
func (s *State) LoadSaved(set models.SavedSet) {
	s.mu.Lock()
	s.cards = set.Cards()
	s.currentIndex = -1
	if len(s.cards) > 0 {
		s.currentIndex = 0
	}
	s.starred = make(map[int]struct{})
	s.filterViewedLocked()

	s.title = set.Title
	s.description = set.Description
	s.testerName = set.TesterName
	s.grouping = models.Grouping{}
	if g := set.GroupingOrNil(); g != nil {
		s.grouping = *g
	}

	s.persistContentLocked()
	s.persistStateLocked()
	s.persistViewedLocked()
	s.mu.Unlock()

	s.notify()
}

// Advance moves the cursor by delta with wraparound and returns the new
// index. On an empty deck it is a no-op and returns -1.
func (s *State) Advance(delta int) int {
	s.mu.Lock()
	n := len(s.cards)
	if n == 0 {
		s.mu.Unlock()
		return -1
	}
	s.currentIndex = ((s.currentIndex+delta)%n + n) % n
	idx := s.currentIndex
	s.persistStateLocked()
	s.mu.Unlock()

	s.notify()
	return idx
}

// ToggleStar flips the starred annotation for a card. Out-of-range indices
// are ignored so stale references from a view that missed a deck replace
// cannot corrupt state.
func (s *State) ToggleStar(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.cards) {
		s.mu.Unlock()
		return
	}
	if _, ok := s.starred[index]; ok {
		delete(s.starred, index)
	} else {
		s.starred[index] = struct{}{}
	}
	s.persistStateLocked()
	s.mu.Unlock()

	s.notify()
}

// MarkViewed records that a card has been displayed during a study session
// and flags the session as engaged. Idempotent; out-of-range indices are
// ignored.
func (s *State) MarkViewed(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.cards) {
		s.mu.Unlock()
		return
	}
	_, seen := s.viewed[index]
	changed := !seen || !s.hasEngaged
	s.viewed[index] = struct{}{}
	s.hasEngaged = true
	if changed {
		s.persistViewedLocked()
		s.persistStateLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// IsKnown reports whether a card has been viewed. Known and viewed are the
// same signal; there is no separate spaced-repetition state.
func (s *State) IsKnown(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.viewed[index]
	return ok
}

// ResetProgress clears the viewed set and the engagement flag. Starred cards
// are kept; they are a favorite marker, not study progress.
func (s *State) ResetProgress() {
	s.mu.Lock()
	s.viewed = make(map[int]struct{})
	s.hasEngaged = false
	s.persistViewedLocked()
	s.persistStateLocked()
	s.mu.Unlock()

	s.notify()
}

// ClearCurrent drops the persisted current-content blob. Used when the saved
// set backing the active deck is deleted; the in-memory deck stays usable
// until the next import or load.
func (s *State) ClearCurrent() {
	s.kv.Remove(store.KeyContent)
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

func (s *State) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *State) HasEngaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasEngaged
}

// Current returns the card under the cursor, or false on an empty deck.
func (s *State) Current() (models.Card, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex < 0 || s.currentIndex >= len(s.cards) {
		return models.Card{}, -1, false
	}
	return s.cards[s.currentIndex], s.currentIndex, true
}

// Grouping returns the deck's topic grouping validated against the current
// length, falling back to the single all-cards group so callers never see an
// absent grouping on a non-empty deck.
func (s *State) Grouping() models.Grouping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupingLocked()
}

func (s *State) groupingLocked() models.Grouping {
	if len(s.cards) == 0 {
		return models.Grouping{}
	}
	g := ValidateGrouping(s.grouping, len(s.cards))
	if g.IsZero() {
		return DefaultGrouping(len(s.cards))
	}
	return g
}

// Snapshot is a consistent read of the whole state for rendering.
type Snapshot struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TesterName    string          `json:"testerName"`
	Cards         []models.Card   `json:"cards"`
	CurrentIndex  int             `json:"currentIndex"`
	Starred       []int           `json:"starred"`
	Viewed        []int           `json:"viewed"`
	HasEngaged    bool            `json:"hasEngaged"`
	Grouping      models.Grouping `json:"grouping"`
	GroupProgress []int           `json:"groupProgress"`
	Progress      int             `json:"progress"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	grouping := s.groupingLocked()
	groupProgress := make([]int, len(grouping.Groups))
	for i, g := range grouping.Groups {
		groupProgress[i] = GroupProgress(g, s.viewed)
	}

	return Snapshot{
		Title:         s.title,
		Description:   s.description,
		TesterName:    s.testerName,
		Cards:         append([]models.Card(nil), s.cards...),
		CurrentIndex:  s.currentIndex,
		Starred:       sortedIndices(s.starred),
		Viewed:        sortedIndices(s.viewed),
		HasEngaged:    s.hasEngaged,
		Grouping:      grouping,
		GroupProgress: groupProgress,
		Progress:      DeckProgress(s.viewed, len(s.cards)),
	}
}

// Subscribe registers a view-refresh callback and returns a token for
// Unsubscribe.
func (s *State) Subscribe(fn Observer) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observerID++
	s.observers[s.observerID] = fn
	return s.observerID
}

func (s *State) Unsubscribe(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, token)
}

func (s *State) notify() {
	s.mu.Lock()
	callbacks := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (s *State) filterViewedLocked() {
	valid := make(map[int]struct{}, len(s.viewed))
	for idx := range s.viewed {
		if idx >= 0 && idx < len(s.cards) {
			valid[idx] = struct{}{}
		}
	}
	s.viewed = valid
}

func (s *State) persistStateLocked() {
	blob := stateBlob{
		StarredCards: sortedIndices(s.starred),
		CurrentIndex: s.currentIndex,
		HasEngaged:   s.hasEngaged,
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		logrus.WithError(err).Warn("marshal state blob failed")
		return
	}
	s.kv.Set(store.KeyState, string(raw))
}

func (s *State) persistViewedLocked() {
	raw, err := json.Marshal(sortedIndices(s.viewed))
	if err != nil {
		logrus.WithError(err).Warn("marshal viewed blob failed")
		return
	}
	s.kv.Set(store.KeyViewed, string(raw))
}

func (s *State) persistContentLocked() {
	blob := contentBlob{
		Title:       s.title,
		Flashcards:  s.cards,
		Description: s.description,
		TesterName:  s.testerName,
		SavedAt:     time.Now(),
	}
	if !s.grouping.IsZero() {
		g := s.grouping
		blob.Grouping = &g
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		logrus.WithError(err).Warn("marshal content blob failed")
		return
	}
	s.kv.Set(store.KeyContent, string(raw))
}

func sortedIndices(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
