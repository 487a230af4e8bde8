// Package importer turns raw pasted text into a live deck: it parses
// tab-separated cards, asks the AI collaborator for a topic grouping and a
// description in parallel, and commits the result to the deck and the catalog
// with deterministic fallbacks when the collaborator fails.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/studydeck/studydeck-api/ai"
	"github.com/studydeck/studydeck-api/catalog"
	"github.com/studydeck/studydeck-api/deck"
	"github.com/studydeck/studydeck-api/models"
)

// ErrNoCards is returned when the pasted text yields zero valid cards. It is
// the one import failure surfaced to the user; nothing is committed.
var ErrNoCards = errors.New("could not parse any flashcards from the content")

// DefaultTitle names an import submitted without a title.
const DefaultTitle = "Imported Set"

// Collaborator is the slice of the AI client the pipeline needs.
type Collaborator interface {
	GroupFlashcards(ctx context.Context, cards []models.Card) ai.GroupResult
	GenerateDescription(ctx context.Context, title string, cards []models.Card) ai.DescriptionResult
}

type Pipeline struct {
	deck    *deck.State
	catalog *catalog.Catalog
	ai      Collaborator
}

func New(deckState *deck.State, cat *catalog.Catalog, collaborator Collaborator) *Pipeline {
	return &Pipeline{deck: deckState, catalog: cat, ai: collaborator}
}

// Request is one import submission. A non-empty EditingID rewrites that saved
// set in place instead of creating a new one.
type Request struct {
	Title      string
	Text       string
	TesterName string
	EditingID  string
}

// Result is the committed outcome of an import.
type Result struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	CardCount   int             `json:"cardCount"`
	Grouping    models.Grouping `json:"grouping"`
	GroupedByAI bool            `json:"groupedByAI"`
	Description string          `json:"description"`
}

// Import runs the pipeline. The parsed card list is captured up front and
// used throughout, even if the deck changes underneath a slow collaborator
// call; concurrent imports are not coordinated, last commit wins.
func (p *Pipeline) Import(ctx context.Context, req Request) (Result, error) {
	cards := ParseCards(req.Text)
	if len(cards) == 0 {
		return Result{}, ErrNoCards
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}

	p.deck.ReplaceDeck(cards)
	logrus.WithFields(logrus.Fields{"title": title, "cards": len(cards)}).Info("imported deck, requesting AI grouping")

	// Grouping and description are independent requests; run both to
	// completion and let each fail on its own.
	var groupResult ai.GroupResult
	var descResult ai.DescriptionResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		groupResult = p.ai.GroupFlashcards(gctx, cards)
		return nil
	})
	g.Go(func() error {
		descResult = p.ai.GenerateDescription(gctx, title, cards)
		return nil
	})
	_ = g.Wait()

	grouping := deck.DefaultGrouping(len(cards))
	groupedByAI := false
	if groupResult.Success && groupResult.Grouping != nil && !groupResult.Grouping.IsZero() {
		grouping = *groupResult.Grouping
		groupedByAI = true
	} else if groupResult.Error != "" {
		logrus.WithField("error", groupResult.Error).Warn("AI grouping failed, using default grouping")
	}

	description := descResult.Description
	if !descResult.Success || description == "" {
		description = FallbackDescription(len(cards))
	}

	// Only an AI-produced grouping is persisted; the default grouping is
	// re-derived from the deck at render time, not stored.
	var groupingRef *models.Grouping
	adopted := models.Grouping{}
	if groupedByAI {
		groupingRef = &grouping
		adopted = grouping
	}
	p.deck.AdoptContent(title, adopted, description, req.TesterName)

	id := req.EditingID
	if id == "" {
		created, err := p.catalog.Create(ctx, title, cards, groupingRef, description, req.TesterName)
		if err != nil {
			return Result{}, err
		}
		id = created
	} else {
		if err := p.catalog.Update(ctx, id, title, cards, groupingRef, description, req.TesterName); err != nil {
			return Result{}, err
		}
	}

	return Result{
		ID:          id,
		Title:       title,
		CardCount:   len(cards),
		Grouping:    grouping,
		GroupedByAI: groupedByAI,
		Description: description,
	}, nil
}

// ParseCards parses pasted study text: one card per non-empty line, term and
// definition separated by a tab. Extra tabs fold into the definition; lines
// without a pair, or with an empty term or definition after trimming, are
// dropped.
func ParseCards(text string) []models.Card {
	var cards []models.Card
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		term, definition, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		term = strings.TrimSpace(term)
		definition = strings.TrimSpace(definition)
		if term == "" || definition == "" {
			continue
		}

		cards = append(cards, models.Card{Term: term, Definition: definition})
	}
	return cards
}

// FallbackDescription is the deterministic description adopted when the
// collaborator cannot provide one.
func FallbackDescription(cardCount int) string {
	return fmt.Sprintf("A study set with %d terms to help you learn and review key concepts.", cardCount)
}
