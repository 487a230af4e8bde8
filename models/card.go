package models

// Card is a single term/definition pair. Cards are immutable values; a deck is
// only ever replaced wholesale, never patched card by card.
type Card struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
