package models

// Group is a named topic covering a subset of deck positions.
type Group struct {
	Title       string `json:"title"`
	CardIndices []int  `json:"cardIndices"`
}

// Grouping is an ordered partition of a deck into topic groups. Card indices
// are positional and are range-checked against the current deck before use,
// never trusted as stored.
type Grouping struct {
	Groups []Group `json:"groups"`
}

// IsZero reports whether the grouping carries no groups at all.
func (g Grouping) IsZero() bool {
	return len(g.Groups) == 0
}
