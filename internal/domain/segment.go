package domain

// BoundaryKind records what ended a segment.
type BoundaryKind string

const (
	// BoundaryPunctuation marks a segment closed by sentence-terminal punctuation.
	BoundaryPunctuation BoundaryKind = "punctuation"
	// BoundaryConnective marks a length-driven split at a clause mark or connective word.
	BoundaryConnective BoundaryKind = "connective"
	// BoundaryForced marks a hard cut at the effective maximum length.
	BoundaryForced BoundaryKind = "forced"
	// BoundaryLengthLimit marks a trailing segment closed by the input running
	// out before any terminal mark.
	BoundaryLengthLimit BoundaryKind = "length_limit"
)

// Segment is one delivery-sized piece of a response, in original text order.
type Segment struct {
	Text     string
	Ordinal  int
	Boundary BoundaryKind
}
