package articulation

import (
	"math"
	"strings"
	"unicode"

	"Cadence/internal/domain"
)

// span is a half-open rune range of the working text plus the kind of the
// boundary that closed it.
type span struct {
	start, end int
	kind       domain.BoundaryKind
}

// Segmenter partitions response text into delivery-sized segments. It is a
// pure function of its inputs and safe for concurrent use.
type Segmenter struct {
	cfg       SegmentationConfig
	terminals map[rune]struct{}
	marks     [][]rune // clause marks; a split keeps them with the left half
	words     [][]rune // connective words; a split starts the right half
}

// NewSegmenter copies and validates the configuration eagerly.
func NewSegmenter(cfg SegmentationConfig) (*Segmenter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Segmenter{
		cfg:       cfg,
		terminals: make(map[rune]struct{}, len(cfg.TerminalMarks)),
	}
	for _, r := range cfg.TerminalMarks {
		s.terminals[r] = struct{}{}
	}
	for _, entry := range cfg.Connectives {
		if isMarkEntry(entry) {
			s.marks = append(s.marks, []rune(entry))
		} else {
			s.words = append(s.words, []rune(entry))
		}
	}
	return s, nil
}

// Segment splits text into ordered segments. Empty or whitespace-only input
// yields an empty result; an out-of-range affect state is rejected.
func (s *Segmenter) Segment(text string, affect domain.AffectState) ([]domain.Segment, error) {
	if err := affect.Validate(); err != nil {
		return nil, err
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil, nil
	}

	effMax := s.effectiveMax(affect)

	var spans []span
	for _, sp := range s.primarySplit(runes) {
		spans = append(spans, s.splitLong(runes, sp, effMax)...)
	}
	spans = s.mergeShort(runes, spans)

	segments := make([]domain.Segment, 0, len(spans))
	for _, sp := range spans {
		segText := collapseWhitespace(string(runes[sp.start:sp.end]))
		if segText == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:     segText,
			Ordinal:  len(segments),
			Boundary: sp.kind,
		})
	}
	return segments, nil
}

// primarySplit closes a candidate at every run of terminal marks, keeping
// the marks with the text they end. Whatever trails the last run becomes an
// unterminated tail.
func (s *Segmenter) primarySplit(runes []rune) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(runes) {
		if _, ok := s.terminals[runes[i]]; !ok {
			i++
			continue
		}
		for i < len(runes) {
			if _, ok := s.terminals[runes[i]]; !ok {
				break
			}
			i++
		}
		spans = append(spans, span{start: start, end: i, kind: domain.BoundaryPunctuation})
		start = i
	}
	if start < len(runes) {
		spans = append(spans, span{start: start, end: len(runes), kind: domain.BoundaryLengthLimit})
	}
	return spans
}

// splitLong recursively splits a span exceeding the effective maximum at the
// connective boundary nearest its midpoint, falling back to a hard cut when
// the span contains no boundary at all.
func (s *Segmenter) splitLong(runes []rune, sp span, effMax int) []span {
	if collapsedLen(runes, sp) <= effMax {
		return []span{sp}
	}

	if pos, ok := s.nearestBoundary(runes, sp); ok {
		left := span{start: sp.start, end: pos, kind: domain.BoundaryConnective}
		right := span{start: pos, end: sp.end, kind: sp.kind}
		out := s.splitLong(runes, left, effMax)
		return append(out, s.splitLong(runes, right, effMax)...)
	}

	cut := sp.start + effMax
	left := span{start: sp.start, end: cut, kind: domain.BoundaryForced}
	right := span{start: cut, end: sp.end, kind: sp.kind}
	return append([]span{left}, s.splitLong(runes, right, effMax)...)
}

// nearestBoundary finds the split position closest to the span midpoint:
// after a clause mark, or at the start of a connective word. Ties go to the
// earlier position so results stay deterministic.
func (s *Segmenter) nearestBoundary(runes []rune, sp span) (int, bool) {
	mid := float64(sp.start+sp.end) / 2
	best := -1
	bestDist := math.MaxFloat64

	consider := func(pos int) {
		if pos <= sp.start || pos >= sp.end {
			return
		}
		dist := math.Abs(float64(pos) - mid)
		if dist < bestDist || (dist == bestDist && pos < best) {
			best = pos
			bestDist = dist
		}
	}

	for _, mark := range s.marks {
		for _, idx := range occurrences(runes, sp, mark) {
			consider(idx + len(mark))
		}
	}
	for _, word := range s.words {
		for _, idx := range occurrences(runes, sp, word) {
			consider(idx)
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// occurrences lists every rune index at which entry occurs inside the span.
func occurrences(runes []rune, sp span, entry []rune) []int {
	if len(entry) == 0 || sp.end-sp.start < len(entry) {
		return nil
	}
	var idxs []int
	for i := sp.start; i+len(entry) <= sp.end; i++ {
		match := true
		for j, r := range entry {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// mergeShort folds segments shorter than the minimum into their following
// neighbor; a short final segment folds backward instead. A genuinely short
// whole input stays a single segment.
func (s *Segmenter) mergeShort(runes []rune, spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	out := make([]span, 0, len(spans))
	cur := spans[0]
	for _, next := range spans[1:] {
		if collapsedLen(runes, cur) < s.cfg.MinSegmentLength {
			cur = span{start: cur.start, end: next.end, kind: next.kind}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	if collapsedLen(runes, cur) < s.cfg.MinSegmentLength && len(out) > 0 {
		last := out[len(out)-1]
		out[len(out)-1] = span{start: last.start, end: cur.end, kind: cur.kind}
		return out
	}
	return append(out, cur)
}

// effectiveMax shrinks the configured maximum toward the minimum when the
// state signals hesitancy. Negative arousal and negative dominance each
// contribute; the effects add and the result never drops below the minimum.
func (s *Segmenter) effectiveMax(affect domain.AffectState) int {
	hesitancy := 0.0
	if affect.Arousal < 0 {
		hesitancy -= affect.Arousal
	}
	if affect.Dominance < 0 {
		hesitancy -= affect.Dominance
	}
	if hesitancy == 0 {
		return s.cfg.MaxSegmentLength
	}
	width := float64(s.cfg.MaxSegmentLength - s.cfg.MinSegmentLength)
	eff := int(math.Round(float64(s.cfg.MaxSegmentLength) - width*hesitancy))
	if eff < s.cfg.MinSegmentLength {
		return s.cfg.MinSegmentLength
	}
	return eff
}

// collapsedLen is the rune length of the span text after trimming and
// collapsing whitespace runs, the same measure materialized segments use.
func collapsedLen(runes []rune, sp span) int {
	n := 0
	pendingGap := false
	for i := sp.start; i < sp.end; i++ {
		if unicode.IsSpace(runes[i]) {
			pendingGap = n > 0
			continue
		}
		if pendingGap {
			n++
			pendingGap = false
		}
		n++
	}
	return n
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
