package articulation

import (
	"Cadence/internal/domain"
)

// MetadataSegmentIndex is the reserved metadata key carrying the ordinal of
// the segment an action was derived from. A caller key of the same name is
// never overwritten.
const MetadataSegmentIndex = "segment_index"

// Articulator turns finished response text plus an affect state into a
// timed action stream: an optional hesitation wait, a typing indicator, and
// the message itself for every segment.
type Articulator struct {
	segmenter *Segmenter
	rhythm    *RhythmEngine
}

// New wires a segmenter and a rhythm engine, validating both configs.
func New(segCfg SegmentationConfig, rhythmCfg RhythmConfig) (*Articulator, error) {
	segmenter, err := NewSegmenter(segCfg)
	if err != nil {
		return nil, err
	}
	rhythm, err := NewRhythmEngine(rhythmCfg)
	if err != nil {
		return nil, err
	}
	return &Articulator{segmenter: segmenter, rhythm: rhythm}, nil
}

// Articulate produces the ordered action sequence for a response. Pure: no
// I/O, no clock, no randomness; identical inputs yield identical sequences.
// Empty text yields an empty sequence.
func (a *Articulator) Articulate(text string, affect domain.AffectState, metadata map[string]any) (domain.ActionSequence, error) {
	segments, err := a.segmenter.Segment(text, affect)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return domain.ActionSequence{}, nil
	}

	seq := make(domain.ActionSequence, 0, len(segments)*3)
	for i, segment := range segments {
		timing, err := a.rhythm.Compute(segment, affect)
		if err != nil {
			return nil, err
		}

		if timing.PreSend > 0 && i > 0 {
			seq = append(seq, domain.ActionEvent{
				Kind:     domain.ActionWait,
				Duration: timing.PreSend,
				Metadata: stampMetadata(metadata, segment.Ordinal),
			})
		}
		seq = append(seq, domain.ActionEvent{
			Kind:     domain.ActionTyping,
			Duration: timing.Typing,
			Metadata: stampMetadata(metadata, segment.Ordinal),
		})
		seq = append(seq, domain.ActionEvent{
			Kind:     domain.ActionMessage,
			Content:  segment.Text,
			Metadata: stampMetadata(metadata, segment.Ordinal),
		})
	}
	return seq, nil
}

// stampMetadata gives each action its own copy of the caller bag plus the
// originating segment ordinal under the reserved key.
func stampMetadata(caller map[string]any, ordinal int) map[string]any {
	meta := make(map[string]any, len(caller)+1)
	for k, v := range caller {
		meta[k] = v
	}
	if _, taken := meta[MetadataSegmentIndex]; !taken {
		meta[MetadataSegmentIndex] = ordinal
	}
	return meta
}
