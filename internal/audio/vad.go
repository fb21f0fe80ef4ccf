package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBounds is returned for chunk bounds that segmentation cannot honor.
var ErrInvalidBounds = errors.New("invalid chunk bounds")

// VADParams configures the energy-based voice activity detector.
type VADParams struct {
	// FrameMs is the analysis frame length.
	FrameMs int
	// Threshold is the frame RMS at or above which a frame is speech.
	Threshold float64
	// MinSilenceMs is the shortest gap that separates two speech spans.
	MinSilenceMs int
	// SpeechPadMs is added to both sides of every speech span.
	SpeechPadMs int
	// MinSpeechMs drops speech spans shorter than this as noise.
	MinSpeechMs int
}

// Bounds are the minimum and maximum chunk durations in seconds.
type Bounds struct {
	Min float64
	Max float64
}

// Validate checks that any speech layout can be chunked within b.
func (b Bounds) Validate() error {
	if b.Min <= 0 || b.Max <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidBounds)
	}
	if b.Min > b.Max/2 {
		return fmt.Errorf("%w: min %.2fs exceeds half of max %.2fs", ErrInvalidBounds, b.Min, b.Max)
	}
	return nil
}

// span is a half-open sample range [start, end).
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

// SegmentSpeech splits mono samples into speech chunks. Chunks are ordered,
// never overlap, cover every detected speech span and last between
// bounds.Min and bounds.Max seconds. The single exception is a buffer
// shorter than bounds.Min, which yields one chunk spanning all of it when
// it contains speech. No detected speech yields no chunks.
func SegmentSpeech(samples []float32, rate int, params VADParams, bounds Bounds) ([]Chunk, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", rate)
	}

	spans := detectSpeech(samples, rate, params)
	if len(spans) == 0 {
		return nil, nil
	}

	n := len(samples)
	minLen := int(bounds.Min * float64(rate))
	maxLen := int(bounds.Max * float64(rate))

	if n < minLen {
		return []Chunk{newChunk(samples, span{0, n}, rate)}, nil
	}

	spans = splitLong(spans, maxLen)
	spans = group(spans, maxLen)
	spans = expand(spans, minLen, n)
	spans = rebalance(spans, minLen, maxLen)

	chunks := make([]Chunk, 0, len(spans))
	for _, s := range spans {
		chunks = append(chunks, newChunk(samples, s, rate))
	}

	return chunks, nil
}

func newChunk(samples []float32, s span, rate int) Chunk {
	return Chunk{
		Samples: samples[s.start:s.end],
		Start:   float64(s.start) / float64(rate),
		End:     float64(s.end) / float64(rate),
	}
}

// detectSpeech returns padded speech spans from frame RMS energy.
func detectSpeech(samples []float32, rate int, p VADParams) []span {
	frame := max(rate*p.FrameMs/1000, 1)
	minSilence := rate * p.MinSilenceMs / 1000
	minSpeech := rate * p.MinSpeechMs / 1000
	pad := rate * p.SpeechPadMs / 1000

	var raw []span
	inSpeech := false
	for start := 0; start < len(samples); start += frame {
		end := min(start+frame, len(samples))

		var energy float64
		for _, s := range samples[start:end] {
			energy += float64(s) * float64(s)
		}
		voiced := math.Sqrt(energy/float64(end-start)) >= p.Threshold

		switch {
		case voiced && !inSpeech:
			raw = append(raw, span{start, end})
			inSpeech = true
		case voiced:
			raw[len(raw)-1].end = end
		default:
			inSpeech = false
		}
	}

	// Close gaps shorter than the minimum silence.
	var merged []span
	for _, s := range raw {
		if len(merged) > 0 && s.start-merged[len(merged)-1].end < minSilence {
			merged[len(merged)-1].end = s.end
			continue
		}
		merged = append(merged, s)
	}

	var out []span
	for _, s := range merged {
		if s.len() < minSpeech {
			continue
		}

		s.start = max(s.start-pad, 0)
		s.end = min(s.end+pad, len(samples))

		if len(out) > 0 && s.start <= out[len(out)-1].end {
			out[len(out)-1].end = max(out[len(out)-1].end, s.end)
			continue
		}
		out = append(out, s)
	}

	return out
}

// splitLong cuts every span longer than maxLen into the fewest equal parts
// that fit. Each part is longer than maxLen/2.
func splitLong(spans []span, maxLen int) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		if s.len() <= maxLen {
			out = append(out, s)
			continue
		}

		parts := (s.len() + maxLen - 1) / maxLen
		for i := range parts {
			out = append(out, span{
				start: s.start + s.len()*i/parts,
				end:   s.start + s.len()*(i+1)/parts,
			})
		}
	}

	return out
}

// group greedily joins consecutive spans, with the silence between them,
// while the result stays within maxLen.
func group(spans []span, maxLen int) []span {
	out := []span{spans[0]}
	for _, s := range spans[1:] {
		cur := &out[len(out)-1]
		if s.end-cur.start <= maxLen {
			cur.end = s.end
			continue
		}
		out = append(out, s)
	}

	return out
}

// expand grows chunks shorter than minLen into the silence around them,
// splitting the growth evenly between both sides where room allows.
func expand(spans []span, minLen, total int) []span {
	for i := range spans {
		need := minLen - spans[i].len()
		if need <= 0 {
			continue
		}

		leftLimit := 0
		if i > 0 {
			leftLimit = spans[i-1].end
		}
		rightLimit := total
		if i+1 < len(spans) {
			rightLimit = spans[i+1].start
		}

		leftRoom := spans[i].start - leftLimit
		rightRoom := rightLimit - spans[i].end

		left := min(need/2, leftRoom)
		right := min(need-left, rightRoom)
		left = min(need-right, leftRoom)

		spans[i].start -= left
		spans[i].end += right
	}

	return spans
}

// rebalance resolves chunks still shorter than minLen after expansion.
// Such a chunk has no silence left on either side, so it shares a boundary
// with a neighbor: the two are merged when they fit in maxLen, otherwise
// the shared boundary moves so the short side reaches minLen.
func rebalance(spans []span, minLen, maxLen int) []span {
	for {
		i := shortIndex(spans, minLen)
		if i < 0 || len(spans) == 1 {
			return spans
		}

		j := -1
		switch {
		case i+1 < len(spans) && spans[i+1].start == spans[i].end:
			j = i + 1
		case i > 0 && spans[i-1].end == spans[i].start:
			j = i - 1
		}
		if j < 0 {
			// Unreachable after expand; leave the chunk short rather than loop.
			return spans
		}

		lo, hi := min(i, j), max(i, j)
		joined := span{spans[lo].start, spans[hi].end}

		if joined.len() <= maxLen {
			spans[lo] = joined
			spans = append(spans[:hi], spans[hi+1:]...)
			continue
		}

		if i < j {
			spans[i].end = spans[i].start + minLen
			spans[j].start = spans[i].end
		} else {
			spans[i].start = spans[i].end - minLen
			spans[j].end = spans[i].start
		}
	}
}

func shortIndex(spans []span, minLen int) int {
	for i, s := range spans {
		if s.len() < minLen {
			return i
		}
	}
	return -1
}
