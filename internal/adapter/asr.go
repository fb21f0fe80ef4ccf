package adapter

import (
	"fmt"
	"strings"

	"github.com/ekisa-team/lingua/internal/audio"
	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/task"
)

// PostProcessorLM selects the acoustic model with language model rescoring.
const PostProcessorLM = "lm"

// ASRModel returns the model variant for cfg.
func ASRModel(cfg task.Config) string {
	if cfg.HasPostProcessor(PostProcessorLM) {
		return ModelASRWithLM
	}
	return ModelASR
}

// ASR encodes one batch of chunks. Waveforms are zero-padded to the
// longest chunk; NUM_SAMPLES carries each true length.
func ASR(batch []audio.Chunk, lang, model string) Encoded {
	maxLen := 0
	for _, c := range batch {
		maxLen = max(maxLen, len(c.Samples))
	}

	signal := make([]float32, len(batch)*maxLen)
	lengths := make([]int32, len(batch))
	for i, c := range batch {
		copy(signal[i*maxLen:], c.Samples)
		lengths[i] = int32(len(c.Samples))
	}

	b := int64(len(batch))

	return Encoded{
		Model: model,
		Inputs: []backend.Tensor{
			backend.FP32Tensor(TensorAudioSignal, []int64{b, int64(maxLen)}, signal),
			backend.INT32Tensor(TensorNumSamples, []int64{b, 1}, lengths),
			backend.BytesTensor(TensorLangID, []int64{b, 1}, repeat(lang, len(batch))...),
		},
		Outputs: []string{TensorTranscripts},
	}
}

// DecodeASR pairs transcripts with the chunks they were produced from.
// Transcripts beyond the batch or chunks without a transcript are dropped.
func DecodeASR(batch []audio.Chunk, resp *backend.Response) ([]audio.Segment, error) {
	texts, err := resp.Strings(TensorTranscripts)
	if err != nil {
		return nil, fmt.Errorf("adapter: decode transcripts: %w", err)
	}

	n := min(len(texts), len(batch))
	segments := make([]audio.Segment, 0, n)
	for i := range n {
		segments = append(segments, audio.Segment{Text: texts[i], Start: batch[i].Start, End: batch[i].End})
	}

	return segments, nil
}

// FormatTranscript renders segments in the requested transcription format.
// Unknown formats fall back to a plain transcript.
func FormatTranscript(segments []audio.Segment, format string) string {
	switch strings.ToLower(format) {
	case task.FormatSRT:
		return strings.TrimSpace(audio.SRT(segments))
	case task.FormatWebVTT:
		return strings.TrimSpace(audio.WebVTT(segments))
	default:
		return audio.Transcript(segments)
	}
}
