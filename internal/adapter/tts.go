package adapter

import (
	"fmt"
	"strings"

	"github.com/ekisa-team/lingua/internal/backend"
)

// NormalizeTTSInput replaces the danda with a full stop and trims s.
func NormalizeTTSInput(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "।", "."))
}

// TTS encodes one normalized, non-empty text for the tts model.
func TTS(text, gender, lang string) Encoded {
	shape := []int64{1, 1}

	return Encoded{
		Model: ModelTTS,
		Inputs: []backend.Tensor{
			backend.BytesTensor(TensorInputText, shape, text),
			backend.BytesTensor(TensorSpeakerGender, shape, gender),
			backend.BytesTensor(TensorInputLanguageID, shape, lang),
		},
		Outputs: []string{TensorGeneratedAudio},
	}
}

// DecodeTTS returns the generated waveform at the backend's native rate.
// An absent output yields an empty waveform.
func DecodeTTS(resp *backend.Response) ([]float32, error) {
	samples, err := resp.Float32s(TensorGeneratedAudio)
	if err != nil {
		return nil, fmt.Errorf("adapter: decode generated audio: %w", err)
	}
	return samples, nil
}
