// Package adapter shapes task requests into backend tensors and decodes
// backend tensors into task responses.
package adapter

import (
	"github.com/ekisa-team/lingua/internal/backend"
)

// Backend model names.
const (
	ModelASR             = "asr_am_ensemble"
	ModelASRWithLM       = "asr_am_lm_ensemble"
	ModelTranslation     = "nmt"
	ModelTransliteration = "transliteration"
	ModelTTS             = "tts"
	ModelNER             = "ner"
)

// Tensor names.
const (
	TensorAudioSignal      = "AUDIO_SIGNAL"
	TensorNumSamples       = "NUM_SAMPLES"
	TensorLangID           = "LANG_ID"
	TensorTranscripts      = "TRANSCRIPTS"
	TensorInputText        = "INPUT_TEXT"
	TensorInputLanguageID  = "INPUT_LANGUAGE_ID"
	TensorOutputLanguageID = "OUTPUT_LANGUAGE_ID"
	TensorOutputText       = "OUTPUT_TEXT"
	TensorIsWordLevel      = "IS_WORD_LEVEL"
	TensorTopK             = "TOP_K"
	TensorSpeakerGender    = "INPUT_SPEAKER_GENDER"
	TensorGeneratedAudio   = "OUTPUT_GENERATED_AUDIO"
	TensorOutputTags       = "OUTPUT_TAGS"
)

// Encoded is a model invocation ready for dispatch.
type Encoded struct {
	Model   string
	Inputs  []backend.Tensor
	Outputs []string
}

// Request completes e into a backend request for the given service endpoint.
func (e Encoded) Request(endpoint, apiKey, id string) *backend.Request {
	return &backend.Request{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    e.Model,
		ID:       id,
		Inputs:   e.Inputs,
		Outputs:  e.Outputs,
	}
}

func column(values []string) []int64 {
	return []int64{int64(len(values)), 1}
}

func repeat(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}
