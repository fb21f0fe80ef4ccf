package adapter

import (
	"fmt"
	"strings"

	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/task"
)

// NormalizeTranslationInput flattens newlines and trims s. Empty input
// becomes a single space, which the model accepts.
func NormalizeTranslationInput(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return " "
	}
	return s
}

// Translation encodes texts for the nmt model. Texts must already be normalized.
func Translation(texts []string, lang task.Language) Encoded {
	src := LanguageID(lang.SourceLanguage, lang.SourceScriptCode)
	tgt := LanguageID(lang.TargetLanguage, lang.TargetScriptCode)
	shape := column(texts)

	return Encoded{
		Model: ModelTranslation,
		Inputs: []backend.Tensor{
			backend.BytesTensor(TensorInputText, shape, texts...),
			backend.BytesTensor(TensorInputLanguageID, shape, repeat(src, len(texts))...),
			backend.BytesTensor(TensorOutputLanguageID, shape, repeat(tgt, len(texts))...),
		},
		Outputs: []string{TensorOutputText},
	}
}

// DecodeTranslation pairs each source text with its translation. Sources
// without a translation in the response are dropped.
func DecodeTranslation(sources []string, resp *backend.Response) (*task.TranslationResponse, error) {
	targets, err := resp.Strings(TensorOutputText)
	if err != nil {
		return nil, fmt.Errorf("adapter: decode translation: %w", err)
	}

	n := min(len(sources), len(targets))
	out := &task.TranslationResponse{Output: make([]task.TextPair, 0, n)}
	for i := range n {
		out.Output = append(out.Output, task.TextPair{Source: sources[i], Target: targets[i]})
	}

	return out, nil
}
