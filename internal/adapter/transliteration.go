package adapter

import (
	"fmt"
	"math"
	"strings"

	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/task"
)

// DefaultSuggestions is the candidate count requested when none is configured.
const DefaultSuggestions = 5

// NormalizeTransliterationInput flattens newlines and trims s.
func NormalizeTransliterationInput(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// Transliteration encodes one normalized, non-empty text for the
// transliteration model.
func Transliteration(text string, cfg task.Config) Encoded {
	shape := []int64{1, 1}

	k := cfg.NumSuggestions
	if k <= 0 {
		k = DefaultSuggestions
	}

	return Encoded{
		Model: ModelTransliteration,
		Inputs: []backend.Tensor{
			backend.BytesTensor(TensorInputText, shape, text),
			backend.BytesTensor(TensorInputLanguageID, shape, cfg.Language.SourceLanguage),
			backend.BytesTensor(TensorOutputLanguageID, shape, cfg.Language.TargetLanguage),
			backend.BoolTensor(TensorIsWordLevel, shape, !cfg.SentenceLevel()),
			backend.UINT8Tensor(TensorTopK, shape, uint8(min(k, math.MaxUint8))),
		},
		Outputs: []string{TensorOutputText},
	}
}

// DecodeTransliteration returns the ranked candidates for source. An absent
// output yields no candidates.
func DecodeTransliteration(source string, resp *backend.Response) (task.TransliterationPair, error) {
	candidates, err := resp.Strings(TensorOutputText)
	if err != nil {
		return task.TransliterationPair{}, fmt.Errorf("adapter: decode transliteration: %w", err)
	}

	return task.TransliterationPair{Source: source, Target: nonNilStrings(candidates)}, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
