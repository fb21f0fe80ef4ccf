package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/task"
)

// NER encodes texts for the ner model.
func NER(texts []string, lang string) Encoded {
	shape := column(texts)

	return Encoded{
		Model: ModelNER,
		Inputs: []backend.Tensor{
			backend.BytesTensor(TensorInputText, shape, texts...),
			backend.BytesTensor(TensorLangID, shape, repeat(lang, len(texts))...),
		},
		Outputs: []string{TensorOutputTags},
	}
}

// DecodeNER parses one JSON entity list per source text.
func DecodeNER(sources []string, resp *backend.Response) (*task.NERResponse, error) {
	tags, err := resp.Strings(TensorOutputTags)
	if err != nil {
		return nil, fmt.Errorf("adapter: decode ner tags: %w", err)
	}

	n := min(len(sources), len(tags))
	out := &task.NERResponse{Output: make([]task.NEROutput, 0, n)}
	for i := range n {
		entities := []task.Entity{}
		if tags[i] != "" {
			if err := json.Unmarshal([]byte(tags[i]), &entities); err != nil {
				return nil, fmt.Errorf("adapter: decode ner tags of input %d: %w", i, err)
			}
		}
		out.Output = append(out.Output, task.NEROutput{Source: sources[i], NERPrediction: entities})
	}

	return out, nil
}
