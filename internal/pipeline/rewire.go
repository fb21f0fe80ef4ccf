package pipeline

import (
	"fmt"

	"github.com/ekisa-team/lingua/internal/task"
)

// edge is a pair of consecutive stage types.
type edge struct {
	from, to task.Type
}

// Rewire turns a stage's output into the payload of the next stage.
type Rewire func(task.Output) (task.Payload, error)

// rewires holds one adapter per allowed transition.
var rewires = map[edge]Rewire{
	{task.ASR, task.Translation}:             typed(transcriptsAsInput),
	{task.Translation, task.TTS}:             typed(translationsAsInput),
	{task.Transliteration, task.Translation}: typed(firstSuggestionAsInput),
	{task.Transliteration, task.TTS}:         typed(firstSuggestionAsInput),
}

func typed[O task.Output](fn func(O) task.Payload) Rewire {
	return func(out task.Output) (task.Payload, error) {
		o, ok := out.(O)
		if !ok {
			return task.Payload{}, fmt.Errorf("pipeline: unexpected %s output %T", out.TaskType(), out)
		}
		return fn(o), nil
	}
}

// RewireFor returns the adapter for the transition from -> to.
func RewireFor(from, to task.Type) (Rewire, bool) {
	r, ok := rewires[edge{from, to}]
	return r, ok
}

// transcriptsAsInput passes ASR text through as text input.
func transcriptsAsInput(out *task.ASRResponse) task.Payload {
	return task.Payload{Input: append([]task.Text(nil), out.Output...)}
}

// translationsAsInput uses each translation's target as the next source.
func translationsAsInput(out *task.TranslationResponse) task.Payload {
	in := make([]task.Text, len(out.Output))
	for i, p := range out.Output {
		in[i] = task.Text{Source: p.Target}
	}
	return task.Payload{Input: in}
}

// firstSuggestionAsInput uses each transliteration's top candidate as the
// next source. Pairs without candidates pass an empty source.
func firstSuggestionAsInput(out *task.TransliterationResponse) task.Payload {
	in := make([]task.Text, len(out.Output))
	for i, p := range out.Output {
		if len(p.Target) > 0 {
			in[i] = task.Text{Source: p.Target[0]}
		}
	}
	return task.Payload{Input: in}
}
