// Package task defines the finite set of inference task types and the
// request/response shapes exchanged by the single-task path and the pipeline.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned when a task type string is not recognised.
var ErrUnknownType = errors.New("unknown task type")

// Type is an inference task type. Values outside the declared constants are
// rejected by Parse and UnmarshalJSON, so Match never sees them.
type Type string

const (
	ASR             Type = "asr"
	Translation     Type = "translation"
	Transliteration Type = "transliteration"
	TTS             Type = "tts"
	NER             Type = "ner"
)

// All lists every task type in declaration order.
func All() []Type {
	return []Type{ASR, Translation, Transliteration, TTS, NER}
}

// Parse converts s into a Type.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// UnmarshalJSON validates the task type while decoding.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// Visitor handles every task type. Adding a task type adds a method here,
// which breaks every implementation until it handles the new case.
type Visitor[R any] interface {
	VisitASR() R
	VisitTranslation() R
	VisitTransliteration() R
	VisitTTS() R
	VisitNER() R
}

// Match dispatches t to the matching Visitor method.
func Match[R any](t Type, v Visitor[R]) R {
	switch t {
	case ASR:
		return v.VisitASR()
	case Translation:
		return v.VisitTranslation()
	case Transliteration:
		return v.VisitTransliteration()
	case TTS:
		return v.VisitTTS()
	case NER:
		return v.VisitNER()
	}
	panic(fmt.Sprintf("task: unparsed task type %q", string(t)))
}
