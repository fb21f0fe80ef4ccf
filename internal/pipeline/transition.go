package pipeline

import (
	"fmt"
	"slices"

	"github.com/ekisa-team/lingua/internal/task"
)

// successors lists the task types that may follow each task type.
type successors struct{}

func (successors) VisitASR() []task.Type {
	return []task.Type{task.Translation}
}

func (successors) VisitTranslation() []task.Type {
	return []task.Type{task.TTS}
}

func (successors) VisitTransliteration() []task.Type {
	return []task.Type{task.Translation, task.TTS}
}

func (successors) VisitTTS() []task.Type { return nil }

func (successors) VisitNER() []task.Type { return nil }

// Successors returns the task types that may follow t.
func Successors(t task.Type) []task.Type {
	return task.Match[[]task.Type](t, successors{})
}

// CanFollow reports whether a stage of type next may consume the output of
// a stage of type prev.
func CanFollow(prev, next task.Type) bool {
	return slices.Contains(Successors(prev), next)
}

// Validate checks a whole stage sequence before anything runs.
func Validate(stages []Stage) error {
	if len(stages) == 0 {
		return ErrEmptyPipeline
	}

	for i := 1; i < len(stages); i++ {
		prev, next := stages[i-1], stages[i]
		if !CanFollow(prev.TaskType, next.TaskType) {
			return fmt.Errorf("%w: stage %d (%s) cannot follow %s", ErrInvalidTransition, i, next.TaskType, prev.TaskType)
		}
		if prev.TaskType == task.Transliteration && !prev.Config.SentenceLevel() {
			return fmt.Errorf("%w: stage %d", ErrWordLevelTransliteration, i-1)
		}
	}

	return nil
}
