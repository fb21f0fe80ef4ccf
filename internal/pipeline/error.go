package pipeline

import "errors"

var (
	// ErrEmptyPipeline is returned for a pipeline without stages.
	ErrEmptyPipeline = errors.New("pipeline has no stages")

	// ErrInvalidTransition is returned when a stage cannot consume the output of its predecessor.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrWordLevelTransliteration is returned when a word-level transliteration feeds another stage.
	ErrWordLevelTransliteration = errors.New("transliteration feeding another stage must be sentence level")

	// ErrNoService is returned when no service is given or configured for a stage.
	ErrNoService = errors.New("no service for stage")
)
