package pipeline

import (
	"sync/atomic"

	"github.com/ekisa-team/lingua/internal/config"
	"github.com/ekisa-team/lingua/internal/task"
)

// Selector picks a service for stages that do not name one. The table can
// be swapped at runtime on config reload.
type Selector struct {
	table atomic.Pointer[config.AutoSelectConfig]
}

// NewSelector creates a selector over table.
func NewSelector(table config.AutoSelectConfig) *Selector {
	s := &Selector{}
	s.Update(table)
	return s
}

// Update replaces the selection table.
func (s *Selector) Update(table config.AutoSelectConfig) {
	s.table.Store(&table)
}

// Select returns the service for a stage of type t in source language
// lang, or "" when none is configured.
func (s *Selector) Select(t task.Type, lang string) string {
	return task.Match[config.Selection](t, selection{s.table.Load()}).Pick(lang)
}

type selection struct {
	table *config.AutoSelectConfig
}

func (s selection) VisitASR() config.Selection             { return s.table.ASR }
func (s selection) VisitTranslation() config.Selection     { return s.table.Translation }
func (s selection) VisitTransliteration() config.Selection { return s.table.Transliteration }
func (s selection) VisitTTS() config.Selection             { return s.table.TTS }
func (s selection) VisitNER() config.Selection             { return s.table.NER }
