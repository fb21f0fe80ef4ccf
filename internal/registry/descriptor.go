package registry

import (
	"maps"

	"github.com/ekisa-team/lingua/internal/task"
)

// ServiceDescriptor describes a deployed inference service: the backend
// endpoint that serves it and the model it runs.
type ServiceDescriptor struct {
	ID       string
	Name     string
	Endpoint string
	APIKey   string
	ModelID  string
}

// LanguagePair is a language combination a model supports. Target is empty
// for single-language tasks.
type LanguagePair struct {
	Source string `json:"source"`
	Target string `json:"target,omitempty"`
}

// ModelDescriptor describes a model and the task it performs.
type ModelDescriptor struct {
	ID        string
	Name      string
	Version   string
	Task      task.Type
	Languages []LanguagePair
	Metadata  map[string]any
}

// Supports reports whether the model lists the given language pair. A model
// without declared languages supports every pair.
func (m *ModelDescriptor) Supports(source, target string) bool {
	if len(m.Languages) == 0 {
		return true
	}

	for _, l := range m.Languages {
		if l.Source == source && (l.Target == "" || target == "" || l.Target == target) {
			return true
		}
	}

	return false
}

func (m *ModelDescriptor) clone() *ModelDescriptor {
	c := *m
	c.Languages = append([]LanguagePair(nil), m.Languages...)
	c.Metadata = maps.Clone(m.Metadata)
	return &c
}
