package registry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ekisa-team/lingua/internal/config"
	"github.com/ekisa-team/lingua/internal/task"
)

// Source is the authoritative store of descriptors. Implementations return
// ErrNotFound (possibly wrapped) when an id is unknown.
type Source interface {
	FindService(ctx context.Context, id string) (*ServiceDescriptor, error)
	FindModel(ctx context.Context, id string) (*ModelDescriptor, error)
}

type staticTables struct {
	services map[string]*ServiceDescriptor
	models   map[string]*ModelDescriptor
}

// StaticSource serves descriptors declared in the registry section of the
// config file. Load swaps the tables atomically on config reload.
type StaticSource struct {
	tables atomic.Pointer[staticTables]
}

// NewStaticSource creates a source from cfg.
func NewStaticSource(cfg config.RegistryConfig) (*StaticSource, error) {
	s := &StaticSource{}
	if err := s.Load(cfg); err != nil {
		return nil, err
	}

	return s, nil
}

// Load replaces the source's descriptors with those in cfg.
func (s *StaticSource) Load(cfg config.RegistryConfig) error {
	tables := &staticTables{
		services: make(map[string]*ServiceDescriptor, len(cfg.Services)),
		models:   make(map[string]*ModelDescriptor, len(cfg.Models)),
	}

	for id, m := range cfg.Models {
		t, err := task.Parse(m.Task)
		if err != nil {
			return fmt.Errorf("registry: model %q: %w", id, err)
		}

		langs := make([]LanguagePair, 0, len(m.Languages))
		for _, l := range m.Languages {
			langs = append(langs, LanguagePair{Source: l.Source, Target: l.Target})
		}

		tables.models[id] = &ModelDescriptor{
			ID:        id,
			Name:      m.Name,
			Version:   m.Version,
			Task:      t,
			Languages: langs,
			Metadata:  m.Metadata,
		}
	}

	for id, svc := range cfg.Services {
		tables.services[id] = &ServiceDescriptor{
			ID:       id,
			Name:     svc.Name,
			Endpoint: svc.Endpoint,
			APIKey:   svc.APIKey,
			ModelID:  svc.ModelID,
		}
	}

	s.tables.Store(tables)
	return nil
}

// FindService returns the service with the given id.
func (s *StaticSource) FindService(_ context.Context, id string) (*ServiceDescriptor, error) {
	svc, ok := s.tables.Load().services[id]
	if !ok {
		return nil, fmt.Errorf("service %q: %w", id, ErrNotFound)
	}

	c := *svc
	return &c, nil
}

// FindModel returns the model with the given id.
func (s *StaticSource) FindModel(_ context.Context, id string) (*ModelDescriptor, error) {
	m, ok := s.tables.Load().models[id]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", id, ErrNotFound)
	}

	return m.clone(), nil
}
