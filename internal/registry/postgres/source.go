// Package postgres implements a registry source backed by PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekisa-team/lingua/internal/registry"
	"github.com/ekisa-team/lingua/internal/task"
)

// Source reads service and model descriptors from the services and models tables.
type Source struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to reach database: %w", err)
	}

	return &Source{pool: pool}, nil
}

func (s *Source) Close() {
	s.pool.Close()
}

// Migrate creates the registry tables when they do not exist.
func (s *Source) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS models (
			model_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL DEFAULT '',
			task_type TEXT NOT NULL,
			languages JSONB NOT NULL DEFAULT '[]'::jsonb,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS services (
			service_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			endpoint TEXT NOT NULL,
			api_key TEXT NOT NULL DEFAULT '',
			model_id TEXT NOT NULL REFERENCES models(model_id) ON DELETE RESTRICT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_services_model ON services(model_id);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}

	return nil
}

// FindService returns the service with the given id.
func (s *Source) FindService(ctx context.Context, id string) (*registry.ServiceDescriptor, error) {
	svc := &registry.ServiceDescriptor{ID: id}

	err := s.pool.QueryRow(ctx, `
		SELECT name, endpoint, api_key, model_id
		FROM services
		WHERE service_id = $1`, id,
	).Scan(&svc.Name, &svc.Endpoint, &svc.APIKey, &svc.ModelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("service %q: %w", id, registry.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: query service %q: %w", id, err)
	}

	return svc, nil
}

// FindModel returns the model with the given id.
func (s *Source) FindModel(ctx context.Context, id string) (*registry.ModelDescriptor, error) {
	var (
		taskType  string
		languages []byte
		metadata  []byte
	)
	model := &registry.ModelDescriptor{ID: id}

	err := s.pool.QueryRow(ctx, `
		SELECT name, version, task_type, languages, metadata
		FROM models
		WHERE model_id = $1`, id,
	).Scan(&model.Name, &model.Version, &taskType, &languages, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("model %q: %w", id, registry.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: query model %q: %w", id, err)
	}

	if model.Task, err = task.Parse(taskType); err != nil {
		return nil, fmt.Errorf("postgres: model %q: %w", id, err)
	}

	if err := json.Unmarshal(languages, &model.Languages); err != nil {
		return nil, fmt.Errorf("postgres: decode languages of model %q: %w", id, err)
	}

	if err := json.Unmarshal(metadata, &model.Metadata); err != nil {
		return nil, fmt.Errorf("postgres: decode metadata of model %q: %w", id, err)
	}

	return model, nil
}

// UpsertService inserts or replaces a service row.
func (s *Source) UpsertService(ctx context.Context, svc registry.ServiceDescriptor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO services (service_id, name, endpoint, api_key, model_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (service_id) DO UPDATE
		SET name = EXCLUDED.name,
			endpoint = EXCLUDED.endpoint,
			api_key = EXCLUDED.api_key,
			model_id = EXCLUDED.model_id,
			updated_at = NOW()`,
		svc.ID, svc.Name, svc.Endpoint, svc.APIKey, svc.ModelID,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert service %q: %w", svc.ID, err)
	}

	return nil
}

// UpsertModel inserts or replaces a model row.
func (s *Source) UpsertModel(ctx context.Context, model registry.ModelDescriptor) error {
	languages, err := json.Marshal(nonNil(model.Languages))
	if err != nil {
		return fmt.Errorf("postgres: encode languages: %w", err)
	}

	metadata := model.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("postgres: encode metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO models (model_id, name, version, task_type, languages, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (model_id) DO UPDATE
		SET name = EXCLUDED.name,
			version = EXCLUDED.version,
			task_type = EXCLUDED.task_type,
			languages = EXCLUDED.languages,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()`,
		model.ID, model.Name, model.Version, model.Task.String(), languages, meta,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert model %q: %w", model.ID, err)
	}

	return nil
}

func nonNil(langs []registry.LanguagePair) []registry.LanguagePair {
	if langs == nil {
		return []registry.LanguagePair{}
	}
	return langs
}
