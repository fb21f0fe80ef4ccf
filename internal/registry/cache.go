// Package registry resolves service and model descriptors through a
// cache-aside store in front of an authoritative Source.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ekisa-team/lingua/internal/apperr"
)

// Cache resolves descriptors from its stores, falling back to the source
// on a miss and populating the store with what it finds.
type Cache struct {
	source   Source
	services *Store[*ServiceDescriptor]
	models   *Store[*ModelDescriptor]
}

// NewCache creates a cache over source backed by the given stores.
func NewCache(source Source, services *Store[*ServiceDescriptor], models *Store[*ModelDescriptor]) *Cache {
	return &Cache{
		source:   source,
		services: services,
		models:   models,
	}
}

// ResolveService returns the service descriptor for id.
func (c *Cache) ResolveService(ctx context.Context, id string) (*ServiceDescriptor, error) {
	return resolve(ctx, "service", id, c.services, c.source.FindService)
}

// ResolveModel returns the model descriptor for id.
func (c *Cache) ResolveModel(ctx context.Context, id string) (*ModelDescriptor, error) {
	return resolve(ctx, "model", id, c.models, c.source.FindModel)
}

// ResolveServiceModel resolves a service and the model it serves.
func (c *Cache) ResolveServiceModel(ctx context.Context, serviceID string) (*ServiceDescriptor, *ModelDescriptor, error) {
	svc, err := c.ResolveService(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}

	model, err := c.ResolveModel(ctx, svc.ModelID)
	if err != nil {
		return nil, nil, err
	}

	return svc, model, nil
}

func resolve[V any](
	ctx context.Context,
	kind, id string,
	store *Store[V],
	find func(context.Context, string) (V, error),
) (V, error) {
	if v, ok := store.Get(id); ok {
		return v, nil
	}

	v, err := find(ctx, id)
	if err != nil {
		var zero V
		if errors.Is(err, ErrNotFound) {
			return zero, apperr.Client(apperr.KindNotFound, fmt.Sprintf("%s %s not found", kind, id), err)
		}

		return zero, apperr.Server(apperr.KindRegistryUnavailable, fmt.Sprintf("failed to look up %s", kind), err)
	}

	store.Set(id, v)
	slog.Debug("Cached descriptor", "kind", kind, "id", id)

	return v, nil
}
