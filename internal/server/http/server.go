// Package http exposes the inference gateway as a huma API.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/usage"
)

// Recorder accepts usage events without blocking.
type Recorder interface {
	Enqueue(ev usage.Event) bool
}

// UseCaller stores the calling client's identity in every request context.
func UseCaller(api huma.API) {
	api.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
		c := caller.FromHeaders(ctx.Header, ctx.RemoteAddr())
		next(huma.WithContext(ctx, caller.WithCaller(ctx.Context(), c)))
	})
}

// toHumaError maps classified errors onto HTTP errors. Server errors carry
// only their kind; the cause is logged.
func toHumaError(err error) error {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("Unclassified inference error", "error", err)
		return huma.Error500InternalServerError("internal server error")
	}

	if e.Class == apperr.ClassClient {
		if e.Kind == apperr.KindNotFound {
			return huma.Error404NotFound(e.Message)
		}
		return huma.NewError(http.StatusBadRequest, e.Message, &huma.ErrorDetail{
			Message:  string(e.Kind),
			Location: "kind",
		})
	}

	slog.Error("Inference failed", "kind", e.Kind, "message", e.Message, "error", e.Err)

	return huma.Error500InternalServerError("internal server error", &huma.ErrorDetail{
		Message:  string(e.Kind),
		Location: "kind",
	})
}

type (
	HealthOutput struct {
		Body struct {
			Status string `json:"status" example:"ok"`
		}
	}
)

// NewHealthHandler registers the liveness probe.
func NewHealthHandler(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Report service liveness",
		Tags:        []string{"health"},
	}, func(context.Context, *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Status = "ok"
		return out, nil
	})
}
