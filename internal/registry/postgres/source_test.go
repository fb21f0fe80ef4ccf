package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/lingua/internal/envvar"
	"github.com/ekisa-team/lingua/internal/registry"
	"github.com/ekisa-team/lingua/internal/task"
)

func newTestSource(t *testing.T) *Source {
	t.Helper()

	dsn := os.Getenv(envvar.LinguaDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", envvar.LinguaDatabaseURL)
	}

	src, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(src.Close)

	require.NoError(t, src.Migrate(context.Background()))
	return src
}

func TestSource_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestSource(t)

	modelID := "model-" + uuid.NewString()
	serviceID := "service-" + uuid.NewString()

	require.NoError(t, src.UpsertModel(ctx, registry.ModelDescriptor{
		ID:        modelID,
		Name:      "IndicTrans2",
		Task:      task.Translation,
		Languages: []registry.LanguagePair{{Source: "en", Target: "hi"}},
		Metadata:  map[string]any{"batch_size": 4},
	}))
	require.NoError(t, src.UpsertService(ctx, registry.ServiceDescriptor{
		ID:       serviceID,
		Endpoint: "http://nmt:8001",
		ModelID:  modelID,
	}))

	svc, err := src.FindService(ctx, serviceID)
	require.NoError(t, err)
	assert.Equal(t, modelID, svc.ModelID)

	model, err := src.FindModel(ctx, modelID)
	require.NoError(t, err)
	assert.Equal(t, task.Translation, model.Task)
	assert.Equal(t, []registry.LanguagePair{{Source: "en", Target: "hi"}}, model.Languages)
	assert.EqualValues(t, 4, model.Metadata["batch_size"])

	_, err = src.FindService(ctx, "service-"+uuid.NewString())
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
