package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/lingua/internal/envvar"
)

const testSchema = "testdata/schema.json"

func TestLoadAndValidate(t *testing.T) {
	cfg, err := LoadAndValidate("testdata/valid.yaml", testSchema)
	require.NoError(t, err)

	assert.Equal(t, SourceTypeStatic, cfg.Registry.Source)
	assert.Equal(t, "nmt-v2", cfg.Registry.Services["ai4bharat/indictrans-v2-all-gpu--t4"].ModelID)
	assert.Equal(t, "translation", cfg.Registry.Models["nmt-v2"].Task)
	assert.True(t, cfg.Pipeline.StrictValidation)

	// Defaults fill what the file leaves out.
	assert.Equal(t, defaultHTTPPort, cfg.Server.Port)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 22050, cfg.TTS.NativeRate)
	assert.Equal(t, SinkTypeLog, cfg.Usage.Sink)
	assert.Equal(t, 5*time.Second, cfg.Backend.DialTimeout)

	// A configured selection replaces the default one; others keep theirs.
	assert.Equal(t, "ai4bharat/indictrans-v2-all-gpu--t4", cfg.Pipeline.AutoSelect.Translation.Pick("en"))
	assert.Equal(t, "ai4bharat/conformer-hi-gpu--t4", cfg.Pipeline.AutoSelect.ASR.Pick("hi"))
}

func TestLoadAndValidate_EnvOverrides(t *testing.T) {
	t.Setenv(envvar.LinguaServerHTTPPort, "9090")
	t.Setenv(envvar.LinguaMQTTBrokerURL, "tcp://broker:1883")

	cfg, err := LoadAndValidate("testdata/valid.yaml", testSchema)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tcp://broker:1883", cfg.Usage.MQTT.Broker)
}

func TestLoadAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"schema violation", "testdata/bad_schema.yaml"},
		{"chunk profile", "testdata/bad_profile.yaml"},
		{"unknown model reference", "testdata/bad_reference.yaml"},
		{"missing file", "testdata/nope.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAndValidate(tt.path, testSchema)
			assert.Error(t, err)
		})
	}

	_, err := LoadAndValidate("testdata/bad_profile.yaml", testSchema)
	assert.ErrorIs(t, err, ErrInvalidChunkProfile)
}

func TestProfileFor(t *testing.T) {
	audio := AudioConfig{
		Default:  DefaultChunkProfile(),
		Profiles: DefaultChunkProfiles(),
	}

	whisper := audio.ProfileFor("ai4bharat/whisper-medium-en--gpu--t4")
	assert.Equal(t, 1, whisper.BatchSize)
	assert.Equal(t, 16.0, whisper.MaxSeconds)
	assert.Equal(t, 6.0, whisper.MinSeconds)

	conformer := audio.ProfileFor("ai4bharat/conformer-hi-gpu--t4")
	assert.Equal(t, DefaultChunkProfile(), conformer)
}

func TestSelectionPick(t *testing.T) {
	s := DefaultAutoSelect().TTS

	assert.Equal(t, "ai4bharat/indic-tts-coqui-dravidian-gpu--t4", s.Pick("TA"))
	assert.Equal(t, "ai4bharat/indic-tts-coqui-misc-gpu--t4", s.Pick("brx"))
	assert.Equal(t, "ai4bharat/indic-tts-coqui-indo_aryan-gpu--t4", s.Pick("mr"))
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lingua.yaml")

	data, err := os.ReadFile("testdata/valid.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, testSchema, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Snapshot().Pipeline.StrictValidation)

	updated := append(data, []byte("usage:\n  queue_size: 7\n")...)
	require.NoError(t, os.WriteFile(path, updated, 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Usage.QueueSize)
		assert.Equal(t, 7, w.Snapshot().Usage.QueueSize)
		assert.GreaterOrEqual(t, w.ReloadCount(), uint32(1))
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
