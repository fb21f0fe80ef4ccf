package config

import (
	"strings"
	"time"
)

// SourceType represents where service and model descriptors are read from.
type SourceType string

const (
	// SourceTypeStatic reads descriptors from the registry section of this file.
	SourceTypeStatic SourceType = "static"
	// SourceTypePostgres reads descriptors from a Postgres database.
	SourceTypePostgres SourceType = "postgres"
)

// SinkType represents the destination of usage events.
type SinkType string

const (
	SinkTypeLog  SinkType = "log"
	SinkTypeMQTT SinkType = "mqtt"
)

// Config holds the main configuration for the application.
type Config struct {
	Version  string         `json:"version"            yaml:"version"`
	Server   ServerConfig   `json:"server,omitempty"   yaml:"server,omitempty"`
	Backend  BackendConfig  `json:"backend,omitempty"  yaml:"backend,omitempty"`
	Registry RegistryConfig `json:"registry"           yaml:"registry"`
	Audio    AudioConfig    `json:"audio,omitempty"    yaml:"audio,omitempty"`
	TTS      TTSConfig      `json:"tts,omitempty"      yaml:"tts,omitempty"`
	Pipeline PipelineConfig `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	Usage    UsageConfig    `json:"usage,omitempty"    yaml:"usage,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `json:"host,omitempty"             yaml:"host,omitempty"`
	Port            int           `json:"port,omitempty"             yaml:"port,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
}

// BackendConfig holds settings for connections to the inference backend.
type BackendConfig struct {
	DialTimeout    time.Duration `json:"dial_timeout,omitempty"     yaml:"dial_timeout,omitempty"`
	MaxMessageSize int           `json:"max_message_size,omitempty" yaml:"max_message_size,omitempty"`
}

// RegistryConfig selects the descriptor source and, for the static source,
// carries the descriptors themselves.
type RegistryConfig struct {
	Source      SourceType               `json:"source"                 yaml:"source"`
	DatabaseURL string                   `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Services    map[string]ServiceConfig `json:"services,omitempty"     yaml:"services,omitempty"`
	Models      map[string]ModelConfig   `json:"models,omitempty"       yaml:"models,omitempty"`
}

// ServiceConfig describes a deployed service.
type ServiceConfig struct {
	Name     string `json:"name,omitempty"    yaml:"name,omitempty"`
	Endpoint string `json:"endpoint"          yaml:"endpoint"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	ModelID  string `json:"model_id"          yaml:"model_id"`
}

// ModelConfig describes a model served by one or more services.
type ModelConfig struct {
	Name      string           `json:"name,omitempty"      yaml:"name,omitempty"`
	Version   string           `json:"version,omitempty"   yaml:"version,omitempty"`
	Task      string           `json:"task"                yaml:"task"`
	Languages []LanguageConfig `json:"languages,omitempty" yaml:"languages,omitempty"`
	Metadata  map[string]any   `json:"metadata,omitempty"  yaml:"metadata,omitempty"`
}

// LanguageConfig is a supported source/target language pair.
type LanguageConfig struct {
	Source string `json:"source"           yaml:"source"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// AudioConfig holds the ASR preprocessing parameters.
type AudioConfig struct {
	SampleRate int            `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	TargetPeak float64        `json:"target_peak,omitempty" yaml:"target_peak,omitempty"`
	Workers    int            `json:"workers,omitempty"     yaml:"workers,omitempty"`
	FFmpegPath string         `json:"ffmpeg_path,omitempty" yaml:"ffmpeg_path,omitempty"`
	VAD        VADConfig      `json:"vad,omitempty"         yaml:"vad,omitempty"`
	Default    ChunkProfile   `json:"default,omitempty"     yaml:"default,omitempty"`
	Profiles   []ChunkProfile `json:"profiles,omitempty"    yaml:"profiles,omitempty"`
}

// VADConfig holds the energy-based voice activity detector parameters.
type VADConfig struct {
	FrameMs      int     `json:"frame_ms,omitempty"       yaml:"frame_ms,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"      yaml:"threshold,omitempty"`
	MinSilenceMs int     `json:"min_silence_ms,omitempty" yaml:"min_silence_ms,omitempty"`
	SpeechPadMs  int     `json:"speech_pad_ms,omitempty"  yaml:"speech_pad_ms,omitempty"`
	MinSpeechMs  int     `json:"min_speech_ms,omitempty"  yaml:"min_speech_ms,omitempty"`
}

// ChunkProfile bounds chunk durations and batch size for services whose
// id contains Match. The default profile has an empty Match.
type ChunkProfile struct {
	Match      string  `json:"match,omitempty"       yaml:"match,omitempty"`
	BatchSize  int     `json:"batch_size,omitempty"  yaml:"batch_size,omitempty"`
	MinSeconds float64 `json:"min_seconds,omitempty" yaml:"min_seconds,omitempty"`
	MaxSeconds float64 `json:"max_seconds,omitempty" yaml:"max_seconds,omitempty"`
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	NativeRate  int `json:"native_rate,omitempty"  yaml:"native_rate,omitempty"`
	DefaultRate int `json:"default_rate,omitempty" yaml:"default_rate,omitempty"`
}

// PipelineConfig holds pipeline orchestration settings.
type PipelineConfig struct {
	StrictValidation bool             `json:"strict_validation,omitempty" yaml:"strict_validation,omitempty"`
	AutoSelect       AutoSelectConfig `json:"auto_select,omitempty"       yaml:"auto_select,omitempty"`
}

// AutoSelectConfig is the fallback service table used when a pipeline
// stage names no service.
type AutoSelectConfig struct {
	ASR             Selection `json:"asr,omitempty"             yaml:"asr,omitempty"`
	Translation     Selection `json:"translation,omitempty"     yaml:"translation,omitempty"`
	Transliteration Selection `json:"transliteration,omitempty" yaml:"transliteration,omitempty"`
	TTS             Selection `json:"tts,omitempty"             yaml:"tts,omitempty"`
	NER             Selection `json:"ner,omitempty"             yaml:"ner,omitempty"`
}

// Selection maps a source language to a service id.
type Selection struct {
	ByLanguage map[string]string `json:"by_language,omitempty" yaml:"by_language,omitempty"`
	Default    string            `json:"default,omitempty"     yaml:"default,omitempty"`
}

// Pick returns the service id for lang, falling back to the default.
func (s Selection) Pick(lang string) string {
	if id, ok := s.ByLanguage[strings.ToLower(lang)]; ok {
		return id
	}

	return s.Default
}

// UsageConfig holds usage event delivery settings.
type UsageConfig struct {
	QueueSize int        `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
	Sink      SinkType   `json:"sink,omitempty"       yaml:"sink,omitempty"`
	MQTT      MQTTConfig `json:"mqtt,omitempty"       yaml:"mqtt,omitempty"`
}

// MQTTConfig holds the broker settings for the MQTT usage sink.
type MQTTConfig struct {
	Broker   string `json:"broker,omitempty"    yaml:"broker,omitempty"`
	ClientID string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Topic    string `json:"topic,omitempty"     yaml:"topic,omitempty"`
	Username string `json:"username,omitempty"  yaml:"username,omitempty"`
	Password string `json:"password,omitempty"  yaml:"password,omitempty"`
	QoS      byte   `json:"qos,omitempty"       yaml:"qos,omitempty"`
}

// ProfileFor returns the chunk profile for serviceID. The first profile
// whose Match is a substring of serviceID wins; unset fields inherit from
// the default profile.
func (a AudioConfig) ProfileFor(serviceID string) ChunkProfile {
	p := a.Default
	for _, candidate := range a.Profiles {
		if candidate.Match == "" || !strings.Contains(serviceID, candidate.Match) {
			continue
		}

		if candidate.BatchSize > 0 {
			p.BatchSize = candidate.BatchSize
		}
		if candidate.MinSeconds > 0 {
			p.MinSeconds = candidate.MinSeconds
		}
		if candidate.MaxSeconds > 0 {
			p.MaxSeconds = candidate.MaxSeconds
		}
		p.Match = candidate.Match

		break
	}

	return p
}
