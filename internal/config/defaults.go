package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultHTTPPort        = 8080
	defaultShutdownTimeout = 10 * time.Second
	defaultDialTimeout     = 5 * time.Second
	defaultMaxMessageSize  = 64 << 20

	defaultSampleRate = 16000
	defaultTargetPeak = 0.95
	defaultFFmpegPath = "ffmpeg"

	defaultTTSNativeRate  = 22050
	defaultTTSDefaultRate = 22050

	defaultUsageQueueSize = 1024
	defaultMQTTTopic      = "lingua/usage"
	defaultMQTTClientID   = "lingua-gateway"
)

// DefaultConfigPath returns the default path for the LINGUA config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "lingua", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "lingua")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "lingua")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "lingua")
		}
		return filepath.Join(home, ".config", "lingua")
	}
}

// DefaultHTTPPort returns the port the HTTP server listens on when none is configured.
func DefaultHTTPPort() int {
	return defaultHTTPPort
}

// DefaultWorkers returns the default size of the preprocessing worker pool.
func DefaultWorkers() int {
	return max(runtime.NumCPU(), 1)
}

// DefaultChunkProfile is used for ASR services that match no other profile.
func DefaultChunkProfile() ChunkProfile {
	return ChunkProfile{BatchSize: 32, MinSeconds: 6, MaxSeconds: 20}
}

// DefaultChunkProfiles returns the built-in per-service chunk profiles.
func DefaultChunkProfiles() []ChunkProfile {
	return []ChunkProfile{
		{Match: "whisper", BatchSize: 1, MaxSeconds: 16},
	}
}

// DefaultVAD returns the default voice activity detector parameters.
func DefaultVAD() VADConfig {
	return VADConfig{
		FrameMs:      30,
		Threshold:    0.01,
		MinSilenceMs: 300,
		SpeechPadMs:  100,
		MinSpeechMs:  250,
	}
}

// DefaultAutoSelect returns the built-in fallback service table.
func DefaultAutoSelect() AutoSelectConfig {
	const dravidianASR = "ai4bharat/conformer-multilingual-dravidian-gpu--t4"
	const dravidianTTS = "ai4bharat/indic-tts-coqui-dravidian-gpu--t4"
	const miscTTS = "ai4bharat/indic-tts-coqui-misc-gpu--t4"

	return AutoSelectConfig{
		ASR: Selection{
			ByLanguage: map[string]string{
				"en": "ai4bharat/whisper-medium-en--gpu--t4",
				"hi": "ai4bharat/conformer-hi-gpu--t4",
				"kn": dravidianASR,
				"ml": dravidianASR,
				"ta": dravidianASR,
				"te": dravidianASR,
			},
			Default: "ai4bharat/conformer-multilingual-indo_aryan-gpu--t4",
		},
		Translation: Selection{
			Default: "ai4bharat/indictrans-v2-all-gpu--t4",
		},
		TTS: Selection{
			ByLanguage: map[string]string{
				"kn":  dravidianTTS,
				"ml":  dravidianTTS,
				"ta":  dravidianTTS,
				"te":  dravidianTTS,
				"en":  miscTTS,
				"brx": miscTTS,
				"mni": miscTTS,
			},
			Default: "ai4bharat/indic-tts-coqui-indo_aryan-gpu--t4",
		},
	}
}

// ApplyDefaults fills every unset field of cfg with its default value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultHTTPPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Backend.DialTimeout == 0 {
		cfg.Backend.DialTimeout = defaultDialTimeout
	}
	if cfg.Backend.MaxMessageSize == 0 {
		cfg.Backend.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.Registry.Source == "" {
		cfg.Registry.Source = SourceTypeStatic
	}

	applyAudioDefaults(&cfg.Audio)

	if cfg.TTS.NativeRate == 0 {
		cfg.TTS.NativeRate = defaultTTSNativeRate
	}
	if cfg.TTS.DefaultRate == 0 {
		cfg.TTS.DefaultRate = defaultTTSDefaultRate
	}

	applySelectionDefaults(&cfg.Pipeline.AutoSelect, DefaultAutoSelect())

	if cfg.Usage.QueueSize == 0 {
		cfg.Usage.QueueSize = defaultUsageQueueSize
	}
	if cfg.Usage.Sink == "" {
		cfg.Usage.Sink = SinkTypeLog
	}
	if cfg.Usage.MQTT.Topic == "" {
		cfg.Usage.MQTT.Topic = defaultMQTTTopic
	}
	if cfg.Usage.MQTT.ClientID == "" {
		cfg.Usage.MQTT.ClientID = defaultMQTTClientID
	}
}

func applyAudioDefaults(a *AudioConfig) {
	if a.SampleRate == 0 {
		a.SampleRate = defaultSampleRate
	}
	if a.TargetPeak == 0 {
		a.TargetPeak = defaultTargetPeak
	}
	if a.Workers == 0 {
		a.Workers = DefaultWorkers()
	}
	if a.FFmpegPath == "" {
		a.FFmpegPath = defaultFFmpegPath
	}

	vad := DefaultVAD()
	if a.VAD.FrameMs == 0 {
		a.VAD.FrameMs = vad.FrameMs
	}
	if a.VAD.Threshold == 0 {
		a.VAD.Threshold = vad.Threshold
	}
	if a.VAD.MinSilenceMs == 0 {
		a.VAD.MinSilenceMs = vad.MinSilenceMs
	}
	if a.VAD.SpeechPadMs == 0 {
		a.VAD.SpeechPadMs = vad.SpeechPadMs
	}
	if a.VAD.MinSpeechMs == 0 {
		a.VAD.MinSpeechMs = vad.MinSpeechMs
	}

	def := DefaultChunkProfile()
	if a.Default.BatchSize == 0 {
		a.Default.BatchSize = def.BatchSize
	}
	if a.Default.MinSeconds == 0 {
		a.Default.MinSeconds = def.MinSeconds
	}
	if a.Default.MaxSeconds == 0 {
		a.Default.MaxSeconds = def.MaxSeconds
	}
	if a.Profiles == nil {
		a.Profiles = DefaultChunkProfiles()
	}
}

func applySelectionDefaults(dst *AutoSelectConfig, def AutoSelectConfig) {
	fill := func(s *Selection, d Selection) {
		if s.Default == "" && len(s.ByLanguage) == 0 {
			*s = d
		}
	}

	fill(&dst.ASR, def.ASR)
	fill(&dst.Translation, def.Translation)
	fill(&dst.Transliteration, def.Transliteration)
	fill(&dst.TTS, def.TTS)
	fill(&dst.NER, def.NER)
}
