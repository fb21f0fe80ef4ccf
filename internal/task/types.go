package task

// Language selects source/target languages and optional script codes.
type Language struct {
	SourceLanguage   string `json:"sourceLanguage"`
	SourceScriptCode string `json:"sourceScriptCode,omitempty"`
	TargetLanguage   string `json:"targetLanguage,omitempty"`
	TargetScriptCode string `json:"targetScriptCode,omitempty"`
}

// TextFormat selects how ASR transcripts are rendered.
type TextFormat struct {
	Value string `json:"value"`
}

// Transcription formats.
const (
	FormatTranscript = "transcript"
	FormatSRT        = "srt"
	FormatWebVTT     = "webvtt"
)

// Audio formats.
const (
	AudioFormatWAV  = "wav"
	AudioFormatPCM  = "pcm"
	AudioFormatMP3  = "mp3"
	AudioFormatFLAC = "flac"
	AudioFormatOGG  = "ogg"
)

// Config is the task configuration shared by every task type. Fields that
// do not apply to a task are ignored by it.
type Config struct {
	TranscriptionFormat *TextFormat `json:"transcriptionFormat,omitempty"`
	IsSentence          *bool       `json:"isSentence,omitempty"`
	Language            Language    `json:"language"`
	ServiceID           string      `json:"serviceId,omitempty"`
	AudioFormat         string      `json:"audioFormat,omitempty"`
	Gender              string      `json:"gender,omitempty"`
	PostProcessors      []string    `json:"postProcessors,omitempty"`
	SamplingRate        int         `json:"samplingRate,omitempty" minimum:"0" maximum:"48000"`
	NumSuggestions      int         `json:"numSuggestions,omitempty"`
}

// Output sampling rates accepted for synthesized speech. Zero selects the
// configured default.
const (
	MinSamplingRate = 8000
	MaxSamplingRate = 48000
)

// SentenceLevel reports whether transliteration runs at sentence level.
// Word level is the default.
func (c Config) SentenceLevel() bool {
	return c.IsSentence != nil && *c.IsSentence
}

// HasPostProcessor reports whether name is among the requested post-processors.
func (c Config) HasPostProcessor(name string) bool {
	for _, p := range c.PostProcessors {
		if p == name {
			return true
		}
	}
	return false
}

// Clone deep-copies c.
func (c Config) Clone() Config {
	out := c
	if c.TranscriptionFormat != nil {
		f := *c.TranscriptionFormat
		out.TranscriptionFormat = &f
	}
	if c.IsSentence != nil {
		v := *c.IsSentence
		out.IsSentence = &v
	}
	out.PostProcessors = append([]string(nil), c.PostProcessors...)
	return out
}

// ControlConfig carries per-request controls.
type ControlConfig struct {
	DataTracking *bool `json:"dataTracking,omitempty"`
}

// Text is a single text input.
type Text struct {
	Source string `json:"source"`
}

// Audio is a single audio input, inline base64 content or a URI.
type Audio struct {
	AudioContent string `json:"audioContent,omitempty"`
	AudioURI     string `json:"audioUri,omitempty"`
}

// Payload is the data a task consumes: text inputs, audio inputs or both.
type Payload struct {
	Input []Text  `json:"input,omitempty"`
	Audio []Audio `json:"audio,omitempty"`
}

// Clone deep-copies p.
func (p Payload) Clone() Payload {
	return Payload{
		Input: append([]Text(nil), p.Input...),
		Audio: append([]Audio(nil), p.Audio...),
	}
}

// Request is a single-task inference request.
type Request struct {
	ControlConfig *ControlConfig `json:"controlConfig,omitempty"`
	Config        Config         `json:"config"`
	Payload
}
