package audio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/ekisa-team/lingua/internal/backend"
)

// Transcoder converts between WAV and other containers with ffmpeg.
type Transcoder struct {
	exec *backend.Executor
}

// NewTranscoder creates a transcoder running ffmpeg through exec.
func NewTranscoder(exec *backend.Executor) *Transcoder {
	return &Transcoder{exec: exec}
}

// ToWAV converts any container ffmpeg understands into mono 16-bit PCM WAV
// at the given rate.
func (t *Transcoder) ToWAV(ctx context.Context, data []byte, rate int) ([]byte, error) {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		"pipe:1",
	}

	out, err := t.exec.Execute(ctx, args, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: transcode to wav: %w", err)
	}

	return out, nil
}

// FromWAV converts WAV data into the named container, e.g. mp3, flac or ogg.
func (t *Transcoder) FromWAV(ctx context.Context, wavData []byte, format string) ([]byte, error) {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-f", "wav",
		"-i", "pipe:0",
		"-f", format,
		"pipe:1",
	}

	out, err := t.exec.Execute(ctx, args, bytes.NewReader(wavData))
	if err != nil {
		return nil, fmt.Errorf("audio: transcode to %s: %w", format, err)
	}

	return out, nil
}
