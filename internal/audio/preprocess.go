package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Preprocessor runs the ASR audio pipeline: decode, downmix, resample,
// equalize, dequantize and segment.
type Preprocessor struct {
	pool       *Pool
	transcoder *Transcoder
	vad        VADParams
	rate       int
	targetPeak float64
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithTranscoder enables decoding of non-WAV input through ffmpeg.
func WithTranscoder(t *Transcoder) PreprocessorOption {
	return func(p *Preprocessor) {
		p.transcoder = t
	}
}

// WithTargetPeak sets the equalization peak.
func WithTargetPeak(peak float64) PreprocessorOption {
	return func(p *Preprocessor) {
		p.targetPeak = peak
	}
}

// NewPreprocessor creates a preprocessor producing mono audio at rate.
func NewPreprocessor(pool *Pool, rate int, vad VADParams, opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		pool:       pool,
		rate:       rate,
		vad:        vad,
		targetPeak: 0.95,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// decode turns encoded audio into a buffer, transcoding through ffmpeg
// when the input is not plain PCM WAV.
func (p *Preprocessor) decode(ctx context.Context, data []byte) (*Buffer, error) {
	buf, err := DecodeWAV(data)
	if err == nil {
		return buf, nil
	}
	if !errors.Is(err, ErrNotWAV) && !errors.Is(err, ErrUnsupportedWAV) {
		return nil, err
	}
	if p.transcoder == nil {
		return nil, err
	}

	slog.Debug("Transcoding input audio", "bytes", len(data), "reason", err)

	wavData, err := p.transcoder.ToWAV(ctx, data, p.rate)
	if err != nil {
		return nil, err
	}

	return DecodeWAV(wavData)
}

// Prepare decodes data and splits it into speech chunks within bounds.
// Decoding and chunking both hold a worker slot.
func (p *Preprocessor) Prepare(ctx context.Context, data []byte, bounds Bounds) ([]Chunk, error) {
	return Do(ctx, p.pool, func() ([]Chunk, error) {
		buf, err := p.decode(ctx, data)
		if err != nil {
			return nil, err
		}

		return p.chunk(buf, bounds)
	})
}

func (p *Preprocessor) chunk(buf *Buffer, bounds Bounds) ([]Chunk, error) {
	if buf.SampleRate <= 0 || buf.Channels <= 0 {
		return nil, fmt.Errorf("audio: invalid format %d Hz x %d channels", buf.SampleRate, buf.Channels)
	}

	samples := Resample(Mono(buf).Samples, buf.SampleRate, p.rate)
	Equalize(samples, p.targetPeak)
	Dequantize(samples)

	chunks, err := SegmentSpeech(samples, p.rate, p.vad, bounds)
	if err != nil {
		return nil, err
	}

	slog.Debug("Segmented audio",
		"duration", buf.Duration(),
		"chunks", len(chunks),
		"min", bounds.Min,
		"max", bounds.Max,
	)

	return chunks, nil
}
