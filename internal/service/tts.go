package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ekisa-team/lingua/internal/adapter"
	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/audio"
	"github.com/ekisa-team/lingua/internal/task"
)

// DefaultGender is the speaker gender used when none is requested.
const DefaultGender = "female"

// EncodingBase64 is the only audio content encoding produced.
const EncodingBase64 = "base64"

// TTS synthesizes every text input, one backend call per input. Blank
// inputs produce empty audio without a call.
func (s *Inference) TTS(ctx context.Context, serviceID string, req *task.Request) (*task.TTSResponse, error) {
	ctx = context.WithoutCancel(ctx)

	svc, model, err := s.resolve(ctx, serviceID, task.TTS)
	if err != nil {
		return nil, err
	}

	cfg := req.Config
	lang := cfg.Language.SourceLanguage
	if err := checkLanguage(model, task.Language{SourceLanguage: lang}); err != nil {
		return nil, err
	}

	format := strings.ToLower(cfg.AudioFormat)
	if format == "" {
		format = task.AudioFormatWAV
	}
	if err := s.checkFormat(format); err != nil {
		return nil, err
	}

	rate := cfg.SamplingRate
	if rate == 0 {
		rate = s.tts.DefaultRate
	}
	if rate < task.MinSamplingRate || rate > task.MaxSamplingRate {
		return nil, apperr.Client(apperr.KindInvalidInput,
			fmt.Sprintf("sampling rate %d is outside %d-%d Hz", rate, task.MinSamplingRate, task.MaxSamplingRate), nil)
	}

	gender := cfg.Gender
	if gender == "" {
		gender = DefaultGender
	}

	out := &task.TTSResponse{
		Audio: make([]task.AudioContent, 0, len(req.Input)),
		Config: task.AudioConfig{
			Language:     cfg.Language,
			AudioFormat:  format,
			Encoding:     EncodingBase64,
			SamplingRate: rate,
		},
	}

	for _, in := range req.Input {
		text := adapter.NormalizeTTSInput(in.Source)
		if text == "" {
			out.Audio = append(out.Audio, task.AudioContent{})
			continue
		}

		resp, err := s.infer(ctx, svc, adapter.TTS(text, gender, lang))
		if err != nil {
			return nil, err
		}

		wave, err := adapter.DecodeTTS(resp)
		if err != nil {
			return nil, malformed(err)
		}

		data, err := s.render(ctx, audio.Resample(wave, s.tts.NativeRate, rate), rate, format)
		if err != nil {
			return nil, err
		}

		out.Audio = append(out.Audio, task.AudioContent{AudioContent: base64.StdEncoding.EncodeToString(data)})
	}

	return out, nil
}

func (s *Inference) checkFormat(format string) error {
	switch format {
	case task.AudioFormatWAV, task.AudioFormatPCM:
		return nil
	case task.AudioFormatMP3, task.AudioFormatFLAC, task.AudioFormatOGG:
		if s.transcoder == nil {
			return apperr.Client(apperr.KindInvalidInput, fmt.Sprintf("audio format %s is not available", format), nil)
		}
		return nil
	default:
		return apperr.Client(apperr.KindInvalidInput, fmt.Sprintf("unsupported audio format %s", format), nil)
	}
}

// render encodes a mono waveform in the requested container. pcm is raw
// signed 16-bit little-endian samples.
func (s *Inference) render(ctx context.Context, wave []float32, rate int, format string) ([]byte, error) {
	if format == task.AudioFormatPCM {
		return audio.EncodePCM16(wave), nil
	}

	wavData, err := audio.EncodeWAV(&audio.Buffer{Samples: wave, SampleRate: rate, Channels: 1})
	if err != nil {
		return nil, apperr.Server(apperr.KindInternal, "failed to encode audio", err)
	}
	if format == task.AudioFormatWAV {
		return wavData, nil
	}

	data, err := s.transcoder.FromWAV(ctx, wavData, format)
	if err != nil {
		return nil, apperr.Server(apperr.KindInternal, "failed to transcode audio", err)
	}

	return data, nil
}
