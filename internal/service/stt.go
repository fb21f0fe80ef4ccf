package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ekisa-team/lingua/internal/adapter"
	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/audio"
	"github.com/ekisa-team/lingua/internal/mapsafe"
	"github.com/ekisa-team/lingua/internal/registry"
	"github.com/ekisa-team/lingua/internal/task"
)

// maxAudioBytes caps audio fetched by URI.
const maxAudioBytes = 64 << 20

// Model metadata keys that override the service's chunk profile.
const (
	MetadataBatchSize       = "batch_size"
	MetadataMinChunkSeconds = "min_chunk_seconds"
	MetadataMaxChunkSeconds = "max_chunk_seconds"
)

// ASR transcribes every audio input. Each input is chunked by voice
// activity, the chunks are sent in batches and the transcripts are joined
// in the requested transcription format.
func (s *Inference) ASR(ctx context.Context, serviceID string, req *task.Request) (*task.ASRResponse, error) {
	ctx = context.WithoutCancel(ctx)

	svc, model, err := s.resolve(ctx, serviceID, task.ASR)
	if err != nil {
		return nil, err
	}

	cfg := req.Config
	if err := checkLanguage(model, task.Language{SourceLanguage: cfg.Language.SourceLanguage}); err != nil {
		return nil, err
	}

	format := task.FormatTranscript
	if cfg.TranscriptionFormat != nil && cfg.TranscriptionFormat.Value != "" {
		format = cfg.TranscriptionFormat.Value
	}

	bounds, batchSize := s.chunkProfile(svc, model)
	modelName := adapter.ASRModel(cfg)

	out := &task.ASRResponse{Output: make([]task.Text, 0, len(req.Audio))}
	for i, in := range req.Audio {
		data, err := s.loadAudio(ctx, in)
		if err != nil {
			return nil, err
		}

		chunks, err := s.preprocessor.Prepare(ctx, data, bounds)
		if err != nil {
			return nil, apperr.Client(apperr.KindInvalidAudio, fmt.Sprintf("failed to process audio %d", i), err)
		}

		var segments []audio.Segment
		for _, batch := range audio.Batch(chunks, batchSize) {
			resp, err := s.infer(ctx, svc, adapter.ASR(batch, cfg.Language.SourceLanguage, modelName))
			if err != nil {
				return nil, err
			}

			decoded, err := adapter.DecodeASR(batch, resp)
			if err != nil {
				return nil, malformed(err)
			}
			segments = append(segments, decoded...)
		}

		slog.Debug("Transcribed audio",
			"service_id", svc.ID,
			"input", i,
			"chunks", len(chunks),
			"batch_size", batchSize,
		)

		out.Output = append(out.Output, task.Text{Source: strings.TrimSpace(adapter.FormatTranscript(segments, format))})
	}

	return out, nil
}

// chunkProfile returns the chunk bounds and batch size for svc, letting
// model metadata override the configured profile.
func (s *Inference) chunkProfile(svc *registry.ServiceDescriptor, model *registry.ModelDescriptor) (audio.Bounds, int) {
	p := s.chunking.ProfileFor(svc.ID)
	configured := audio.Bounds{Min: p.MinSeconds, Max: p.MaxSeconds}

	bounds := audio.Bounds{
		Min: mapsafe.Get(model.Metadata, MetadataMinChunkSeconds, p.MinSeconds),
		Max: mapsafe.Get(model.Metadata, MetadataMaxChunkSeconds, p.MaxSeconds),
	}
	if err := bounds.Validate(); err != nil {
		slog.Warn("Ignoring chunk bounds from model metadata", "model_id", model.ID, "error", err)
		bounds = configured
	}

	batchSize := mapsafe.Get(model.Metadata, MetadataBatchSize, p.BatchSize)
	if batchSize <= 0 {
		batchSize = 1
	}

	return bounds, batchSize
}

// loadAudio returns the encoded bytes of in, decoding inline content or
// fetching the URI.
func (s *Inference) loadAudio(ctx context.Context, in task.Audio) ([]byte, error) {
	switch {
	case in.AudioContent != "":
		data, err := base64.StdEncoding.DecodeString(in.AudioContent)
		if err != nil {
			return nil, apperr.Client(apperr.KindInvalidAudio, "audioContent is not valid base64", err)
		}
		return data, nil

	case in.AudioURI != "":
		return s.fetchAudio(ctx, in.AudioURI)

	default:
		return nil, apperr.Client(apperr.KindInvalidInput, "audio needs audioContent or audioUri", nil)
	}
}

func (s *Inference) fetchAudio(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, apperr.Client(apperr.KindInvalidInput, "invalid audioUri", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Client(apperr.KindInvalidAudio, "failed to fetch audio", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Client(apperr.KindInvalidAudio,
			fmt.Sprintf("failed to fetch audio: status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, apperr.Client(apperr.KindInvalidAudio, "failed to read audio", err)
	}
	if len(data) > maxAudioBytes {
		return nil, apperr.Client(apperr.KindInvalidAudio, "audio exceeds size limit", nil)
	}

	return data, nil
}
