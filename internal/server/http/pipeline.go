package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/lingua/internal/pipeline"
)

// Pipelines runs multi-stage inference.
type Pipelines interface {
	Run(ctx context.Context, req *pipeline.InferenceRequest) (*pipeline.InferenceResponse, error)
	SpeechToSpeech(ctx context.Context, p pipeline.Preset, req *pipeline.SpeechRequest) (*pipeline.SpeechResponse, error)
}

type (
	PipelineInput struct {
		Body pipeline.InferenceRequest
	}

	PipelineOutput struct {
		Body *pipeline.InferenceResponse
	}

	SpeechInput struct {
		Body pipeline.SpeechRequest
	}

	SpeechOutput struct {
		Body *pipeline.SpeechResponse
	}
)

// PipelineHandler handles pipeline and speech-to-speech requests. Usage
// events are recorded per stage by the orchestrator.
type PipelineHandler struct {
	pipelines Pipelines
}

// NewPipelineHandler creates a new PipelineHandler and registers its routes.
func NewPipelineHandler(api huma.API, pipelines Pipelines) *PipelineHandler {
	h := &PipelineHandler{pipelines: pipelines}

	huma.Register(api, huma.Operation{
		OperationID:   "run-pipeline",
		Method:        http.MethodPost,
		Path:          "/inference/pipeline",
		Summary:       "Run a chain of inference tasks",
		Tags:          []string{"pipeline"},
		DefaultStatus: http.StatusOK,
	}, h.handlePipeline)

	for _, preset := range []pipeline.Preset{pipeline.PresetS2S, pipeline.PresetS2SNewMT} {
		huma.Register(api, huma.Operation{
			OperationID:   "speech-to-speech-" + preset.Name,
			Method:        http.MethodPost,
			Path:          "/inference/" + preset.Name,
			Summary:       "Translate speech into speech (" + preset.Name + ")",
			Tags:          []string{"pipeline"},
			DefaultStatus: http.StatusOK,
		}, h.speechHandler(preset))
	}

	return h
}

func (h *PipelineHandler) handlePipeline(ctx context.Context, in *PipelineInput) (*PipelineOutput, error) {
	resp, err := h.pipelines.Run(ctx, &in.Body)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &PipelineOutput{Body: resp}, nil
}

func (h *PipelineHandler) speechHandler(p pipeline.Preset) func(context.Context, *SpeechInput) (*SpeechOutput, error) {
	return func(ctx context.Context, in *SpeechInput) (*SpeechOutput, error) {
		resp, err := h.pipelines.SpeechToSpeech(ctx, p, &in.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SpeechOutput{Body: resp}, nil
	}
}
