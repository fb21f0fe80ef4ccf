package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/task"
	"github.com/ekisa-team/lingua/internal/usage"
)

// Inference runs single inference tasks.
type Inference interface {
	Translation(ctx context.Context, serviceID string, req *task.Request) (*task.TranslationResponse, error)
	Transliteration(ctx context.Context, serviceID string, req *task.Request) (*task.TransliterationResponse, error)
	ASR(ctx context.Context, serviceID string, req *task.Request) (*task.ASRResponse, error)
	TTS(ctx context.Context, serviceID string, req *task.Request) (*task.TTSResponse, error)
	NER(ctx context.Context, serviceID string, req *task.Request) (*task.NERResponse, error)
}

type (
	TaskInput struct {
		ServiceID string `query:"serviceId" required:"true" minLength:"1" doc:"Service to run the task on"`
		Body      task.Request
	}

	TranslationOutput struct {
		Body *task.TranslationResponse
	}

	TransliterationOutput struct {
		Body *task.TransliterationResponse
	}

	ASROutput struct {
		Body *task.ASRResponse
	}

	TTSOutput struct {
		Body *task.TTSResponse
	}

	NEROutput struct {
		Body *task.NERResponse
	}
)

// InferenceHandler handles single-task inference requests.
type InferenceHandler struct {
	service  Inference
	recorder Recorder
}

// NewInferenceHandler creates a new InferenceHandler and registers its routes.
func NewInferenceHandler(api huma.API, service Inference, recorder Recorder) *InferenceHandler {
	h := &InferenceHandler{service: service, recorder: recorder}

	huma.Register(api, taskOperation("translate", task.Translation, "Translate text"), h.handleTranslation)
	huma.Register(api, taskOperation("transliterate", task.Transliteration, "Transliterate text"), h.handleTransliteration)
	huma.Register(api, taskOperation("transcribe", task.ASR, "Transcribe speech"), h.handleASR)
	huma.Register(api, taskOperation("synthesize", task.TTS, "Synthesize speech"), h.handleTTS)
	huma.Register(api, taskOperation("recognize-entities", task.NER, "Recognize named entities"), h.handleNER)

	return h
}

func taskOperation(id string, t task.Type, summary string) huma.Operation {
	return huma.Operation{
		OperationID:   id,
		Method:        http.MethodPost,
		Path:          "/inference/" + t.String(),
		Summary:       summary,
		Tags:          []string{"inference"},
		DefaultStatus: http.StatusOK,
	}
}

// runTask runs fn and records a usage event for it, failed or not.
func runTask[O any](
	ctx context.Context,
	h *InferenceHandler,
	t task.Type,
	in *TaskInput,
	fn func(context.Context, string, *task.Request) (O, error),
) (O, error) {
	c := caller.FromContext(ctx)
	start := time.Now()

	out, err := fn(ctx, in.ServiceID, &in.Body)

	var recorded any
	if err == nil {
		recorded = out
	}
	consent := usage.Consent(c.DataTracking, in.Body.ControlConfig)
	h.recorder.Enqueue(usage.NewEvent(c, t, in.ServiceID, consent, &in.Body, recorded, err, start))

	if err != nil {
		var zero O
		return zero, toHumaError(err)
	}

	return out, nil
}

func (h *InferenceHandler) handleTranslation(ctx context.Context, in *TaskInput) (*TranslationOutput, error) {
	out, err := runTask(ctx, h, task.Translation, in, h.service.Translation)
	if err != nil {
		return nil, err
	}
	return &TranslationOutput{Body: out}, nil
}

func (h *InferenceHandler) handleTransliteration(ctx context.Context, in *TaskInput) (*TransliterationOutput, error) {
	out, err := runTask(ctx, h, task.Transliteration, in, h.service.Transliteration)
	if err != nil {
		return nil, err
	}
	return &TransliterationOutput{Body: out}, nil
}

func (h *InferenceHandler) handleASR(ctx context.Context, in *TaskInput) (*ASROutput, error) {
	out, err := runTask(ctx, h, task.ASR, in, h.service.ASR)
	if err != nil {
		return nil, err
	}
	return &ASROutput{Body: out}, nil
}

func (h *InferenceHandler) handleTTS(ctx context.Context, in *TaskInput) (*TTSOutput, error) {
	out, err := runTask(ctx, h, task.TTS, in, h.service.TTS)
	if err != nil {
		return nil, err
	}
	return &TTSOutput{Body: out}, nil
}

func (h *InferenceHandler) handleNER(ctx context.Context, in *TaskInput) (*NEROutput, error) {
	out, err := runTask(ctx, h, task.NER, in, h.service.NER)
	if err != nil {
		return nil, err
	}
	return &NEROutput{Body: out}, nil
}
