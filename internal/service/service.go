// Package service runs single inference tasks: it resolves the service,
// shapes the request into tensors, dispatches it and decodes the result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ekisa-team/lingua/internal/adapter"
	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/audio"
	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/config"
	"github.com/ekisa-team/lingua/internal/registry"
	"github.com/ekisa-team/lingua/internal/task"
)

// Resolver looks up a service and the model it serves.
type Resolver interface {
	ResolveServiceModel(ctx context.Context, serviceID string) (*registry.ServiceDescriptor, *registry.ModelDescriptor, error)
}

// Inference executes inference tasks against the backend.
type Inference struct {
	resolver     Resolver
	dispatcher   backend.Dispatcher
	preprocessor *audio.Preprocessor
	transcoder   *audio.Transcoder
	httpClient   *http.Client
	chunking     config.AudioConfig
	tts          config.TTSConfig
}

// Option configures an Inference service.
type Option func(*Inference)

// WithTranscoder enables TTS output in containers other than wav and pcm.
func WithTranscoder(t *audio.Transcoder) Option {
	return func(s *Inference) {
		s.transcoder = t
	}
}

// WithHTTPClient sets the client used to fetch audio by URI.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Inference) {
		s.httpClient = c
	}
}

// WithChunking sets the ASR chunk profiles.
func WithChunking(cfg config.AudioConfig) Option {
	return func(s *Inference) {
		s.chunking = cfg
	}
}

// WithTTS sets the synthesis sample rates.
func WithTTS(cfg config.TTSConfig) Option {
	return func(s *Inference) {
		s.tts = cfg
	}
}

// New creates an inference service.
func New(resolver Resolver, dispatcher backend.Dispatcher, preprocessor *audio.Preprocessor, opts ...Option) *Inference {
	var defaults config.Config
	config.ApplyDefaults(&defaults)

	s := &Inference{
		resolver:     resolver,
		dispatcher:   dispatcher,
		preprocessor: preprocessor,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		chunking:     defaults.Audio,
		tts:          defaults.TTS,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes a task of type t on the given service.
func (s *Inference) Run(ctx context.Context, t task.Type, serviceID string, req *task.Request) (task.Output, error) {
	r := task.Match[result](t, runner{s: s, ctx: ctx, serviceID: serviceID, req: req})
	return r.out, r.err
}

type result struct {
	out task.Output
	err error
}

func wrap[O task.Output](out O, err error) result {
	if err != nil {
		return result{err: err}
	}
	return result{out: out}
}

// runner binds one call of Run to the task visitor.
type runner struct {
	s         *Inference
	ctx       context.Context
	serviceID string
	req       *task.Request
}

func (r runner) VisitASR() result {
	out, err := r.s.ASR(r.ctx, r.serviceID, r.req)
	return wrap(out, err)
}

func (r runner) VisitTranslation() result {
	out, err := r.s.Translation(r.ctx, r.serviceID, r.req)
	return wrap(out, err)
}

func (r runner) VisitTransliteration() result {
	out, err := r.s.Transliteration(r.ctx, r.serviceID, r.req)
	return wrap(out, err)
}

func (r runner) VisitTTS() result {
	out, err := r.s.TTS(r.ctx, r.serviceID, r.req)
	return wrap(out, err)
}

func (r runner) VisitNER() result {
	out, err := r.s.NER(r.ctx, r.serviceID, r.req)
	return wrap(out, err)
}

// resolve returns the service and model for serviceID and checks that the
// model performs t.
func (s *Inference) resolve(ctx context.Context, serviceID string, t task.Type) (*registry.ServiceDescriptor, *registry.ModelDescriptor, error) {
	if serviceID == "" {
		return nil, nil, apperr.Client(apperr.KindInvalidInput, "serviceId is required", nil)
	}

	svc, model, err := s.resolver.ResolveServiceModel(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}

	if model.Task != t {
		return nil, nil, apperr.Client(apperr.KindTaskMismatch,
			fmt.Sprintf("service %s performs %s, not %s", serviceID, model.Task, t), nil)
	}

	return svc, model, nil
}

func checkLanguage(model *registry.ModelDescriptor, lang task.Language) error {
	if model.Supports(lang.SourceLanguage, lang.TargetLanguage) {
		return nil
	}

	pair := lang.SourceLanguage
	if lang.TargetLanguage != "" {
		pair += "-" + lang.TargetLanguage
	}

	return apperr.Client(apperr.KindInvalidInput, fmt.Sprintf("model %s does not support %s", model.ID, pair), nil)
}

func (s *Inference) infer(ctx context.Context, svc *registry.ServiceDescriptor, enc adapter.Encoded) (*backend.Response, error) {
	req := enc.Request(svc.Endpoint, svc.APIKey, uuid.NewString())

	start := time.Now()
	resp, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Server(apperr.KindBackendUnavailable, "inference failed", err)
	}

	slog.Debug("Inference completed",
		"service_id", svc.ID,
		"model", req.Model,
		"request_id", req.ID,
		"elapsed", time.Since(start),
	)

	return resp, nil
}

func malformed(err error) error {
	return apperr.Server(apperr.KindInternal, "malformed backend response", err)
}
