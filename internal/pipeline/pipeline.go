// Package pipeline chains inference tasks: it validates a stage sequence,
// runs each stage on the previous stage's output and records usage per stage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/task"
	"github.com/ekisa-team/lingua/internal/usage"
)

// Stage is one task of a pipeline. Its position in the request is its ordinal.
type Stage struct {
	TaskType      task.Type           `json:"taskType"`
	Config        task.Config         `json:"config"`
	ControlConfig *task.ControlConfig `json:"controlConfig,omitempty"`
}

// InferenceRequest is a pipeline inference request.
type InferenceRequest struct {
	PipelineTasks []Stage             `json:"pipelineTasks"`
	InputData     task.Payload        `json:"inputData"`
	ControlConfig *task.ControlConfig `json:"controlConfig,omitempty"`
}

// InferenceResponse holds one output per executed stage, in stage order.
type InferenceResponse struct {
	PipelineResponse []task.Output `json:"pipelineResponse"`
}

// Runner executes a single task.
type Runner interface {
	Run(ctx context.Context, t task.Type, serviceID string, req *task.Request) (task.Output, error)
}

// Recorder accepts usage events without blocking.
type Recorder interface {
	Enqueue(ev usage.Event) bool
}

// State tracks a running pipeline.
type State struct {
	Index   int
	Results []task.Output
	Consent bool
}

// Orchestrator runs pipelines.
type Orchestrator struct {
	runner   Runner
	selector *Selector
	recorder Recorder
	strict   bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrictValidation makes an invalid pipeline a client error instead of
// an empty response.
func WithStrictValidation(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// New creates an orchestrator.
func New(runner Runner, selector *Selector, recorder Recorder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:   runner,
		selector: selector,
		recorder: recorder,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run validates and executes req. Stages run in order; each stage's output
// is copied into the response and rewired into the next stage's input. A
// failing stage stops the pipeline after its usage event is recorded.
func (o *Orchestrator) Run(ctx context.Context, req *InferenceRequest) (*InferenceResponse, error) {
	if err := Validate(req.PipelineTasks); err != nil {
		if o.strict {
			return nil, apperr.Client(apperr.KindInvalidPipeline, "invalid pipeline", err)
		}

		slog.Warn("Skipping invalid pipeline", "stages", stageTypes(req.PipelineTasks), "error", err)
		return &InferenceResponse{PipelineResponse: []task.Output{}}, nil
	}

	c := caller.FromContext(ctx)
	state := &State{
		Results: make([]task.Output, 0, len(req.PipelineTasks)),
		Consent: usage.Consent(c.DataTracking, req.ControlConfig),
	}

	payload := req.InputData.Clone()
	for i, stage := range req.PipelineTasks {
		state.Index = i

		if cc := stage.ControlConfig; cc != nil && cc.DataTracking != nil {
			state.Consent = c.DataTracking && *cc.DataTracking
		}

		out, err := o.runStage(ctx, c, state, stage, payload)
		if err != nil {
			return nil, err
		}

		state.Results = append(state.Results, out.Clone())

		if i+1 < len(req.PipelineTasks) {
			next := req.PipelineTasks[i+1].TaskType
			rewire, ok := RewireFor(stage.TaskType, next)
			if !ok {
				return nil, apperr.Server(apperr.KindInternal, "missing stage adapter",
					fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, stage.TaskType, next))
			}

			if payload, err = rewire(out); err != nil {
				return nil, apperr.Server(apperr.KindInternal, "failed to pass stage output", err)
			}
		}
	}

	return &InferenceResponse{PipelineResponse: state.Results}, nil
}

func (o *Orchestrator) runStage(ctx context.Context, c caller.Caller, state *State, stage Stage, payload task.Payload) (task.Output, error) {
	cfg := stage.Config.Clone()
	if cfg.ServiceID == "" {
		cfg.ServiceID = o.selector.Select(stage.TaskType, cfg.Language.SourceLanguage)
	}
	if cfg.ServiceID == "" {
		return nil, apperr.Client(apperr.KindInvalidInput,
			fmt.Sprintf("no service for %s stage %d", stage.TaskType, state.Index),
			fmt.Errorf("%w: %s", ErrNoService, stage.TaskType))
	}

	stageReq := &task.Request{
		ControlConfig: stage.ControlConfig,
		Config:        cfg,
		Payload:       payload,
	}

	start := time.Now()
	out, err := o.runner.Run(ctx, stage.TaskType, cfg.ServiceID, stageReq)

	var recorded any
	if err == nil {
		recorded = out
	}
	o.recorder.Enqueue(usage.NewEvent(c, stage.TaskType, cfg.ServiceID, state.Consent, stageReq, recorded, err, start))

	if err != nil {
		slog.Warn("Pipeline stage failed",
			"stage", state.Index,
			"task", stage.TaskType,
			"service_id", cfg.ServiceID,
			"error", err,
		)
		return nil, err
	}

	return out, nil
}

func stageTypes(stages []Stage) []task.Type {
	types := make([]task.Type, len(stages))
	for i, s := range stages {
		types[i] = s.TaskType
	}
	return types
}
