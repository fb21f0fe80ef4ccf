package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/config"
	"github.com/ekisa-team/lingua/internal/task"
	"github.com/ekisa-team/lingua/internal/usage"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, t task.Type, serviceID string, req *task.Request) (task.Output, error) {
	args := m.Called(ctx, t, serviceID, req)
	out, _ := args.Get(0).(task.Output)
	return out, args.Error(1)
}

type recorder struct {
	mu     sync.Mutex
	events []usage.Event
}

func (r *recorder) Enqueue(ev usage.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func boolPtr(b bool) *bool { return &b }

func newOrchestrator(r Runner, rec Recorder, opts ...Option) *Orchestrator {
	return New(r, NewSelector(config.DefaultAutoSelect()), rec, opts...)
}

func TestCanFollow_CrossProduct(t *testing.T) {
	allowed := map[edge]bool{
		{task.ASR, task.Translation}:             true,
		{task.Translation, task.TTS}:             true,
		{task.Transliteration, task.Translation}: true,
		{task.Transliteration, task.TTS}:         true,
	}

	for _, from := range task.All() {
		for _, to := range task.All() {
			want := allowed[edge{from, to}]
			assert.Equal(t, want, CanFollow(from, to), "%s -> %s", from, to)

			_, ok := RewireFor(from, to)
			assert.Equal(t, want, ok, "adapter for %s -> %s", from, to)
		}
	}
}

func TestValidate(t *testing.T) {
	sentence := task.Config{IsSentence: boolPtr(true)}
	word := task.Config{IsSentence: boolPtr(false)}

	assert.ErrorIs(t, Validate(nil), ErrEmptyPipeline)
	assert.NoError(t, Validate([]Stage{{TaskType: task.TTS}}))
	assert.NoError(t, Validate([]Stage{{TaskType: task.Transliteration}}))
	assert.NoError(t, Validate([]Stage{{TaskType: task.ASR}, {TaskType: task.Translation}, {TaskType: task.TTS}}))
	assert.NoError(t, Validate([]Stage{{TaskType: task.Transliteration, Config: sentence}, {TaskType: task.TTS}}))

	assert.ErrorIs(t, Validate([]Stage{{TaskType: task.TTS}, {TaskType: task.ASR}}), ErrInvalidTransition)
	assert.ErrorIs(t, Validate([]Stage{{TaskType: task.ASR}, {TaskType: task.TTS}}), ErrInvalidTransition)
	assert.ErrorIs(t, Validate([]Stage{{TaskType: task.Transliteration, Config: word}, {TaskType: task.Translation}}), ErrWordLevelTransliteration)
	assert.ErrorIs(t, Validate([]Stage{{TaskType: task.Transliteration}, {TaskType: task.TTS}}), ErrWordLevelTransliteration)
}

func speechPipeline() *InferenceRequest {
	lang := task.Language{SourceLanguage: "hi", TargetLanguage: "en"}
	return &InferenceRequest{
		PipelineTasks: []Stage{
			{TaskType: task.ASR, Config: task.Config{Language: lang, ServiceID: "asr"}},
			{TaskType: task.Translation, Config: task.Config{Language: lang, ServiceID: "nmt"}},
			{TaskType: task.TTS, Config: task.Config{Language: task.Language{SourceLanguage: "en"}, ServiceID: "tts"}},
		},
		InputData: task.Payload{Audio: []task.Audio{{AudioURI: "https://example.org/a.wav"}}},
	}
}

func inputIs(sources ...string) any {
	return mock.MatchedBy(func(r *task.Request) bool {
		if len(r.Input) != len(sources) {
			return false
		}
		for i, s := range sources {
			if r.Input[i].Source != s {
				return false
			}
		}
		return true
	})
}

func TestRun_ThreeStages(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, "asr", mock.MatchedBy(func(req *task.Request) bool {
		return len(req.Audio) == 1
	})).Return(&task.ASRResponse{Output: []task.Text{{Source: "नमस्ते"}}}, nil).Once()
	r.On("Run", mock.Anything, task.Translation, "nmt", inputIs("नमस्ते")).
		Return(&task.TranslationResponse{Output: []task.TextPair{{Source: "नमस्ते", Target: "hello"}}}, nil).Once()
	r.On("Run", mock.Anything, task.TTS, "tts", inputIs("hello")).
		Return(&task.TTSResponse{Audio: []task.AudioContent{{AudioContent: "UklGRg=="}}}, nil).Once()

	rec := &recorder{}
	resp, err := newOrchestrator(r, rec).Run(context.Background(), speechPipeline())

	require.NoError(t, err)
	require.Len(t, resp.PipelineResponse, 3)
	assert.Equal(t, task.ASR, resp.PipelineResponse[0].TaskType())
	assert.Equal(t, task.Translation, resp.PipelineResponse[1].TaskType())
	assert.Equal(t, task.TTS, resp.PipelineResponse[2].TaskType())

	require.Len(t, rec.events, 3)
	for _, ev := range rec.events {
		assert.Empty(t, ev.Error)
	}
	r.AssertExpectations(t)
}

func TestRun_StopsAtFailingStage(t *testing.T) {
	stageErr := apperr.Server(apperr.KindBackendUnavailable, "inference failed", errors.New("unavailable"))

	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, "asr", mock.Anything).
		Return(&task.ASRResponse{Output: []task.Text{{Source: "नमस्ते"}}}, nil).Once()
	r.On("Run", mock.Anything, task.Translation, "nmt", mock.Anything).Return(nil, stageErr).Once()

	rec := &recorder{}
	resp, err := newOrchestrator(r, rec).Run(context.Background(), speechPipeline())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, stageErr)

	require.Len(t, rec.events, 2)
	assert.Equal(t, task.ASR, rec.events[0].Task)
	assert.Empty(t, rec.events[0].Error)
	assert.Equal(t, task.Translation, rec.events[1].Task)
	assert.Equal(t, "nmt", rec.events[1].ServiceID)
	assert.Equal(t, "BACKEND_UNAVAILABLE_inference failed", rec.events[1].Error)

	r.AssertNotCalled(t, "Run", mock.Anything, task.TTS, mock.Anything, mock.Anything)
}

func TestRun_InvalidOrder(t *testing.T) {
	req := &InferenceRequest{PipelineTasks: []Stage{{TaskType: task.TTS}, {TaskType: task.ASR}}}

	r := new(MockRunner)
	rec := &recorder{}

	resp, err := newOrchestrator(r, rec).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.PipelineResponse)
	assert.NotNil(t, resp.PipelineResponse)
	assert.Empty(t, rec.events)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = newOrchestrator(r, rec, WithStrictValidation(true)).Run(context.Background(), req)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidPipeline))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, rec.events)
}

func TestRun_ConsentAccumulates(t *testing.T) {
	req := speechPipeline()
	req.PipelineTasks[1].ControlConfig = &task.ControlConfig{DataTracking: boolPtr(false)}

	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, mock.Anything, mock.Anything).
		Return(&task.ASRResponse{Output: []task.Text{{Source: "a"}}}, nil)
	r.On("Run", mock.Anything, task.Translation, mock.Anything, mock.Anything).
		Return(&task.TranslationResponse{Output: []task.TextPair{{Source: "a", Target: "b"}}}, nil)
	r.On("Run", mock.Anything, task.TTS, mock.Anything, mock.Anything).
		Return(&task.TTSResponse{}, nil)

	ctx := caller.WithCaller(context.Background(), caller.Caller{APIKeyID: "key", IP: "10.0.0.2", DataTracking: true})

	rec := &recorder{}
	_, err := newOrchestrator(r, rec).Run(ctx, req)
	require.NoError(t, err)

	require.Len(t, rec.events, 3)
	assert.True(t, rec.events[0].Consent)
	assert.NotEmpty(t, rec.events[0].Request)
	assert.False(t, rec.events[1].Consent)
	assert.NotEmpty(t, rec.events[1].Request)
	assert.NotEmpty(t, rec.events[1].Response)
	assert.False(t, rec.events[2].Consent)
	assert.Equal(t, "10.0.0.2", rec.events[2].CallerIP)
	assert.Equal(t, "key", rec.events[2].APIKeyID)

	rec = &recorder{}
	_, err = newOrchestrator(r, rec).Run(context.Background(), speechPipeline())
	require.NoError(t, err)
	for _, ev := range rec.events {
		assert.False(t, ev.Consent)
	}
}

func TestRun_ResultsAreCopies(t *testing.T) {
	asr := &task.ASRResponse{Output: []task.Text{{Source: "original"}}}

	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, mock.Anything, mock.Anything).Return(asr, nil)

	resp, err := newOrchestrator(r, &recorder{}).Run(context.Background(), &InferenceRequest{
		PipelineTasks: []Stage{{TaskType: task.ASR, Config: task.Config{ServiceID: "asr"}}},
	})
	require.NoError(t, err)

	asr.Output[0].Source = "mutated"
	assert.Equal(t, "original", resp.PipelineResponse[0].(*task.ASRResponse).Output[0].Source)
}

func TestRun_AutoSelectsServices(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, "ai4bharat/conformer-multilingual-dravidian-gpu--t4", mock.MatchedBy(func(req *task.Request) bool {
		return req.Config.ServiceID == "ai4bharat/conformer-multilingual-dravidian-gpu--t4"
	})).Return(&task.ASRResponse{}, nil).Once()

	req := &InferenceRequest{PipelineTasks: []Stage{{
		TaskType: task.ASR,
		Config:   task.Config{Language: task.Language{SourceLanguage: "ta"}},
	}}}

	_, err := newOrchestrator(r, &recorder{}).Run(context.Background(), req)
	require.NoError(t, err)
	r.AssertExpectations(t)

	// No NER service is configured by default.
	rec := &recorder{}
	_, err = newOrchestrator(r, rec).Run(context.Background(), &InferenceRequest{PipelineTasks: []Stage{{TaskType: task.NER}}})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	assert.ErrorIs(t, err, ErrNoService)
	assert.Empty(t, rec.events)
}

func TestRewire(t *testing.T) {
	r, _ := RewireFor(task.Transliteration, task.Translation)
	payload, err := r(&task.TransliterationResponse{Output: []task.TransliterationPair{
		{Source: "namaste", Target: []string{"नमस्ते", "नमस्ती"}},
		{Source: "x", Target: []string{}},
	}})
	require.NoError(t, err)
	assert.Equal(t, []task.Text{{Source: "नमस्ते"}, {Source: ""}}, payload.Input)

	_, err = r(&task.ASRResponse{})
	assert.Error(t, err)
}

func TestSelector_Update(t *testing.T) {
	s := NewSelector(config.DefaultAutoSelect())
	assert.Equal(t, "ai4bharat/conformer-hi-gpu--t4", s.Select(task.ASR, "HI"))
	assert.Equal(t, "ai4bharat/indic-tts-coqui-misc-gpu--t4", s.Select(task.TTS, "mni"))
	assert.Empty(t, s.Select(task.NER, "en"))

	s.Update(config.AutoSelectConfig{NER: config.Selection{Default: "ai4bharat/indicner--cpu"}})
	assert.Equal(t, "ai4bharat/indicner--cpu", s.Select(task.NER, "en"))
	assert.Empty(t, s.Select(task.ASR, "hi"))
}

func TestSpeechToSpeech(t *testing.T) {
	cfg := task.Config{Language: task.Language{SourceLanguage: "en", TargetLanguage: "ta"}, Gender: "male"}

	r := new(MockRunner)
	r.On("Run", mock.Anything, task.ASR, "ai4bharat/conformer-en-gpu--t4", mock.Anything).
		Return(&task.ASRResponse{Output: []task.Text{{Source: "hello"}}}, nil).Once()
	r.On("Run", mock.Anything, task.Translation, "ai4bharat/indictrans-fairseq-all-gpu--t4", inputIs("hello")).
		Return(&task.TranslationResponse{Output: []task.TextPair{{Source: "hello", Target: "வணக்கம்"}}}, nil).Once()
	r.On("Run", mock.Anything, task.TTS, "ai4bharat/indic-tts-coqui-dravidian-gpu--t4", mock.MatchedBy(func(req *task.Request) bool {
		return req.Config.Language.SourceLanguage == "ta" && req.Config.Gender == "male" && req.Input[0].Source == "வணக்கம்"
	})).Return(&task.TTSResponse{
		Audio:  []task.AudioContent{{AudioContent: "UklGRg=="}},
		Config: task.AudioConfig{AudioFormat: "wav", Encoding: "base64", SamplingRate: 22050},
	}, nil).Once()

	rec := &recorder{}
	resp, err := newOrchestrator(r, rec).SpeechToSpeech(context.Background(), PresetS2S, &SpeechRequest{
		Config: cfg,
		Audio:  []task.Audio{{AudioContent: "UklGRg=="}},
	})

	require.NoError(t, err)
	assert.Equal(t, []task.TextPair{{Source: "hello", Target: "வணக்கம்"}}, resp.Output)
	assert.Equal(t, "UklGRg==", resp.Audio[0].AudioContent)
	assert.Equal(t, 22050, resp.Config.SamplingRate)
	assert.Len(t, rec.events, 3)
	r.AssertExpectations(t)
}

func TestStages_NewMTPreset(t *testing.T) {
	o := newOrchestrator(new(MockRunner), &recorder{})
	stages := o.Stages(PresetS2SNewMT, task.Config{Language: task.Language{SourceLanguage: "en", TargetLanguage: "hi"}})

	require.Len(t, stages, 3)
	assert.Equal(t, "ai4bharat/whisper-medium-en--gpu--t4", stages[0].Config.ServiceID)
	assert.Equal(t, "ai4bharat/indictrans-v2-all-gpu--t4", stages[1].Config.ServiceID)
	assert.Equal(t, "ai4bharat/indic-tts-coqui-indo_aryan-gpu--t4", stages[2].Config.ServiceID)
	assert.NoError(t, Validate(stages))
}
