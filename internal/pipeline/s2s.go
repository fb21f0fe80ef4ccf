package pipeline

import (
	"context"
	"fmt"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/task"
)

// Preset fixes the services of a speech-to-speech pipeline. ASR and TTS
// services come from the orchestrator's selector unless overridden for the
// source language.
type Preset struct {
	Name        string
	ASR         map[string]string
	Translation string
}

// Speech-to-speech presets.
var (
	PresetS2S = Preset{
		Name:        "s2s",
		ASR:         map[string]string{"en": "ai4bharat/conformer-en-gpu--t4"},
		Translation: "ai4bharat/indictrans-fairseq-all-gpu--t4",
	}

	PresetS2SNewMT = Preset{
		Name:        "s2s_new_mt",
		Translation: "ai4bharat/indictrans-v2-all-gpu--t4",
	}
)

// SpeechRequest is a speech-to-speech request: audio in the source
// language becomes speech in the target language.
type SpeechRequest struct {
	ControlConfig *task.ControlConfig `json:"controlConfig,omitempty"`
	Config        task.Config         `json:"config"`
	Audio         []task.Audio        `json:"audio"`
}

// SpeechResponse pairs each transcript with its translation and carries
// the synthesized audio.
type SpeechResponse struct {
	Output []task.TextPair     `json:"output"`
	Audio  []task.AudioContent `json:"audio"`
	Config task.AudioConfig    `json:"config"`
}

// Stages builds the ASR, translation and TTS stages of p for cfg.
func (o *Orchestrator) Stages(p Preset, cfg task.Config) []Stage {
	src, tgt := cfg.Language.SourceLanguage, cfg.Language.TargetLanguage

	asr := cfg.Clone()
	asr.ServiceID = p.ASR[src]
	if asr.ServiceID == "" {
		asr.ServiceID = o.selector.Select(task.ASR, src)
	}

	translation := cfg.Clone()
	translation.ServiceID = p.Translation

	tts := cfg.Clone()
	tts.Language = task.Language{SourceLanguage: tgt, SourceScriptCode: cfg.Language.TargetScriptCode}
	tts.ServiceID = o.selector.Select(task.TTS, tgt)

	return []Stage{
		{TaskType: task.ASR, Config: asr},
		{TaskType: task.Translation, Config: translation},
		{TaskType: task.TTS, Config: tts},
	}
}

// SpeechToSpeech runs the preset pipeline over req.
func (o *Orchestrator) SpeechToSpeech(ctx context.Context, p Preset, req *SpeechRequest) (*SpeechResponse, error) {
	resp, err := o.Run(ctx, &InferenceRequest{
		PipelineTasks: o.Stages(p, req.Config),
		InputData:     task.Payload{Audio: req.Audio},
		ControlConfig: req.ControlConfig,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.PipelineResponse) != 3 {
		return nil, apperr.Server(apperr.KindInternal, "incomplete speech pipeline",
			fmt.Errorf("pipeline: %s produced %d outputs", p.Name, len(resp.PipelineResponse)))
	}

	translation, ok := resp.PipelineResponse[1].(*task.TranslationResponse)
	if !ok {
		return nil, apperr.Server(apperr.KindInternal, "unexpected translation output", nil)
	}
	speech, ok := resp.PipelineResponse[2].(*task.TTSResponse)
	if !ok {
		return nil, apperr.Server(apperr.KindInternal, "unexpected speech output", nil)
	}

	return &SpeechResponse{
		Output: translation.Output,
		Audio:  speech.Audio,
		Config: speech.Config,
	}, nil
}
