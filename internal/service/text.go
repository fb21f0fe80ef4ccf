package service

import (
	"context"
	"strings"

	"github.com/ekisa-team/lingua/internal/adapter"
	"github.com/ekisa-team/lingua/internal/task"
)

// Translation translates every text input in one backend call.
func (s *Inference) Translation(ctx context.Context, serviceID string, req *task.Request) (*task.TranslationResponse, error) {
	ctx = context.WithoutCancel(ctx)

	svc, model, err := s.resolve(ctx, serviceID, task.Translation)
	if err != nil {
		return nil, err
	}
	if err := checkLanguage(model, req.Config.Language); err != nil {
		return nil, err
	}

	if len(req.Input) == 0 {
		return &task.TranslationResponse{Output: []task.TextPair{}}, nil
	}

	texts := make([]string, len(req.Input))
	for i, in := range req.Input {
		texts[i] = adapter.NormalizeTranslationInput(in.Source)
	}

	resp, err := s.infer(ctx, svc, adapter.Translation(texts, req.Config.Language))
	if err != nil {
		return nil, err
	}

	out, err := adapter.DecodeTranslation(texts, resp)
	if err != nil {
		return nil, malformed(err)
	}

	return out, nil
}

// Transliteration returns ranked candidates for every text input, one
// backend call per input. Blank inputs are returned as their own only
// candidate without a call.
func (s *Inference) Transliteration(ctx context.Context, serviceID string, req *task.Request) (*task.TransliterationResponse, error) {
	ctx = context.WithoutCancel(ctx)

	svc, model, err := s.resolve(ctx, serviceID, task.Transliteration)
	if err != nil {
		return nil, err
	}
	if err := checkLanguage(model, req.Config.Language); err != nil {
		return nil, err
	}

	out := &task.TransliterationResponse{Output: make([]task.TransliterationPair, 0, len(req.Input))}
	for _, in := range req.Input {
		text := adapter.NormalizeTransliterationInput(in.Source)
		if text == "" {
			out.Output = append(out.Output, task.TransliterationPair{Source: in.Source, Target: []string{in.Source}})
			continue
		}

		resp, err := s.infer(ctx, svc, adapter.Transliteration(text, req.Config))
		if err != nil {
			return nil, err
		}

		pair, err := adapter.DecodeTransliteration(text, resp)
		if err != nil {
			return nil, malformed(err)
		}
		out.Output = append(out.Output, pair)
	}

	return out, nil
}

// NER tags named entities in every text input in one backend call.
func (s *Inference) NER(ctx context.Context, serviceID string, req *task.Request) (*task.NERResponse, error) {
	ctx = context.WithoutCancel(ctx)

	svc, model, err := s.resolve(ctx, serviceID, task.NER)
	if err != nil {
		return nil, err
	}
	if err := checkLanguage(model, req.Config.Language); err != nil {
		return nil, err
	}

	if len(req.Input) == 0 {
		return &task.NERResponse{Output: []task.NEROutput{}}, nil
	}

	texts := make([]string, len(req.Input))
	for i, in := range req.Input {
		texts[i] = strings.TrimSpace(in.Source)
	}

	resp, err := s.infer(ctx, svc, adapter.NER(texts, req.Config.Language.SourceLanguage))
	if err != nil {
		return nil, err
	}

	out, err := adapter.DecodeNER(texts, resp)
	if err != nil {
		return nil, malformed(err)
	}

	return out, nil
}
