package task

// Output is the result of one task. It is a closed set: only the response
// types in this package implement it.
type Output interface {
	// TaskType returns the task that produced the output.
	TaskType() Type

	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Output

	isOutput()
}

// TextPair is a translation result.
type TextPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// TranslationResponse is the output of a translation task.
type TranslationResponse struct {
	Output []TextPair `json:"output"`
}

func (*TranslationResponse) TaskType() Type { return Translation }
func (*TranslationResponse) isOutput()      {}

// Clone implements Output.
func (r *TranslationResponse) Clone() Output {
	return &TranslationResponse{Output: append([]TextPair(nil), r.Output...)}
}

// TransliterationPair is a source string and its ranked candidates.
type TransliterationPair struct {
	Source string   `json:"source"`
	Target []string `json:"target"`
}

// TransliterationResponse is the output of a transliteration task.
type TransliterationResponse struct {
	Output []TransliterationPair `json:"output"`
}

func (*TransliterationResponse) TaskType() Type { return Transliteration }
func (*TransliterationResponse) isOutput()      {}

// Clone implements Output.
func (r *TransliterationResponse) Clone() Output {
	out := make([]TransliterationPair, len(r.Output))
	for i, p := range r.Output {
		out[i] = TransliterationPair{Source: p.Source, Target: append([]string(nil), p.Target...)}
	}
	return &TransliterationResponse{Output: out}
}

// ASRResponse is the output of a speech recognition task, one text per audio input.
type ASRResponse struct {
	Output []Text `json:"output"`
}

func (*ASRResponse) TaskType() Type { return ASR }
func (*ASRResponse) isOutput()      {}

// Clone implements Output.
func (r *ASRResponse) Clone() Output {
	return &ASRResponse{Output: append([]Text(nil), r.Output...)}
}

// AudioContent is one synthesised clip, base64 encoded.
type AudioContent struct {
	AudioContent string `json:"audioContent"`
}

// AudioConfig describes synthesised audio.
type AudioConfig struct {
	Language     Language `json:"language"`
	AudioFormat  string   `json:"audioFormat"`
	Encoding     string   `json:"encoding"`
	SamplingRate int      `json:"samplingRate"`
}

// TTSResponse is the output of a speech synthesis task.
type TTSResponse struct {
	Audio  []AudioContent `json:"audio"`
	Config AudioConfig    `json:"config"`
}

func (*TTSResponse) TaskType() Type { return TTS }
func (*TTSResponse) isOutput()      {}

// Clone implements Output.
func (r *TTSResponse) Clone() Output {
	return &TTSResponse{Audio: append([]AudioContent(nil), r.Audio...), Config: r.Config}
}

// Entity is one recognised named entity.
type Entity struct {
	Token string `json:"token"`
	Tag   string `json:"tag"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// NEROutput holds the entities found in one input.
type NEROutput struct {
	Source        string   `json:"source"`
	NERPrediction []Entity `json:"nerPrediction"`
}

// NERResponse is the output of a named-entity recognition task.
type NERResponse struct {
	Output []NEROutput `json:"output"`
}

func (*NERResponse) TaskType() Type { return NER }
func (*NERResponse) isOutput()      {}

// Clone implements Output.
func (r *NERResponse) Clone() Output {
	out := make([]NEROutput, len(r.Output))
	for i, o := range r.Output {
		out[i] = NEROutput{Source: o.Source, NERPrediction: append([]Entity(nil), o.NERPrediction...)}
	}
	return &NERResponse{Output: out}
}
