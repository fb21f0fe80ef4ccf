package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesTensor_LengthPrefixed(t *testing.T) {
	tensor := BytesTensor("INPUT_TEXT", []int64{2, 1}, "hi", "")

	assert.Equal(t, []byte{2, 0, 0, 0, 'h', 'i', 0, 0, 0, 0}, tensor.Raw)

	got, err := tensor.Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", ""}, got)
}

func TestTensor_Strings_Unicode(t *testing.T) {
	got, err := BytesTensor("OUTPUT_TEXT", []int64{1, 1}, "नमस्ते").Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"नमस्ते"}, got)
}

func TestTensor_Strings_Malformed(t *testing.T) {
	_, err := Tensor{Name: "X", Datatype: DatatypeBytes, Raw: []byte{9, 0, 0, 0, 'a'}}.Strings()
	assert.ErrorIs(t, err, ErrMalformedTensor)

	_, err = Tensor{Name: "X", Datatype: DatatypeBytes, Raw: []byte{1, 0}}.Strings()
	assert.ErrorIs(t, err, ErrMalformedTensor)

	_, err = FP32Tensor("X", []int64{1}, []float32{1}).Strings()
	assert.ErrorIs(t, err, ErrDatatypeMismatch)
}

func TestFP32Tensor(t *testing.T) {
	in := []float32{0, 0.5, -1, 3.25}
	tensor := FP32Tensor("AUDIO_SIGNAL", []int64{1, 4}, in)

	assert.Len(t, tensor.Raw, 16)
	assert.Equal(t, []byte{0, 0, 0, 0x3f}, tensor.Raw[4:8])

	got, err := tensor.Float32s()
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestINT32Tensor(t *testing.T) {
	tensor := INT32Tensor("NUM_SAMPLES", []int64{2, 1}, []int32{160000, -1})

	assert.Equal(t, DatatypeINT32, tensor.Datatype)
	assert.Equal(t, []byte{0x00, 0x71, 0x02, 0x00, 0xff, 0xff, 0xff, 0xff}, tensor.Raw)
}

func TestBoolAndUINT8Tensor(t *testing.T) {
	assert.Equal(t, []byte{1, 0}, BoolTensor("IS_WORD_LEVEL", []int64{2, 1}, true, false).Raw)
	assert.Equal(t, []byte{5}, UINT8Tensor("TOP_K", []int64{1, 1}, 5).Raw)
}

func TestResponse_AbsentTensorIsEmpty(t *testing.T) {
	resp := &Response{Outputs: []Tensor{BytesTensor("OUTPUT_TEXT", []int64{1, 1}, "x")}}

	got, err := resp.Strings("TRANSCRIPTS")
	require.NoError(t, err)
	assert.Empty(t, got)

	samples, err := resp.Float32s("OUTPUT_GENERATED_AUDIO")
	require.NoError(t, err)
	assert.Empty(t, samples)

	got, err = resp.Strings("OUTPUT_TEXT")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)

	var nilResp *Response
	_, ok := nilResp.Output("OUTPUT_TEXT")
	assert.False(t, ok)
}
