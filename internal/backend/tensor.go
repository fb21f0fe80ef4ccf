package backend

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Datatype is a tensor element type as named by the KServe v2 protocol.
type Datatype string

const (
	DatatypeBytes Datatype = "BYTES"
	DatatypeFP32  Datatype = "FP32"
	DatatypeINT32 Datatype = "INT32"
	DatatypeBool  Datatype = "BOOL"
	DatatypeUINT8 Datatype = "UINT8"
)

// Tensor is a named, typed, shaped tensor in raw little-endian form.
// BYTES elements are each prefixed by their 4-byte little-endian length.
type Tensor struct {
	Name     string
	Datatype Datatype
	Shape    []int64
	Raw      []byte
}

// BytesTensor builds a BYTES tensor from UTF-8 strings.
func BytesTensor(name string, shape []int64, values ...string) Tensor {
	size := 0
	for _, v := range values {
		size += 4 + len(v)
	}

	raw := make([]byte, 0, size)
	for _, v := range values {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(len(v)))
		raw = append(raw, v...)
	}

	return Tensor{Name: name, Datatype: DatatypeBytes, Shape: shape, Raw: raw}
}

// FP32Tensor builds an FP32 tensor.
func FP32Tensor(name string, shape []int64, values []float32) Tensor {
	raw := make([]byte, 0, 4*len(values))
	for _, v := range values {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}

	return Tensor{Name: name, Datatype: DatatypeFP32, Shape: shape, Raw: raw}
}

// INT32Tensor builds an INT32 tensor.
func INT32Tensor(name string, shape []int64, values []int32) Tensor {
	raw := make([]byte, 0, 4*len(values))
	for _, v := range values {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(v))
	}

	return Tensor{Name: name, Datatype: DatatypeINT32, Shape: shape, Raw: raw}
}

// BoolTensor builds a BOOL tensor.
func BoolTensor(name string, shape []int64, values ...bool) Tensor {
	raw := make([]byte, len(values))
	for i, v := range values {
		if v {
			raw[i] = 1
		}
	}

	return Tensor{Name: name, Datatype: DatatypeBool, Shape: shape, Raw: raw}
}

// UINT8Tensor builds a UINT8 tensor.
func UINT8Tensor(name string, shape []int64, values ...uint8) Tensor {
	return Tensor{Name: name, Datatype: DatatypeUINT8, Shape: shape, Raw: append([]byte(nil), values...)}
}

// Strings decodes a BYTES tensor.
func (t Tensor) Strings() ([]string, error) {
	if t.Datatype != DatatypeBytes {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrDatatypeMismatch, t.Name, t.Datatype, DatatypeBytes)
	}

	var out []string
	raw := t.Raw
	for len(raw) > 0 {
		if len(raw) < 4 {
			return nil, fmt.Errorf("%w: %s: truncated length prefix", ErrMalformedTensor, t.Name)
		}

		n := binary.LittleEndian.Uint32(raw)
		raw = raw[4:]
		if uint64(n) > uint64(len(raw)) {
			return nil, fmt.Errorf("%w: %s: element of %d bytes exceeds remaining %d", ErrMalformedTensor, t.Name, n, len(raw))
		}

		out = append(out, string(raw[:n]))
		raw = raw[n:]
	}

	return out, nil
}

// Float32s decodes an FP32 tensor.
func (t Tensor) Float32s() ([]float32, error) {
	if t.Datatype != DatatypeFP32 {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrDatatypeMismatch, t.Name, t.Datatype, DatatypeFP32)
	}
	if len(t.Raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %s: %d bytes is not a multiple of 4", ErrMalformedTensor, t.Name, len(t.Raw))
	}

	out := make([]float32, len(t.Raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.Raw[4*i:]))
	}

	return out, nil
}
