// Package envelope frames encoded tensors with the layout they were encoded
// with, so that another process can check it before decoding.
package envelope

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/born-ml/structtensor/internal/tensor"
)

var (
	// ErrLayoutMismatch means the tensor was encoded with a different layout.
	ErrLayoutMismatch = errors.New("envelope: layout fingerprint mismatch")
	// ErrCorrupt means the envelope is malformed.
	ErrCorrupt = errors.New("envelope: corrupt")
)

// Envelope is the wire form of an encoded tensor. Data holds the elements
// in host byte order, row-major.
type Envelope struct {
	Fingerprint uint64 `msgpack:"fp"`
	DType       string `msgpack:"dtype"`
	Shape       []int  `msgpack:"shape"`
	Data        []byte `msgpack:"data"`
}

// Marshal frames x under the layout fingerprint fp.
func Marshal(x *tensor.RawTensor, fp uint64) ([]byte, error) {
	env := Envelope{
		Fingerprint: fp,
		DType:       x.DType().String(),
		Shape:       x.Shape(),
		Data:        x.Data(),
	}

	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	err := enc.Encode(&env)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("envelope: encode %v: %w", x, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses an envelope and copies its data into a new CPU tensor.
// The envelope must carry the fingerprint fp.
func Unmarshal(data []byte, fp uint64) (*tensor.RawTensor, error) {
	env, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if env.Fingerprint != fp {
		return nil, fmt.Errorf("%w: want %016x, got %016x", ErrLayoutMismatch, fp, env.Fingerprint)
	}
	return env.Tensor()
}

// Parse decodes an envelope without checking its fingerprint.
func Parse(data []byte) (*Envelope, error) {
	var env Envelope
	r := bytes.NewReader(data)
	dec := msgpack.GetDecoder()
	dec.Reset(r)
	err := dec.Decode(&env)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &env, nil
}

// Tensor copies the envelope's data into a new CPU tensor.
func (env *Envelope) Tensor() (*tensor.RawTensor, error) {
	dtype, err := tensor.ParseDataType(env.DType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	x, err := tensor.NewRaw(env.Shape, dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(env.Data) != x.ByteSize() {
		return nil, fmt.Errorf("%w: %d data bytes for %v", ErrCorrupt, len(env.Data), x)
	}
	copy(x.Data(), env.Data)
	return x, nil
}
