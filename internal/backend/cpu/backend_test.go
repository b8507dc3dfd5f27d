package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/structtensor/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// Compile-time check that CPUBackend satisfies the codec's backend contract.
var _ tensor.Backend = (*CPUBackend)(nil)

func TestCPUBackend_Zeros(t *testing.T) {
	backend := newTestBackend()

	for _, dtype := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int64, tensor.Uint8, tensor.Bool} {
		raw, err := backend.Zeros(tensor.Shape{2, 3}, dtype)
		if err != nil {
			t.Fatalf("Zeros(%s): %v", dtype, err)
		}
		if raw.DType() != dtype {
			t.Errorf("Zeros(%s) dtype = %s", dtype, raw.DType())
		}
		for i := 0; i < raw.NumElements(); i++ {
			if v := backend.ScalarAt(raw, i); v != 0 {
				t.Errorf("Zeros(%s)[%d] = %v, want 0", dtype, i, v)
			}
		}
	}

	if _, err := backend.Zeros(tensor.Shape{-1}, tensor.Float32); err == nil {
		t.Error("Zeros with negative dimension should fail")
	}
}

func TestCPUBackend_Argmax(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		raw, _ := tensor.FromSlice([]float32{5, 0, 1, 3, 3, 2}, tensor.Shape{6})
		if got := backend.Argmax(raw, 1, 6); got != 2 {
			t.Errorf("Argmax = %d, want 2 (first of tied maxima, relative to start)", got)
		}
		if got := backend.Argmax(raw, 0, 6); got != 0 {
			t.Errorf("Argmax = %d, want 0", got)
		}
	})

	t.Run("AllZeroPicksFirst", func(t *testing.T) {
		raw, _ := backend.Zeros(tensor.Shape{4}, tensor.Float64)
		if got := backend.Argmax(raw, 0, 4); got != 0 {
			t.Errorf("Argmax = %d, want 0", got)
		}
	})

	t.Run("Negative", func(t *testing.T) {
		raw, _ := tensor.FromSlice([]int64{-7, -3, -5}, tensor.Shape{3})
		if got := backend.Argmax(raw, 0, 3); got != 1 {
			t.Errorf("Argmax = %d, want 1", got)
		}
	})

	t.Run("NaNSkipped", func(t *testing.T) {
		raw, _ := tensor.FromSlice([]float32{float32(math.NaN()), 0.25, 0.5}, tensor.Shape{3})
		if got := backend.Argmax(raw, 0, 3); got != 2 {
			t.Errorf("Argmax = %d, want 2", got)
		}
	})

	t.Run("Bool", func(t *testing.T) {
		raw, _ := tensor.FromSlice([]bool{false, false, true, true}, tensor.Shape{4})
		if got := backend.Argmax(raw, 0, 4); got != 2 {
			t.Errorf("Argmax = %d, want 2", got)
		}
	})

	t.Run("RowView", func(t *testing.T) {
		raw, _ := tensor.FromSlice([]uint8{0, 9, 0, 0, 0, 7}, tensor.Shape{2, 3})
		row, err := raw.Row(1)
		if err != nil {
			t.Fatal(err)
		}
		if got := backend.Argmax(row, 0, 3); got != 2 {
			t.Errorf("Argmax = %d, want 2", got)
		}
	})

	t.Run("InvalidRangePanics", func(t *testing.T) {
		raw, _ := backend.Zeros(tensor.Shape{3}, tensor.Float32)
		defer func() {
			if recover() == nil {
				t.Error("expected panic for empty range")
			}
		}()
		backend.Argmax(raw, 2, 2)
	})
}

func TestCPUBackend_SetScalar(t *testing.T) {
	backend := newTestBackend()

	tests := []struct {
		name    string
		dtype   tensor.DataType
		value   float64
		wantErr bool
	}{
		{"float32", tensor.Float32, 0.5, false},
		{"float32 overflow", tensor.Float32, 1e300, true},
		{"float64", tensor.Float64, -1e300, false},
		{"int32", tensor.Int32, -42, false},
		{"int32 fractional", tensor.Int32, 1.5, true},
		{"int32 overflow", tensor.Int32, 1 << 40, true},
		{"int64", tensor.Int64, 1 << 40, false},
		{"uint8", tensor.Uint8, 255, false},
		{"uint8 negative", tensor.Uint8, -1, true},
		{"uint8 overflow", tensor.Uint8, 256, true},
		{"bool true", tensor.Bool, 1, false},
		{"bool false", tensor.Bool, 0, false},
		{"bool other", tensor.Bool, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := backend.Zeros(tensor.Shape{2}, tt.dtype)
			err := backend.SetScalar(raw, 1, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SetScalar(%v) into %s: expected error", tt.value, tt.dtype)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetScalar(%v) into %s: %v", tt.value, tt.dtype, err)
			}
			if got := backend.ScalarAt(raw, 1); got != tt.value {
				t.Errorf("ScalarAt = %v, want %v", got, tt.value)
			}
			if got := backend.ScalarAt(raw, 0); got != 0 {
				t.Errorf("neighbour element changed to %v", got)
			}
		})
	}
}
