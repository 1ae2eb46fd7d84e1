package vector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Float32SliceToBytes converts a slice of float32 to a byte slice.
func Float32SliceToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)

	// First write the length of the slice
	err := binary.Write(buf, binary.LittleEndian, int32(len(floats)))
	if err != nil {
		return nil, fmt.Errorf("failed to write vector length: %w", err)
	}

	// Then write the float32 values
	err = binary.Write(buf, binary.LittleEndian, floats)
	if err != nil {
		return nil, fmt.Errorf("failed to write vector values: %w", err)
	}

	return buf.Bytes(), nil
}

// BytesToFloat32Slice converts a byte slice to a slice of float32.
func BytesToFloat32Slice(data []byte) ([]float32, error) {
	buf := bytes.NewReader(data)

	// First read the length of the slice
	var length int32
	err := binary.Read(buf, binary.LittleEndian, &length)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector length: %w", err)
	}

	// Then read the float32 values
	floats := make([]float32, length)
	err = binary.Read(buf, binary.LittleEndian, floats)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector values: %w", err)
	}

	return floats, nil
}

// Distance returns the Euclidean (L2) norm of the element-wise difference
// between two embedding vectors. A dimension mismatch is a configuration
// error, not a retryable condition.
//
// The embedding space is assumed to have unit per-dimension variance, so
// the returned scalar maps onto a match confidence
// (https://en.wikipedia.org/wiki/68%E2%80%9395%E2%80%9399.7_rule):
//
//	distance   are-the-same confidence
//	   3.0          0.3%
//	   2.0          4.6%
//	   1.0         31.7%
//	   0.667       50.5%
//	   0.6         55.0%
//	   0.5         61.7%
//	   0.333       73.9%
//	   0.2         84%
//	   0.1         92%
//	   0.01        99.2%
//
// The table is documentation for choosing a stopping threshold; nothing at
// runtime computes confidences.
func Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same dimension: %d != %d", len(a), len(b))
	}

	var sum float64
	for i := 0; i < len(a); i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum), nil
}
