package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ArchitectureProductivityNet identifies the 5 -> 32 -> 16 -> 2 activity classifier.
const ArchitectureProductivityNet = "productivity-net/v1"

// Tensor is a dense row-major parameter block.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Size returns the element count implied by Shape.
func (t Tensor) Size() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Valid reports whether Data is consistent with Shape.
func (t Tensor) Valid() bool {
	for _, d := range t.Shape {
		if d <= 0 {
			return false
		}
	}
	return len(t.Shape) > 0 && len(t.Data) == t.Size()
}

func (t Tensor) Clone() Tensor {
	shape := make([]int, len(t.Shape))
	copy(shape, t.Shape)
	data := make([]float64, len(t.Data))
	copy(data, t.Data)
	return Tensor{Shape: shape, Data: data}
}

// ModelState is the serialized weight container exchanged with the server,
// keyed by parameter name (fc1.weight, fc1.bias, ...).
type ModelState map[string]Tensor

// Keys returns the parameter names in sorted order.
func (s ModelState) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParameterCount returns the total number of scalar parameters.
func (s ModelState) ParameterCount() int {
	n := 0
	for _, t := range s {
		n += len(t.Data)
	}
	return n
}

func (s ModelState) Clone() ModelState {
	out := make(ModelState, len(s))
	for k, t := range s {
		out[k] = t.Clone()
	}
	return out
}

// SameLayout reports whether other has exactly the same parameter names and shapes.
func (s ModelState) SameLayout(other ModelState) bool {
	if len(s) != len(other) {
		return false
	}
	for k, t := range s {
		o, ok := other[k]
		if !ok || len(o.Shape) != len(t.Shape) {
			return false
		}
		for i := range t.Shape {
			if t.Shape[i] != o.Shape[i] {
				return false
			}
		}
		if !o.Valid() {
			return false
		}
	}
	return true
}

// GlobalModel is the server-side shared model handed to clients.
type GlobalModel struct {
	Version      string     `json:"version"`
	Architecture string     `json:"architecture"`
	State        ModelState `json:"model_state"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LocalUpdate is a set of locally trained weights received from a client.
type LocalUpdate struct {
	ID             uuid.UUID  `json:"id"`
	ModelVersion   string     `json:"model_version"`
	State          ModelState `json:"model_state"`
	LocalAccuracy  float64    `json:"local_accuracy"`
	ParameterCount int        `json:"parameter_count"`
	ReceivedAt     time.Time  `json:"received_at"`
}
