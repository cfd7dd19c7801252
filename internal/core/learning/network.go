package learning

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"fedclassroom/internal/core/domain"
)

// layer sizes of the productivity classifier
var productivityLayers = []struct {
	name    string
	in, out int
}{
	{"fc1", domain.FeatureCount, 32},
	{"fc2", 32, 16},
	{"fc3", 16, domain.ClassCount},
}

type dense struct {
	name    string
	in, out int
	w       *mat.Dense    // out x in
	b       *mat.VecDense // out
}

func (d *dense) forward(x mat.Vector) *mat.VecDense {
	y := mat.NewVecDense(d.out, nil)
	y.MulVec(d.w, x)
	y.AddVec(y, d.b)
	return y
}

// ProductivityNet is a three layer ReLU perceptron classifying activity
// features as productive or not.
type ProductivityNet struct {
	layers []*dense
}

// NewProductivityNet returns a freshly initialised network. Weights and biases
// are drawn from U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
func NewProductivityNet(rng *rand.Rand) *ProductivityNet {
	n := &ProductivityNet{}
	for _, l := range productivityLayers {
		bound := 1 / math.Sqrt(float64(l.in))
		w := make([]float64, l.in*l.out)
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * bound
		}
		b := make([]float64, l.out)
		for i := range b {
			b[i] = (rng.Float64()*2 - 1) * bound
		}
		n.layers = append(n.layers, &dense{
			name: l.name,
			in:   l.in,
			out:  l.out,
			w:    mat.NewDense(l.out, l.in, w),
			b:    mat.NewVecDense(l.out, b),
		})
	}
	return n
}

// NewProductivityNetFromState builds a network and strictly loads state into it.
func NewProductivityNetFromState(state domain.ModelState) (*ProductivityNet, error) {
	n := NewProductivityNet(rand.New(rand.NewSource(0)))
	if err := n.LoadState(state); err != nil {
		return nil, err
	}
	return n, nil
}

func weightKey(layer string) string { return layer + ".weight" }
func biasKey(layer string) string   { return layer + ".bias" }

// Layout returns a zero-valued state with the expected names and shapes.
func Layout() domain.ModelState {
	s := make(domain.ModelState, 2*len(productivityLayers))
	for _, l := range productivityLayers {
		s[weightKey(l.name)] = domain.Tensor{Shape: []int{l.out, l.in}, Data: make([]float64, l.out*l.in)}
		s[biasKey(l.name)] = domain.Tensor{Shape: []int{l.out}, Data: make([]float64, l.out)}
	}
	return s
}

// LoadState copies weights from state. Missing keys, unexpected keys and
// shape differences are rejected and leave the network untouched.
func (n *ProductivityNet) LoadState(state domain.ModelState) error {
	if len(state) == 0 {
		return domain.ErrEmptyModelState
	}
	layout := Layout()
	if !layout.SameLayout(state) {
		return fmt.Errorf("%w: expected %s %v, got %v",
			domain.ErrModelShapeMismatch, domain.ArchitectureProductivityNet, layout.Keys(), state.Keys())
	}
	for _, d := range n.layers {
		d.w.Copy(mat.NewDense(d.out, d.in, state[weightKey(d.name)].Data))
		d.b.CopyVec(mat.NewVecDense(d.out, state[biasKey(d.name)].Data))
	}
	return nil
}

// State returns a deep copy of the current weights.
func (n *ProductivityNet) State() domain.ModelState {
	s := make(domain.ModelState, 2*len(n.layers))
	for _, d := range n.layers {
		w := mat.DenseCopyOf(d.w).RawMatrix().Data
		b := mat.Col(nil, 0, d.b)
		s[weightKey(d.name)] = domain.Tensor{Shape: []int{d.out, d.in}, Data: w}
		s[biasKey(d.name)] = domain.Tensor{Shape: []int{d.out}, Data: b}
	}
	return s
}

// Forward returns the class logits for a feature vector.
func (n *ProductivityNet) Forward(x [domain.FeatureCount]float64) []float64 {
	acts := n.forwardAll(x)
	return mat.Col(nil, 0, acts[len(acts)-1])
}

// forwardAll returns the input followed by every layer output; hidden outputs
// are post-ReLU, the last one is raw logits.
func (n *ProductivityNet) forwardAll(x [domain.FeatureCount]float64) []*mat.VecDense {
	acts := make([]*mat.VecDense, 0, len(n.layers)+1)
	h := mat.NewVecDense(domain.FeatureCount, x[:])
	acts = append(acts, h)
	for i, d := range n.layers {
		h = d.forward(h)
		if i < len(n.layers)-1 {
			relu(h)
		}
		acts = append(acts, h)
	}
	return acts
}

// Predict returns the most likely class.
func (n *ProductivityNet) Predict(x [domain.FeatureCount]float64) int {
	return argmax(n.Forward(x))
}

func relu(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}

func argmax(v []float64) int {
	return floats.MaxIdx(v)
}

func softmax(logits []float64) []float64 {
	maxV := floats.Max(logits)
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - maxV)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
