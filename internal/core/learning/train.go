package learning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"fedclassroom/internal/core/domain"
)

const (
	DefaultEpochs       = 5
	DefaultLearningRate = 0.01
)

type TrainOptions struct {
	Epochs       int
	LearningRate float64
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.LearningRate <= 0 {
		o.LearningRate = DefaultLearningRate
	}
	return o
}

// Train runs full-batch gradient descent on mean cross-entropy, one step per
// epoch, and returns the loss measured before each step.
func (n *ProductivityNet) Train(samples []domain.Sample, opts TrainOptions) ([]float64, error) {
	if opts.Epochs <= 0 {
		return nil, domain.ErrInvalidEpochs
	}
	if len(samples) == 0 {
		return nil, domain.ErrNoLocalData
	}
	for _, s := range samples {
		if s.Label < 0 || s.Label >= domain.ClassCount {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLabel, s.Label)
		}
	}
	opts = opts.withDefaults()

	losses := make([]float64, 0, opts.Epochs)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		losses = append(losses, n.step(samples, opts.LearningRate))
	}
	return losses, nil
}

func (n *ProductivityNet) step(samples []domain.Sample, lr float64) float64 {
	gradW := make([]*mat.Dense, len(n.layers))
	gradB := make([]*mat.VecDense, len(n.layers))
	for i, d := range n.layers {
		gradW[i] = mat.NewDense(d.out, d.in, nil)
		gradB[i] = mat.NewVecDense(d.out, nil)
	}

	scale := 1 / float64(len(samples))
	loss := 0.0
	for _, s := range samples {
		acts := n.forwardAll(s.Features)
		probs := softmax(mat.Col(nil, 0, acts[len(acts)-1]))
		loss -= math.Log(math.Max(probs[s.Label], 1e-12))

		// dL/dlogits for softmax + cross-entropy
		for k := range probs {
			probs[k] *= scale
		}
		probs[s.Label] -= scale
		delta := mat.NewVecDense(len(probs), probs)

		for li := len(n.layers) - 1; li >= 0; li-- {
			d := n.layers[li]
			in := acts[li]
			gradW[li].RankOne(gradW[li], 1, delta, in)
			gradB[li].AddVec(gradB[li], delta)
			if li == 0 {
				break
			}

			prev := mat.NewVecDense(d.in, nil)
			prev.MulVec(d.w.T(), delta)
			for i := 0; i < d.in; i++ {
				if in.AtVec(i) <= 0 {
					prev.SetVec(i, 0) // relu gate
				}
			}
			delta = prev
		}
	}

	for i, d := range n.layers {
		gradW[i].Scale(-lr, gradW[i])
		d.w.Add(d.w, gradW[i])
		d.b.AddScaledVec(d.b, -lr, gradB[i])
	}
	return loss * scale
}

// Loss returns the mean cross-entropy over samples without updating weights.
func (n *ProductivityNet) Loss(samples []domain.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	loss := 0.0
	for _, s := range samples {
		probs := softmax(n.Forward(s.Features))
		loss -= math.Log(math.Max(probs[s.Label], 1e-12))
	}
	return loss / float64(len(samples))
}

// Accuracy returns the fraction of samples classified correctly, 0 for none.
func (n *ProductivityNet) Accuracy(samples []domain.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for _, s := range samples {
		if n.Predict(s.Features) == s.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}
