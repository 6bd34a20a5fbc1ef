// Package matrixeval is a gonum/mat-backed CTRNN evaluator, numerically
// equivalent to neat.ActivateN but built from a dense weight matrix rather
// than a sparse edge list. It exists as the optimization path for
// environments that evaluate the same genome many times per generation
// (batched fitness scoring, trajectory rollouts), where gonum's BLAS-backed
// matrix-vector product amortizes the cost of building the dense form.
package matrixeval

import (
	"math"

	"github.com/nrgx/neat/neat"
	"gonum.org/v1/gonum/mat"
)

// Iterations and TimeConstant mirror neat.DefaultCTRNNIterations and
// neat.DefaultTimeConstant.
const (
	Iterations   = 10
	TimeConstant = 1.0
)

// Activate decodes g into a dense N×N weight matrix and bias vector, then
// runs Iterations Euler steps of the same update rule as neat.Activate:
//
//	s <- s + (1/tau) * (W . sigma(s + bias) - s + padded_input)
//
// writing the result into output. Semantics (state layout, padding,
// output slicing) match neat.ActivateN exactly.
func Activate(g *neat.Genome, input []float64, output []float64) {
	order := g.NeuronOrder()
	n := len(order)
	if n == 0 {
		return
	}

	index := make(map[int]int, n)
	for i, id := range order {
		index[id] = i
	}

	w := mat.NewDense(n, n, nil)
	for _, key := range g.ConnectionOrder() {
		cg := g.Connections[key]
		if !cg.Enabled {
			continue
		}
		row, rowOK := index[key.Sink]
		col, colOK := index[key.Source]
		if rowOK && colOK {
			w.Set(row, col, cg.Weight)
		}
	}

	bias := mat.NewVecDense(n, nil)
	for i, id := range order {
		bias.SetVec(i, g.Neurons[id].Bias)
	}

	padded := mat.NewVecDense(n, nil)
	for i := 0; i < n && i < len(input); i++ {
		padded.SetVec(i, input[i])
	}

	state := mat.VecDenseCopyOf(padded)
	sigma := mat.NewVecDense(n, nil)
	wsigma := mat.NewVecDense(n, nil)

	for iter := 0; iter < Iterations; iter++ {
		for i := 0; i < n; i++ {
			sigma.SetVec(i, scaledLogistic(state.AtVec(i)+bias.AtVec(i)))
		}
		wsigma.MulVec(w, sigma)
		for i := 0; i < n; i++ {
			next := state.AtVec(i) + (wsigma.AtVec(i)-state.AtVec(i)+padded.AtVec(i))/TimeConstant
			state.SetVec(i, next)
		}
	}

	k := len(input)
	if k > n {
		k = n
	}
	for i := 0; i < len(output) && k+i < n; i++ {
		output[i] = state.AtVec(k + i)
	}
}

func scaledLogistic(z float64) float64 {
	if z > 12 {
		z = 12
	} else if z < -12 {
		z = -12
	}
	return 1.0 / (1.0 + math.Exp(-5*z))
}
