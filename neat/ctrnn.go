package neat

import "math"

// DefaultCTRNNIterations and DefaultTimeConstant are the fixed evaluation
// parameters: a genome is always integrated for this many Euler steps at
// this time constant, regardless of genome size. Activation is stateless
// across calls — there is no "previous" state to carry forward, each call
// starts from the input vector.
const (
	DefaultCTRNNIterations = 10
	DefaultTimeConstant    = 1.0
)

// Activate decodes g into a CTRNN and runs it for DefaultCTRNNIterations
// Euler steps at DefaultTimeConstant, writing the result into output.
//
// The network state vector is indexed by g.NeuronOrder(): state is
// initialized from input (zero-padded or truncated to fit), updated each
// iteration as
//
//	s <- s + (1/tau) * (W . sigma(s + bias) - s + padded_input)
//
// with sigma the scaled logistic 1 / (1 + exp(-5 * clamp(z, -12, 12))),
// and the output is read back from the state slots immediately following
// the input slots. If fewer neurons remain than len(output) requires, the
// unwritten tail of output is left as the caller supplied it — a benign
// edge case, not an error.
func Activate(g *Genome, input []float64, output []float64) {
	ActivateN(g, input, output, DefaultCTRNNIterations, DefaultTimeConstant)
}

// ActivateN is Activate with an explicit iteration count and time constant,
// exposed for testing and for environments that want finer control.
func ActivateN(g *Genome, input []float64, output []float64, iterations int, tau float64) {
	order := g.NeuronOrder()
	n := len(order)
	if n == 0 {
		return
	}

	index := make(map[int]int, n)
	for i, id := range order {
		index[id] = i
	}

	padded := make([]float64, n)
	for i := 0; i < n && i < len(input); i++ {
		padded[i] = input[i]
	}
	state := append([]float64(nil), padded...)

	bias := make([]float64, n)
	for i, id := range order {
		bias[i] = g.Neurons[id].Bias
	}

	type edge struct {
		row, col int
		weight   float64
	}
	edges := make([]edge, 0, len(g.Connections))
	for _, key := range g.ConnectionOrder() {
		cg := g.Connections[key]
		if !cg.Enabled {
			continue
		}
		row, rowOK := index[key.Sink]
		col, colOK := index[key.Source]
		if !rowOK || !colOK {
			continue
		}
		edges = append(edges, edge{row: row, col: col, weight: cg.Weight})
	}

	sigma := make([]float64, n)
	wsigma := make([]float64, n)
	next := make([]float64, n)

	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < n; i++ {
			sigma[i] = scaledLogistic(state[i] + bias[i])
		}
		for i := range wsigma {
			wsigma[i] = 0
		}
		for _, e := range edges {
			wsigma[e.row] += e.weight * sigma[e.col]
		}
		for i := 0; i < n; i++ {
			next[i] = state[i] + (wsigma[i]-state[i]+padded[i])/tau
		}
		state, next = next, state
	}

	k := len(input)
	if k > n {
		k = n
	}
	for i := 0; i < len(output) && k+i < n; i++ {
		output[i] = state[k+i]
	}
}

func scaledLogistic(z float64) float64 {
	z = clamp(z, -12, 12)
	return 1.0 / (1.0 + math.Exp(-5*z))
}
