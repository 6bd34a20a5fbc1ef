package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// A single-neuron genome whose only state slot is taken by the input has
// no slot left to read output from; an empty output slice must be accepted
// without indexing past the state vector.
func TestActivateSingleNeuronEmptyOutputDoesNotPanic(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0, Bias: 0})

	input := []float64{0.5}
	output := make([]float64, 0)
	ActivateN(g, input, output, 50, 1.0)

	// No output slots requested; this just exercises that Activate doesn't
	// panic when output is shorter than the neuron count.
}

func TestActivateWithZeroNeuronsIsANoOp(t *testing.T) {
	g := NewGenome(1)
	output := []float64{1.0, 2.0}
	Activate(g, []float64{1.0}, output)

	require.Equal(t, []float64{1.0, 2.0}, output, "empty genome must leave caller's output slice untouched")
}

func TestActivateOutputReadFromSlotsAfterInput(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0}) // input slot
	g.AddNeuron(&NeuronGene{Key: 1}) // output slot

	output := make([]float64, 1)
	Activate(g, []float64{1.0}, output)

	require.False(t, math.IsNaN(output[0]))
	// Slot 0 holds the input (1.0); slot 1 has no input, bias or incoming
	// connection, so it stays at 0.0 and that is what output[0] must hold.
	require.Equal(t, 0.0, output[0])
}

func TestActivatePadsShortInputWithZero(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0})
	g.AddNeuron(&NeuronGene{Key: 1})
	g.AddNeuron(&NeuronGene{Key: 2})

	output := make([]float64, 1)
	// Only one input value supplied for three neurons: slots 1 and 2 start
	// at zero rather than panicking on an out-of-range index.
	require.NotPanics(t, func() {
		Activate(g, []float64{1.0}, output)
	})
}

func TestActivateTruncatesExcessInput(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0})

	output := make([]float64, 1)
	require.NotPanics(t, func() {
		Activate(g, []float64{1.0, 2.0, 3.0}, output)
	})
}

func TestActivateIsStatelessAcrossCalls(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0, Bias: 0.2})
	g.AddNeuron(&NeuronGene{Key: 1, Bias: -0.1})
	g.AddConnection(&ConnectionGene{Key: ConnectionKey{Source: 0, Sink: 1}, Weight: 0.8, Enabled: true})

	out1 := make([]float64, 1)
	Activate(g, []float64{1.0}, out1)

	out2 := make([]float64, 1)
	Activate(g, []float64{1.0}, out2)

	require.Equal(t, out1, out2, "two calls with identical input must produce identical output, since state never carries across calls")
}

func TestActivateDisabledConnectionHasNoEffect(t *testing.T) {
	g := NewGenome(1)
	g.AddNeuron(&NeuronGene{Key: 0})
	g.AddNeuron(&NeuronGene{Key: 1})
	g.AddConnection(&ConnectionGene{Key: ConnectionKey{Source: 0, Sink: 1}, Weight: 100.0, Enabled: false})

	withDisabled := make([]float64, 1)
	Activate(g, []float64{1.0}, withDisabled)

	bare := NewGenome(1)
	bare.AddNeuron(&NeuronGene{Key: 0})
	bare.AddNeuron(&NeuronGene{Key: 1})
	withoutConn := make([]float64, 1)
	Activate(bare, []float64{1.0}, withoutConn)

	require.Equal(t, withoutConn, withDisabled)
}

func TestScaledLogisticIsBoundedAndClamped(t *testing.T) {
	require.InDelta(t, 0.0, scaledLogistic(-1000), 1e-6)
	require.InDelta(t, 1.0, scaledLogistic(1000), 1e-6)
	require.InDelta(t, 0.5, scaledLogistic(0), 1e-9)
}
