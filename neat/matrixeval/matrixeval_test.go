package matrixeval

import (
	"testing"

	"github.com/nrgx/neat/neat"
	"github.com/stretchr/testify/require"
)

func TestActivateMatchesReferenceEvaluator(t *testing.T) {
	g := neat.NewGenome(1)
	g.AddNeuron(&neat.NeuronGene{Key: 0, Bias: 0.2})
	g.AddNeuron(&neat.NeuronGene{Key: 1, Bias: -0.1})
	g.AddNeuron(&neat.NeuronGene{Key: 2, Bias: 0.05})
	g.AddConnection(&neat.ConnectionGene{Key: neat.ConnectionKey{Source: 0, Sink: 1}, Weight: 0.8, Enabled: true})
	g.AddConnection(&neat.ConnectionGene{Key: neat.ConnectionKey{Source: 1, Sink: 2}, Weight: -0.6, Enabled: true})
	g.AddConnection(&neat.ConnectionGene{Key: neat.ConnectionKey{Source: 1, Sink: 1}, Weight: 0.3, Enabled: true})

	input := []float64{1.0}
	reference := make([]float64, 2)
	neat.Activate(g, input, reference)

	dense := make([]float64, 2)
	Activate(g, input, dense)

	require.InDelta(t, reference[0], dense[0], 1e-9)
	require.InDelta(t, reference[1], dense[1], 1e-9)
}

func TestActivateIgnoresDisabledConnections(t *testing.T) {
	g := neat.NewGenome(1)
	g.AddNeuron(&neat.NeuronGene{Key: 0})
	g.AddNeuron(&neat.NeuronGene{Key: 1})
	g.AddConnection(&neat.ConnectionGene{Key: neat.ConnectionKey{Source: 0, Sink: 1}, Weight: 50.0, Enabled: false})

	withDisabled := make([]float64, 1)
	Activate(g, []float64{1.0}, withDisabled)

	bare := neat.NewGenome(1)
	bare.AddNeuron(&neat.NeuronGene{Key: 0})
	bare.AddNeuron(&neat.NeuronGene{Key: 1})
	without := make([]float64, 1)
	Activate(bare, []float64{1.0}, without)

	require.InDelta(t, without[0], withDisabled[0], 1e-9)
}

func TestActivateEmptyGenomeIsNoOp(t *testing.T) {
	g := neat.NewGenome(1)
	output := []float64{7.0}
	Activate(g, []float64{1.0}, output)
	require.Equal(t, []float64{7.0}, output)
}
