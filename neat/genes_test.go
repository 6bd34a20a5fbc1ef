package neat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNeuronGeneWithinBounds(t *testing.T) {
	config := testConfig()
	for i := 0; i < 200; i++ {
		ng := NewNeuronGene(i, &config.Genome)
		require.GreaterOrEqual(t, ng.Bias, config.Genome.BiasMinValue)
		require.LessOrEqual(t, ng.Bias, config.Genome.BiasMaxValue)
	}
}

func TestNeuronGeneCopyIsIndependent(t *testing.T) {
	ng := &NeuronGene{Key: 3, Bias: 0.5}
	cp := ng.Copy()
	cp.Bias = 9.0

	require.Equal(t, 0.5, ng.Bias, "copy must not alias the original")
	require.Equal(t, 3, cp.Key)
}

func TestNeuronGeneDistanceIsScaledAbsoluteDifference(t *testing.T) {
	config := testConfig()
	a := &NeuronGene{Key: 1, Bias: 1.0}
	b := &NeuronGene{Key: 1, Bias: -1.0}

	got := a.Distance(b, &config.Genome)
	want := 2.0 * config.Genome.DistanceWeightCoef
	require.InDelta(t, want, got, 1e-9)
}

func TestNeuronGeneCrossoverInheritsFromOneParent(t *testing.T) {
	a := &NeuronGene{Key: 1, Bias: 1.0}
	b := &NeuronGene{Key: 1, Bias: 2.0}

	for i := 0; i < 50; i++ {
		child := a.Crossover(b)
		require.True(t, child.Bias == a.Bias || child.Bias == b.Bias)
	}
}

func TestConnectionGeneEnabledByDefault(t *testing.T) {
	config := testConfig()
	cg := NewConnectionGene(ConnectionKey{Source: 0, Sink: 1}, &config.Genome)
	require.True(t, cg.Enabled)
}

func TestConnectionGeneCrossoverCanInheritEnabledFromEitherParent(t *testing.T) {
	a := &ConnectionGene{Key: ConnectionKey{Source: 0, Sink: 1}, Weight: 1.0, Enabled: true}
	b := &ConnectionGene{Key: ConnectionKey{Source: 0, Sink: 1}, Weight: -1.0, Enabled: false}

	sawTrue, sawFalse := false, false
	for i := 0; i < 100; i++ {
		child := a.Crossover(b)
		if child.Enabled {
			sawTrue = true
		} else {
			sawFalse = true
		}
	}
	require.True(t, sawTrue && sawFalse, "crossover should be able to produce both enabled states over many trials")
}

func TestMutateFloatAttributeStaysWithinBounds(t *testing.T) {
	value := 0.0
	for i := 0; i < 500; i++ {
		value = mutateFloatAttribute(value, 0.8, 0.1, 5.0, 0.0, 1.0, -3.0, 3.0)
		require.GreaterOrEqual(t, value, -3.0)
		require.LessOrEqual(t, value, 3.0)
	}
}
