package neat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateInitialPopulationSharesSeedNeuronIDs(t *testing.T) {
	config := testConfig()
	config.Genome.NumInputs = 2
	config.Genome.NumOutputs = 1

	ic := NewInnovationCounter()
	r := NewReproduction(&config.Reproduction, mustStagnation(t, config))
	pop := r.CreateInitialPopulation(&config.Genome, 5, ic)

	require.Len(t, pop, 5)
	var firstOrder []int
	for _, o := range pop {
		if firstOrder == nil {
			firstOrder = append([]int(nil), o.Genome.NeuronOrder()...)
			continue
		}
		require.Equal(t, firstOrder, o.Genome.NeuronOrder(), "every seed genome must share the same neuron ids, in the same order")
	}
	require.Len(t, firstOrder, 3)
	require.Equal(t, 3, ic.Peek(), "innovation counter must have advanced past the shared seed block exactly once")
}

func TestCreateInitialPopulationDefaultsToOneNeuron(t *testing.T) {
	config := testConfig()
	config.Genome.NumInputs = 0
	config.Genome.NumOutputs = 0

	ic := NewInnovationCounter()
	r := NewReproduction(&config.Reproduction, mustStagnation(t, config))
	pop := r.CreateInitialPopulation(&config.Genome, 3, ic)

	for _, o := range pop {
		require.Equal(t, []int{0}, o.Genome.NeuronOrder())
		require.Empty(t, o.Genome.Connections)
	}
}

func TestReproduceReturnsTargetPopulationSize(t *testing.T) {
	config := testConfig()
	ic := NewInnovationCounter()
	r := NewReproduction(&config.Reproduction, mustStagnation(t, config))

	initial := r.CreateInitialPopulation(&config.Genome, 20, ic)
	for _, o := range initial {
		o.Fitness = float64(o.Genome.Key)
	}

	ss := NewSpeciesSet(&config.SpeciesSet)
	require.NoError(t, ss.Speciate(config, initial, 0))

	next, err := r.Reproduce(config, ic, ss, 20, 1)
	require.NoError(t, err)
	require.Len(t, next, 20, "reproduction must always restore the configured population size exactly")
}

func TestComputeSpawnAmountsSumsToPopSize(t *testing.T) {
	amounts := computeSpawnAmounts([]float64{0.1, 0.3, 0.6}, 1.0, []int{5, 5, 5}, 30, 2)

	total := 0
	for _, a := range amounts {
		total += a
	}
	require.Equal(t, 30, total)
}

func TestComputeSpawnAmountsRespectsMinSpeciesSize(t *testing.T) {
	amounts := computeSpawnAmounts([]float64{0.9, 0.1}, 1.0, []int{1, 1}, 10, 3)
	for _, a := range amounts {
		require.GreaterOrEqual(t, a, 3)
	}
}

func mustStagnation(t *testing.T, config *Config) *Stagnation {
	t.Helper()
	s, err := NewStagnation(&config.Stagnation)
	require.NoError(t, err)
	return s
}
