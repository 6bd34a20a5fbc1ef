package neat

import (
	"fmt"
	"math"
	"math/rand"
)

// NeuronGene is a single neuron: a stable id and a bias term. Ids are
// handed out by the population's innovation counter and never reused.
type NeuronGene struct {
	Key  int
	Bias float64
}

// NewNeuronGene creates a neuron gene with bias sampled from the genome
// config's bias distribution.
func NewNeuronGene(key int, config *GenomeConfig) *NeuronGene {
	return &NeuronGene{
		Key:  key,
		Bias: initFloatAttribute(config.BiasInitMean, config.BiasInitStdev, config.BiasMinValue, config.BiasMaxValue),
	}
}

// String returns a string representation of the NeuronGene.
func (ng *NeuronGene) String() string {
	return fmt.Sprintf("NeuronGene(Key: %d, Bias: %.3f)", ng.Key, ng.Bias)
}

// Copy creates a deep copy of the NeuronGene.
func (ng *NeuronGene) Copy() *NeuronGene {
	return &NeuronGene{Key: ng.Key, Bias: ng.Bias}
}

// Mutate adjusts the bias based on mutation rates in the config.
func (ng *NeuronGene) Mutate(config *GenomeConfig) {
	ng.Bias = mutateFloatAttribute(ng.Bias, config.BiasMutateRate, config.BiasReplaceRate, config.BiasMutatePower,
		config.BiasInitMean, config.BiasInitStdev, config.BiasMinValue, config.BiasMaxValue)
}

// Distance is the parameter-distance contribution of this neuron gene: the
// absolute bias difference, scaled by the configured weight coefficient.
func (ng *NeuronGene) Distance(other *NeuronGene, config *GenomeConfig) float64 {
	return math.Abs(ng.Bias-other.Bias) * config.DistanceWeightCoef
}

// Crossover creates a new NeuronGene by randomly inheriting the bias from
// either of the two parents.
func (ng *NeuronGene) Crossover(other *NeuronGene) *NeuronGene {
	child := ng.Copy()
	if rand.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	return child
}

// ConnectionGene represents a connection between two neurons in the genome.
type ConnectionGene struct {
	Key     ConnectionKey
	Weight  float64
	Enabled bool
}

// ConnectionKey identifies a connection gene by its ordered endpoint pair.
// Because neuron ids are never reused, this pair stands in for a separate
// innovation number: two genomes that independently grow the same
// (Source, Sink) connection are historically compatible.
type ConnectionKey struct {
	Source int
	Sink   int
}

// NewConnectionGene creates a new ConnectionGene with weight sampled from
// the genome config's weight distribution. Connections are enabled by
// default.
func NewConnectionGene(key ConnectionKey, config *GenomeConfig) *ConnectionGene {
	cg := &ConnectionGene{
		Key:     key,
		Enabled: true,
	}
	cg.Weight = initFloatAttribute(config.WeightInitMean, config.WeightInitStdev, config.WeightMinValue, config.WeightMaxValue)
	return cg
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Key: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Key.Source, cg.Key.Sink, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	return &ConnectionGene{
		Key:     cg.Key,
		Weight:  cg.Weight,
		Enabled: cg.Enabled,
	}
}

// Mutate adjusts the weight based on mutation rates in the config. Toggling
// is handled by the genome's dedicated toggle mutation step, not here —
// unlike the feed-forward teacher, a CTRNN genome never needs a cycle check
// before re-enabling a connection.
func (cg *ConnectionGene) Mutate(config *GenomeConfig) {
	cg.Weight = mutateFloatAttribute(cg.Weight, config.WeightMutateRate, config.WeightReplaceRate, config.WeightMutatePower,
		config.WeightInitMean, config.WeightInitStdev, config.WeightMinValue, config.WeightMaxValue)
}

// Distance is the parameter-distance contribution of this connection gene:
// the absolute weight difference, scaled by the configured weight
// coefficient.
func (cg *ConnectionGene) Distance(other *ConnectionGene, config *GenomeConfig) float64 {
	return math.Abs(cg.Weight-other.Weight) * config.DistanceWeightCoef
}

// Crossover creates a new ConnectionGene by randomly inheriting weight and
// enabled state from either of the two parents.
func (cg *ConnectionGene) Crossover(other *ConnectionGene) *ConnectionGene {
	child := cg.Copy()
	if rand.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rand.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}

func initFloatAttribute(mean, stdev, minVal, maxVal float64) float64 {
	return clamp(rand.NormFloat64()*stdev+mean, minVal, maxVal)
}

func mutateFloatAttribute(value, mutateRate, replaceRate, mutatePower, initMean, initStdev, minVal, maxVal float64) float64 {
	r := rand.Float64()
	if r < mutateRate {
		return clamp(value+rand.NormFloat64()*mutatePower, minVal, maxVal)
	}
	if r < mutateRate+replaceRate {
		return initFloatAttribute(initMean, initStdev, minVal, maxVal)
	}
	return value
}
