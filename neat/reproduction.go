package neat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Reproduction creates genomes, both the initial population and each
// generation's offspring, and tracks parent lineage.
type Reproduction struct {
	Config        *ReproductionConfig
	NextGenomeKey int
	Ancestors     map[int][]int
	Stagnation    *Stagnation
}

// NewReproduction creates a new reproduction manager. Genome keys start
// at 1.
func NewReproduction(config *ReproductionConfig, stagnation *Stagnation) *Reproduction {
	return &Reproduction{
		Config:        config,
		NextGenomeKey: 1,
		Ancestors:     make(map[int][]int),
		Stagnation:    stagnation,
	}
}

func (r *Reproduction) getNextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// CreateInitialPopulation builds popSize organisms, each seeded with the
// same block of neuron ids: one neuron per configured input plus one per
// configured output (at least one neuron, if neither is configured), all
// with zero connections. Sharing ids across the initial population is
// what lets crossover recognize them as homologous later on.
func (r *Reproduction) CreateInitialPopulation(genomeConfig *GenomeConfig, popSize int, ic *InnovationCounter) map[int]*Organism {
	n := genomeConfig.NumInputs + genomeConfig.NumOutputs
	if n <= 0 {
		n = 1
	}
	seedIDs := make([]int, n)
	for i := range seedIDs {
		seedIDs[i] = ic.NextNeuronID()
	}

	population := make(map[int]*Organism, popSize)
	for i := 0; i < popSize; i++ {
		key := r.getNextKey()
		g := NewGenome(key)
		for _, id := range seedIDs {
			g.AddNeuron(NewNeuronGene(id, genomeConfig))
		}
		population[key] = NewOrganism(g)
		r.Ancestors[key] = nil
	}
	return population
}

// Reproduce runs one generation of reproduction: filter stagnant species,
// allot offspring counts by adjusted fitness, then fill each surviving
// species with elites plus crossed-over, mutated children.
func (r *Reproduction) Reproduce(overallConfig *Config, ic *InnovationCounter, speciesSet *SpeciesSet, popSize int, generation int) (map[int]*Organism, error) {
	stagnationInfo, err := r.Stagnation.Update(speciesSet, generation)
	if err != nil {
		return nil, fmt.Errorf("failed to update stagnation: %w", err)
	}

	var allFitnesses []float64
	var remainingSpecies []*Species
	for _, info := range stagnationInfo {
		if info.IsStagnant {
			continue
		}
		sp := info.Species
		memberFitnesses := sp.Fitnesses()
		if len(memberFitnesses) == 0 {
			continue
		}
		allFitnesses = append(allFitnesses, memberFitnesses...)
		remainingSpecies = append(remainingSpecies, sp)
	}

	if len(remainingSpecies) == 0 {
		return make(map[int]*Organism), nil
	}

	minFitness := MinFloat(allFitnesses)
	maxFitness := MaxFloat(allFitnesses)
	fitnessRange := math.Max(1.0, maxFitness-minFitness)

	adjustedFitnessSum := 0.0
	for _, sp := range remainingSpecies {
		adjustedFitness := (sp.Fitness - minFitness) / fitnessRange
		sp.AdjustedFitness = adjustedFitness
		adjustedFitnessSum += adjustedFitness
	}

	previousSizes := make([]int, len(remainingSpecies))
	adjustedFitnesses := make([]float64, len(remainingSpecies))
	for i, sp := range remainingSpecies {
		previousSizes[i] = len(sp.Members)
		adjustedFitnesses[i] = sp.AdjustedFitness
	}

	spawnMinSize := maxInt(r.Config.MinSpeciesSize, r.Config.Elitism)
	spawnAmounts := computeSpawnAmounts(adjustedFitnesses, adjustedFitnessSum, previousSizes, popSize, spawnMinSize)

	newPopulation := make(map[int]*Organism)
	newAncestors := make(map[int][]int)

	parentPools := make([][]*Organism, len(remainingSpecies))
	for i, sp := range remainingSpecies {
		members := make([]*Organism, 0, len(sp.Members))
		for _, o := range sp.Members {
			members = append(members, o)
		}
		sort.Slice(members, func(a, b int) bool {
			return members[a].Fitness > members[b].Fitness
		})

		survivorCount := len(members) - int(r.Config.CullFraction*float64(len(members)))
		if survivorCount < 1 {
			survivorCount = 1
		}
		if survivorCount > len(members) {
			survivorCount = len(members)
		}
		parentPools[i] = members[:survivorCount]
	}

	for i, sp := range remainingSpecies {
		spawn := spawnAmounts[i]
		if r.Config.Elitism > spawn {
			spawn = r.Config.Elitism
		}
		if spawn <= 0 {
			continue
		}

		members := make([]*Organism, 0, len(sp.Members))
		for _, o := range sp.Members {
			members = append(members, o)
		}
		sort.Slice(members, func(a, b int) bool {
			return members[a].Fitness > members[b].Fitness
		})

		elitesTaken := 0
		if r.Config.Elitism > 0 {
			for j := 0; j < r.Config.Elitism && j < len(members); j++ {
				elite := members[j]
				newPopulation[elite.Genome.Key] = elite
				newAncestors[elite.Genome.Key] = []int{elite.Genome.Key}
				elitesTaken++
			}
		}
		spawn -= elitesTaken
		if spawn <= 0 {
			continue
		}

		parents := parentPools[i]
		if len(parents) == 0 {
			continue
		}

		for j := 0; j < spawn; j++ {
			parent1 := parents[rand.Intn(len(parents))]
			parent2 := parents[rand.Intn(len(parents))]

			if len(remainingSpecies) > 1 && rand.Float64() < r.Config.InterspeciesMateProb {
				other := i
				for other == i {
					other = rand.Intn(len(remainingSpecies))
				}
				if len(parentPools[other]) > 0 {
					parent2 = parentPools[other][rand.Intn(len(parentPools[other]))]
				}
			}

			childKey := r.getNextKey()
			child := NewGenome(childKey)
			child.ConfigureCrossover(parent1, parent2, &overallConfig.Genome)
			if rand.Float64() < overallConfig.Genome.MutationProb {
				child.Mutate(&overallConfig.Genome, ic)
			}

			newPopulation[childKey] = NewOrganism(child)
			newAncestors[childKey] = []int{parent1.Genome.Key, parent2.Genome.Key}
		}
	}
	r.Ancestors = newAncestors

	return newPopulation, nil
}

// computeSpawnAmounts allots offspring counts proportional to adjusted
// fitness, dampened halfway toward the previous generation's size, then
// rescaled so the total matches popSize exactly.
func computeSpawnAmounts(adjustedFitnesses []float64, adjustedFitnessSum float64, previousSizes []int, popSize int, minSpeciesSize int) []int {
	spawnAmounts := make([]int, len(adjustedFitnesses))

	for i, af := range adjustedFitnesses {
		ps := previousSizes[i]
		var target float64
		if adjustedFitnessSum > 0 {
			target = af / adjustedFitnessSum * float64(popSize)
		} else {
			target = float64(minSpeciesSize)
		}
		target = math.Max(float64(minSpeciesSize), target)

		d := (target - float64(ps)) * 0.5
		spawn := ps + int(math.Round(d))
		spawnAmounts[i] = maxInt(minSpeciesSize, spawn)
	}

	totalSpawn := 0
	for _, sa := range spawnAmounts {
		totalSpawn += sa
	}
	if totalSpawn == 0 {
		for i := range spawnAmounts {
			spawnAmounts[i] = minSpeciesSize
		}
		totalSpawn = len(spawnAmounts) * minSpeciesSize
		if totalSpawn == 0 {
			return spawnAmounts
		}
	}

	norm := float64(popSize) / float64(totalSpawn)
	finalSpawnAmounts := make([]int, len(spawnAmounts))
	currentTotal := 0
	for i, sa := range spawnAmounts {
		normalizedSpawn := int(math.Round(float64(sa) * norm))
		finalSpawnAmounts[i] = maxInt(minSpeciesSize, normalizedSpawn)
		currentTotal += finalSpawnAmounts[i]
	}

	diff := popSize - currentTotal
	if diff != 0 {
		indices := make([]int, len(finalSpawnAmounts))
		for i := range indices {
			indices[i] = i
		}
		rand.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

		for _, idx := range indices {
			if diff == 0 {
				break
			}
			if diff > 0 {
				finalSpawnAmounts[idx]++
				diff--
			} else if finalSpawnAmounts[idx] > minSpeciesSize {
				finalSpawnAmounts[idx]--
				diff++
			}
		}
	}

	return finalSpawnAmounts
}
