package neat

import (
	"fmt"
	"math"
	"sort"
)

// Stagnation tracks each species' fitness trend and flags species that
// have gone too long without improving, protecting the fittest few via
// species_elite.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64
}

// NewStagnation creates a new stagnation filter.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[config.SpeciesFitnessFunc]
	if !ok {
		return nil, fmt.Errorf("invalid species_fitness_func in config: %s", config.SpeciesFitnessFunc)
	}
	return &Stagnation{Config: config, SpeciesFitnessFunc: fn}, nil
}

// StagnationInfo is the stagnation verdict for one species.
type StagnationInfo struct {
	SpeciesID  int
	Species    *Species
	IsStagnant bool
}

// Update recomputes each species' fitness (via SpeciesFitnessFunc over its
// members), appends it to FitnessHistory, and marks species stagnant once
// they've gone remove_after_n_generations generations without improving
// their running max fitness — except for the species_elite fittest
// species, which are never marked stagnant regardless of age. A species'
// first recorded fitness only starts its history; it does not count as an
// improvement.
func (s *Stagnation) Update(speciesSet *SpeciesSet, generation int) ([]StagnationInfo, error) {
	if len(speciesSet.Species) == 0 {
		return nil, nil
	}

	type entry struct {
		id      int
		species *Species
	}
	entries := make([]entry, 0, len(speciesSet.Species))

	sids := make([]int, 0, len(speciesSet.Species))
	for sid := range speciesSet.Species {
		sids = append(sids, sid)
	}
	sort.Ints(sids)

	for _, sid := range sids {
		sp := speciesSet.Species[sid]

		hasHistory := len(sp.FitnessHistory) > 0
		previousMax := math.Inf(-1)
		if hasHistory {
			previousMax = MaxFloat(sp.FitnessHistory)
		}

		memberFitnesses := sp.Fitnesses()
		if len(memberFitnesses) == 0 {
			sp.Fitness = math.Inf(-1)
		} else {
			sp.Fitness = s.SpeciesFitnessFunc(memberFitnesses)
		}
		sp.FitnessHistory = append(sp.FitnessHistory, sp.Fitness)
		sp.AdjustedFitness = 0

		if hasHistory && sp.Fitness > previousMax {
			sp.LastImproved = generation
		}

		entries = append(entries, entry{id: sid, species: sp})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].species.Fitness < entries[j].species.Fitness
	})

	numSpecies := len(entries)
	result := make([]StagnationInfo, numSpecies)

	for i, e := range entries {
		sp := e.species
		stagnantTime := generation - sp.LastImproved
		rankFromTop := numSpecies - i // 1 = fittest

		isStagnant := stagnantTime >= s.Config.MaxStagnation && rankFromTop > s.Config.SpeciesElitism

		result[i] = StagnationInfo{SpeciesID: e.id, Species: sp, IsStagnant: isStagnant}
	}

	return result, nil
}
