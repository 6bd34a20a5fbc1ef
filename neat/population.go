package neat

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"
)

// Environment is the external fitness contract: given a genome's decoded
// phenotype, return its fitness. Implementations are free to call
// neat.Activate (or neat/matrixeval.Activate) as many times as their
// scoring scheme requires.
//
// A fitness that is negative or non-finite, or an Evaluate that panics,
// is a contract violation (ErrUserContractViolation) — Population.Evolve
// recovers the panic and folds it into the same error path as a returned
// error.
type Environment interface {
	Evaluate(g *Genome) (float64, error)
}

// Population holds the full state of one NEAT run: the current
// generation's organisms, the species they're grouped into, and the
// machinery (reproduction, stagnation, innovation counter) that advances
// from one generation to the next.
type Population struct {
	Config       *Config
	Organisms    map[int]*Organism
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Innovation   *InnovationCounter
	Generation   int
	Champ        *Organism

	// EvalConcurrency is the number of worker goroutines used to evaluate
	// organisms each generation. 0 or 1 means sequential evaluation.
	EvalConcurrency int
}

// NewPopulation creates a new Population and seeds its initial generation.
func NewPopulation(config *Config) (*Population, error) {
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}

	reproduction := NewReproduction(&config.Reproduction, stagnation)
	innovation := NewInnovationCounter()
	initialPopulation := reproduction.CreateInitialPopulation(&config.Genome, config.Neat.PopSize, innovation)
	if len(initialPopulation) == 0 {
		panic(fmt.Errorf("%w: initial population is empty", ErrStructuralInvariant))
	}
	speciesSet := NewSpeciesSet(&config.SpeciesSet)

	return &Population{
		Config:          config,
		Organisms:       initialPopulation,
		SpeciesSet:      speciesSet,
		Reproduction:    reproduction,
		Stagnation:      stagnation,
		Innovation:      innovation,
		Generation:      0,
		EvalConcurrency: runtime.GOMAXPROCS(0),
	}, nil
}

// Champion returns the best organism ever seen by this population, or nil
// if no generation has been evolved yet.
func (p *Population) Champion() *Organism {
	return p.Champ
}

// Evolve runs a single generation: evaluate every organism's fitness
// against env, track the champion, speciate, then reproduce into the next
// generation's organisms. It returns the champion organism once its
// fitness meets config.Neat.FitnessThreshold (unless NoFitnessTermination
// is set), or nil if evolution should continue.
func (p *Population) Evolve(env Environment) (*Organism, error) {
	p.Generation++
	start := time.Now()
	fmt.Printf("****** Generation %d ******\n", p.Generation)

	if err := p.evaluate(env); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	currentBest := p.bestOrganism()
	if currentBest != nil && (p.Champ == nil || currentBest.Fitness > p.Champ.Fitness) {
		p.Champ = currentBest.Copy()
		fmt.Printf(" new best organism: genome %d, fitness %.4f\n", p.Champ.Genome.Key, p.Champ.Fitness)
	}

	if !p.Config.Neat.NoFitnessTermination && p.Champ != nil && p.Champ.Fitness >= p.Config.Neat.FitnessThreshold {
		return p.Champ, nil
	}

	if len(p.Organisms) == 0 {
		return p.handleExtinction()
	}

	fmt.Println(" speciating...")
	if err := p.SpeciesSet.Speciate(p.Config, p.Organisms, p.Generation); err != nil {
		return nil, fmt.Errorf("speciation failed in generation %d: %w", p.Generation, err)
	}
	fmt.Printf(" population divided into %d species\n", len(p.SpeciesSet.Species))

	fmt.Println(" reproducing...")
	newOrganisms, err := p.Reproduction.Reproduce(p.Config, p.Innovation, p.SpeciesSet, p.Config.Neat.PopSize, p.Generation)
	if err != nil {
		return nil, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}

	if len(newOrganisms) == 0 {
		return p.handleExtinction()
	}
	p.Organisms = newOrganisms

	fmt.Printf("generation %d finished in %s\n\n", p.Generation, time.Since(start))
	return nil, nil
}

func (p *Population) handleExtinction() (*Organism, error) {
	if !p.Config.Neat.ResetOnExtinction {
		return p.Champ, fmt.Errorf("population extinct in generation %d", p.Generation)
	}
	fmt.Println(" population extinct, resetting")
	p.Organisms = p.Reproduction.CreateInitialPopulation(&p.Config.Genome, p.Config.Neat.PopSize, p.Innovation)
	p.SpeciesSet = NewSpeciesSet(&p.Config.SpeciesSet)
	return nil, nil
}

// evaluate scores every organism against env, in parallel when
// EvalConcurrency > 1. A panic inside Evaluate is recovered and reported
// as a contract violation rather than crashing the run.
func (p *Population) evaluate(env Environment) error {
	keys := make([]int, 0, len(p.Organisms))
	for k := range p.Organisms {
		keys = append(keys, k)
	}

	if p.EvalConcurrency <= 1 {
		for _, k := range keys {
			if err := evaluateOne(env, p.Organisms[k]); err != nil {
				return err
			}
		}
		return nil
	}

	workers := p.EvalConcurrency
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(keys))
	indexCh := make(chan int, len(keys))
	for _, i := range keys {
		indexCh <- i
	}
	close(indexCh)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range indexCh {
				if err := evaluateOne(env, p.Organisms[k]); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func evaluateOne(env Environment, o *Organism) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: environment panicked: %v", ErrUserContractViolation, r)
		}
	}()

	fitness, evalErr := env.Evaluate(o.Genome)
	if evalErr != nil {
		return fmt.Errorf("%w: %v", ErrUserContractViolation, evalErr)
	}
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) || fitness < 0 {
		return fmt.Errorf("%w: fitness %v is not a finite, non-negative number", ErrUserContractViolation, fitness)
	}
	o.Fitness = fitness
	return nil
}

func (p *Population) bestOrganism() *Organism {
	var best *Organism
	maxFitness := math.Inf(-1)
	for _, o := range p.Organisms {
		if o.Fitness > maxFitness {
			maxFitness = o.Fitness
			best = o
		}
	}
	return best
}
