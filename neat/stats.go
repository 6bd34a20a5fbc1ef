package neat

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Stats is a single generation's numeric snapshot: the same data the
// evolutionary loop already prints to stdout, captured as a record so it
// can be exported instead of only narrated.
type Stats struct {
	Generation      int     `csv:"generation"`
	BestFitness     float64 `csv:"best_fitness"`
	MeanFitness     float64 `csv:"mean_fitness"`
	WorstFitness    float64 `csv:"worst_fitness"`
	FitnessStdev    float64 `csv:"fitness_stdev"`
	SpeciesCount    int     `csv:"species_count"`
	NeuronCount     int     `csv:"neuron_count_mean"`
	ConnectionCount int     `csv:"connection_count_mean"`
}

// CollectStats builds a Stats record from the population's current
// organisms. Call it after evaluate() and before reproduction overwrites
// p.Organisms.
func CollectStats(p *Population) Stats {
	fitnesses := make([]float64, 0, len(p.Organisms))
	neuronCounts := make([]float64, 0, len(p.Organisms))
	connCounts := make([]float64, 0, len(p.Organisms))
	for _, o := range p.Organisms {
		fitnesses = append(fitnesses, o.Fitness)
		neuronCounts = append(neuronCounts, float64(len(o.Genome.Neurons)))
		connCounts = append(connCounts, float64(len(o.Genome.Connections)))
	}

	return Stats{
		Generation:      p.Generation,
		BestFitness:     MaxFloat(fitnesses),
		MeanFitness:     Mean(fitnesses),
		WorstFitness:    MinFloat(fitnesses),
		FitnessStdev:    Stdev(fitnesses),
		SpeciesCount:    len(p.SpeciesSet.Species),
		NeuronCount:     int(Mean(neuronCounts)),
		ConnectionCount: int(Mean(connCounts)),
	}
}

// StatsWriter appends Stats records to a CSV file, writing the header only
// once, matching pthm-soup's telemetry.OutputManager.WriteTelemetry
// pattern (header-once, then MarshalWithoutHeaders for every later row).
type StatsWriter struct {
	file          *os.File
	headerWritten bool
}

// NewStatsWriter creates (or truncates) path and returns a writer ready to
// append generation records to it.
func NewStatsWriter(path string) (*StatsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating stats file '%s': %w", path, err)
	}
	return &StatsWriter{file: f}, nil
}

// Write appends one generation's Stats as a CSV row.
func (w *StatsWriter) Write(s Stats) error {
	records := []Stats{s}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing stats header: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing stats row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *StatsWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}
