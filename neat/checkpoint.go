package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// populationSaveData holds the parts of Population that round-trip
// through a checkpoint. Config is not included — it is reloaded from the
// original INI file so a checkpoint never drifts from its config.
type populationSaveData struct {
	Organisms    map[int]*Organism
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Innovation   *InnovationCounter
	Generation   int
	Champ        *Organism
}

// RunSummary is the sidecar written next to every checkpoint: a
// human-readable snapshot of run progress, independent of the gob blob.
type RunSummary struct {
	Generation   int               `yaml:"generation"`
	BestFitness  float64           `yaml:"best_fitness,omitempty"`
	BestGenomeID int               `yaml:"best_genome_id,omitempty"`
	SpeciesCount int               `yaml:"species_count"`
	SpeciesAges  map[int]int       `yaml:"species_ages,omitempty"`
	SpeciesTrend map[int][]float64 `yaml:"species_fitness_history,omitempty"`
}

func registerCheckpointTypes() {
	gob.Register(map[int]*Organism{})
	gob.Register(map[ConnectionKey]*ConnectionGene{})
	gob.Register(map[int]*NeuronGene{})
	gob.Register(map[int]*Species{})
	gob.Register(map[int]int{})
	gob.Register([]int{})
	gob.Register([]ConnectionKey{})
}

// SaveCheckpoint writes the population's state to filePath as gob+gzip,
// and writes a companion "<filePath-without-ext>.summary.yaml" with a
// human-readable snapshot of run progress.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	registerCheckpointTypes()

	saveData := populationSaveData{
		Organisms:    p.Organisms,
		SpeciesSet:   p.SpeciesSet,
		Reproduction: p.Reproduction,
		Innovation:   p.Innovation,
		Generation:   p.Generation,
		Champ:        p.Champ,
	}

	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize checkpoint gzip stream: %w", err)
	}

	if err := p.writeRunSummary(summaryPath(filePath)); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	fmt.Printf("checkpoint saved to %s\n", filePath)
	return nil
}

func (p *Population) writeRunSummary(path string) error {
	summary := RunSummary{
		Generation:   p.Generation,
		SpeciesCount: len(p.SpeciesSet.Species),
		SpeciesAges:  make(map[int]int, len(p.SpeciesSet.Species)),
		SpeciesTrend: make(map[int][]float64, len(p.SpeciesSet.Species)),
	}
	if p.Champ != nil {
		summary.BestFitness = p.Champ.Fitness
		summary.BestGenomeID = p.Champ.Genome.Key
	}
	for sid, sp := range p.SpeciesSet.Species {
		summary.SpeciesAges[sid] = p.Generation - sp.Created
		summary.SpeciesTrend[sid] = sp.FitnessHistory
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func summaryPath(checkpointPath string) string {
	ext := filepath.Ext(checkpointPath)
	base := strings.TrimSuffix(checkpointPath, ext)
	return base + ".summary.yaml"
}

// LoadCheckpoint reconstructs a Population from a checkpoint file and its
// original INI config file.
func LoadCheckpoint(checkpointPath string, configPath string) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	registerCheckpointTypes()

	var saveData populationSaveData
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to re-initialize stagnation from loaded config: %w", err)
	}
	if saveData.Reproduction != nil {
		saveData.Reproduction.Stagnation = stagnation
	}
	if saveData.SpeciesSet != nil {
		saveData.SpeciesSet.SetConfig(&config.SpeciesSet)
	}

	p := &Population{
		Config:       config,
		Organisms:    saveData.Organisms,
		SpeciesSet:   saveData.SpeciesSet,
		Reproduction: saveData.Reproduction,
		Stagnation:   stagnation,
		Innovation:   saveData.Innovation,
		Generation:   saveData.Generation,
		Champ:        saveData.Champ,
	}

	fmt.Printf("checkpoint loaded from %s (generation %d)\n", checkpointPath, p.Generation)
	return p, nil
}
