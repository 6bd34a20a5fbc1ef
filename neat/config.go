package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config is the full parameter bundle for a run: a single immutable
// record (once loaded) containing every tunable, grouped into sections
// the same way the underlying INI file is grouped.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds parameters for the outer evolutionary loop.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
}

// GenomeConfig holds parameters governing genome structure, mutation and
// compatibility distance.
type GenomeConfig struct {
	NumInputs  int `ini:"n_inputs"`
	NumOutputs int `ini:"n_outputs"`

	ConnAddProb    float64 `ini:"mutate_add_conn_pr"`
	NodeAddProb    float64 `ini:"mutate_add_neuron_pr"`
	ConnDeleteProb float64 `ini:"mutate_del_conn_pr"`
	NodeDeleteProb float64 `ini:"mutate_del_neuron_pr"`
	ToggleProb     float64 `ini:"mutate_toggle_pr"`
	MutationProb   float64 `ini:"mutation_pr"`

	BiasInitMean    float64 `ini:"bias_init_mean"`
	BiasInitStdev   float64 `ini:"bias_init_var"`
	BiasReplaceRate float64 `ini:"bias_replace_pr"`
	BiasMutateRate  float64 `ini:"bias_mutate_pr"`
	BiasMutatePower float64 `ini:"bias_mutate_var"`
	BiasMaxValue    float64 `ini:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value"`

	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_var"`
	WeightReplaceRate float64 `ini:"weight_replace_pr"`
	WeightMutateRate  float64 `ini:"weight_mutate_pr"`
	WeightMutatePower float64 `ini:"weight_mutate_var"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value"`

	IncludeWeakDisjointGene bool    `ini:"include_weak_disjoint_gene"`
	DistanceWeightCoef      float64 `ini:"distance_weight_coef"`
	DistanceDisjointCoef    float64 `ini:"distance_disjoint_coef"`
}

// ReproductionConfig holds parameters for offspring allotment and mating.
type ReproductionConfig struct {
	Elitism            int     `ini:"elitism"`
	CullFraction       float64 `ini:"cull_fraction"`
	MinSpeciesSize     int     `ini:"min_species_size"`
	InterspeciesMateProb float64 `ini:"interspecie_mate_pr"`
}

// SpeciesSetConfig holds parameters for speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig holds parameters for the stagnation filter.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func"`
	MaxStagnation      int    `ini:"remove_after_n_generations"`
	SpeciesElitism     int    `ini:"species_elite"`
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	src, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := &Config{}

	if err := src.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := src.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	if err := src.Section("DefaultReproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultReproduction] section: %w", err)
	}
	if err := src.Section("DefaultSpeciesSet").MapTo(&config.SpeciesSet); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultSpeciesSet] section: %w", err)
	}
	if err := src.Section("DefaultStagnation").MapTo(&config.Stagnation); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultStagnation] section: %w", err)
	}

	config.Neat.FitnessCriterion = cleanIniString(config.Neat.FitnessCriterion)
	config.Stagnation.SpeciesFitnessFunc = cleanIniString(config.Stagnation.SpeciesFitnessFunc)

	if config.Reproduction.MinSpeciesSize == 0 {
		config.Reproduction.MinSpeciesSize = 1
	}
	if config.Reproduction.CullFraction == 0 {
		config.Reproduction.CullFraction = 0.2
	}
	if config.Stagnation.SpeciesFitnessFunc == "" {
		config.Stagnation.SpeciesFitnessFunc = "mean"
	}
	if config.Stagnation.MaxStagnation == 0 {
		config.Stagnation.MaxStagnation = 15
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if config.Genome.NumInputs < 0 {
		return fmt.Errorf("config error: n_inputs cannot be negative")
	}
	if config.Genome.NumOutputs < 0 {
		return fmt.Errorf("config error: n_outputs cannot be negative")
	}
	if config.Genome.DistanceDisjointCoef < 0 {
		return fmt.Errorf("config error: distance_disjoint_coef cannot be negative")
	}
	if config.Genome.DistanceWeightCoef < 0 {
		return fmt.Errorf("config error: distance_weight_coef cannot be negative")
	}
	for name, v := range map[string]float64{
		"mutate_add_conn_pr":   config.Genome.ConnAddProb,
		"mutate_add_neuron_pr": config.Genome.NodeAddProb,
		"mutate_del_conn_pr":   config.Genome.ConnDeleteProb,
		"mutate_del_neuron_pr": config.Genome.NodeDeleteProb,
		"mutate_toggle_pr":     config.Genome.ToggleProb,
		"interspecie_mate_pr":  config.Reproduction.InterspeciesMateProb,
		"cull_fraction":        config.Reproduction.CullFraction,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if config.Genome.BiasMaxValue < config.Genome.BiasMinValue {
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	}
	if config.Genome.WeightMaxValue < config.Genome.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if config.Reproduction.MinSpeciesSize <= 0 {
		return fmt.Errorf("config error: min_species_size must be positive")
	}
	if config.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if config.Stagnation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: remove_after_n_generations must be positive")
	}

	validCriteria := map[string]bool{"max": true, "min": true, "mean": true}
	if !validCriteria[strings.ToLower(config.Neat.FitnessCriterion)] {
		return fmt.Errorf("config error: invalid fitness_criterion '%s', must be one of 'max', 'min', 'mean'", config.Neat.FitnessCriterion)
	}

	if _, ok := StatFunctions[strings.ToLower(config.Stagnation.SpeciesFitnessFunc)]; !ok {
		return fmt.Errorf("config error: invalid species_fitness_func '%s'", config.Stagnation.SpeciesFitnessFunc)
	}

	return nil
}

// cleanIniString removes inline comments and trims whitespace from a
// string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
