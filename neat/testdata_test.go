package neat

// testConfig returns a Config with reasonable, deterministic-ish defaults
// for unit tests. Individual tests override fields as needed.
func testConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:          30,
			FitnessCriterion: "max",
			FitnessThreshold: 100.0,
		},
		Genome: GenomeConfig{
			NumInputs:  2,
			NumOutputs: 1,

			ConnAddProb:    0.5,
			NodeAddProb:    0.2,
			ConnDeleteProb: 0.2,
			NodeDeleteProb: 0.1,
			ToggleProb:     0.1,
			MutationProb:   0.8,

			BiasInitMean:    0.0,
			BiasInitStdev:   1.0,
			BiasReplaceRate: 0.1,
			BiasMutateRate:  0.7,
			BiasMutatePower: 0.5,
			BiasMaxValue:    30.0,
			BiasMinValue:    -30.0,

			WeightInitMean:    0.0,
			WeightInitStdev:   1.0,
			WeightReplaceRate: 0.1,
			WeightMutateRate:  0.8,
			WeightMutatePower: 0.5,
			WeightMaxValue:    30.0,
			WeightMinValue:    -30.0,

			DistanceWeightCoef:   0.5,
			DistanceDisjointCoef: 1.0,
		},
		Reproduction: ReproductionConfig{
			Elitism:              1,
			CullFraction:         0.2,
			MinSpeciesSize:       2,
			InterspeciesMateProb: 0.0,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold: 3.0,
		},
		Stagnation: StagnationConfig{
			SpeciesFitnessFunc: "mean",
			MaxStagnation:      15,
			SpeciesElitism:     1,
		},
	}
}
