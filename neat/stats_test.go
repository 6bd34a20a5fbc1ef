package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectStatsSummarizesOrganisms(t *testing.T) {
	config := testConfig()
	config.Neat.PopSize = 4
	pop, err := NewPopulation(config)
	require.NoError(t, err)

	fitnesses := []float64{1.0, 2.0, 3.0, 4.0}
	i := 0
	for _, o := range pop.Organisms {
		o.Fitness = fitnesses[i%len(fitnesses)]
		i++
	}

	stats := CollectStats(pop)
	require.Equal(t, 4.0, stats.BestFitness)
	require.Equal(t, 1.0, stats.WorstFitness)
	require.InDelta(t, 2.5, stats.MeanFitness, 1e-9)
}

func TestStatsWriterWritesHeaderOnceThenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	w, err := NewStatsWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(Stats{Generation: 1, BestFitness: 1.0}))
	require.NoError(t, w.Write(Stats{Generation: 2, BestFitness: 2.0}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 3, lines, "one header line plus two data rows")
}
