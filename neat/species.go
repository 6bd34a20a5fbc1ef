package neat

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"sort"
)

// Species is a group of genetically similar organisms, tracked across
// generations by a representative genome.
type Species struct {
	Key             int
	Created         int
	LastImproved    int
	Representative  *Genome
	Members         map[int]*Organism
	Fitness         float64
	AdjustedFitness float64
	FitnessHistory  []float64
}

// NewSpecies creates a new, empty species formed in the given generation.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:            key,
		Created:        generation,
		LastImproved:   generation,
		Members:        make(map[int]*Organism),
		FitnessHistory: []float64{},
	}
}

// Update replaces the species' representative and member set.
func (s *Species) Update(representative *Genome, members map[int]*Organism) {
	s.Representative = representative
	s.Members = members
}

// Fitnesses returns the fitness of every member organism.
func (s *Species) Fitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Members))
	for _, o := range s.Members {
		fitnesses = append(fitnesses, o.Fitness)
	}
	return fitnesses
}

// GenomeDistanceCache memoizes genome-pair distances within a single
// speciation pass, since the same representative is compared against many
// candidate genomes.
type GenomeDistanceCache struct {
	distances map[ConnectionKey]float64
	Hits      int
	Misses    int
	config    *GenomeConfig
}

// NewGenomeDistanceCache creates a new, empty distance cache.
func NewGenomeDistanceCache(config *GenomeConfig) *GenomeDistanceCache {
	return &GenomeDistanceCache{
		distances: make(map[ConnectionKey]float64),
		config:    config,
	}
}

// Distance returns the compatibility distance between g1 and g2, computing
// and caching it on first request. The pair is canonicalized by genome key
// so (g1, g2) and (g2, g1) hit the same cache entry.
func (dc *GenomeDistanceCache) Distance(g1, g2 *Genome) float64 {
	k1, k2 := g1.Key, g2.Key
	if k1 > k2 {
		k1, k2 = k2, k1
	}
	cacheKey := ConnectionKey{Source: k1, Sink: k2}

	if d, ok := dc.distances[cacheKey]; ok {
		dc.Hits++
		return d
	}

	dc.Misses++
	d := g1.Distance(g2, dc.config)
	dc.distances[cacheKey] = d
	return d
}

// SpeciesSet manages the collection of species within a population.
type SpeciesSet struct {
	Species         map[int]*Species
	GenomeToSpecies map[int]int
	indexer         int
	config          *SpeciesSetConfig
}

// NewSpeciesSet creates a new, empty species set. Species ids start at 1.
func NewSpeciesSet(config *SpeciesSetConfig) *SpeciesSet {
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		indexer:         1,
		config:          config,
	}
}

// Speciate partitions population into species based on genetic distance.
// It proceeds in two steps: first each existing species picks a fresh,
// uniformly random representative from its own surviving members (an
// empty species keeps its stale representative so it can still be
// rejoined); then every organism in the population is assigned to the
// first species, in ascending species-id order, whose representative is
// within the compatibility threshold, creating a new species if none
// matches. Earlier-created species are always checked before later ones,
// including species created earlier within this same call, so
// precedence never depends on distance once a species already matches.
func (ss *SpeciesSet) Speciate(config *Config, population map[int]*Organism, generation int) error {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return nil
	}

	compatibilityThreshold := ss.config.CompatibilityThreshold
	distanceCache := NewGenomeDistanceCache(&config.Genome)

	existingSIDs := make([]int, 0, len(ss.Species))
	for sid := range ss.Species {
		existingSIDs = append(existingSIDs, sid)
	}
	sort.Ints(existingSIDs)

	representatives := make(map[int]*Genome, len(existingSIDs))
	order := make([]int, 0, len(existingSIDs))
	for _, sid := range existingSIDs {
		s := ss.Species[sid]
		if len(s.Members) > 0 {
			memberKeys := make([]int, 0, len(s.Members))
			for gid := range s.Members {
				memberKeys = append(memberKeys, gid)
			}
			sort.Ints(memberKeys)
			chosen := memberKeys[rand.Intn(len(memberKeys))]
			representatives[sid] = s.Members[chosen].Genome
			order = append(order, sid)
		} else if s.Representative != nil {
			representatives[sid] = s.Representative
			order = append(order, sid)
		}
	}

	genomeKeys := make([]int, 0, len(population))
	for gid := range population {
		genomeKeys = append(genomeKeys, gid)
	}
	sort.Ints(genomeKeys)

	newMembers := make(map[int][]int)
	for _, gid := range genomeKeys {
		o := population[gid]

		matchedSID := -1
		for _, sid := range order {
			d := distanceCache.Distance(representatives[sid], o.Genome)
			if d < compatibilityThreshold {
				matchedSID = sid
				break
			}
		}

		if matchedSID == -1 {
			matchedSID = ss.indexer
			ss.indexer++
			representatives[matchedSID] = o.Genome
			order = append(order, matchedSID)
		}
		newMembers[matchedSID] = append(newMembers[matchedSID], gid)
	}

	newSpeciesMap := make(map[int]*Species)
	newGenomeToSpeciesMap := make(map[int]int)

	for _, sid := range order {
		membersList := newMembers[sid]
		if len(membersList) == 0 {
			continue
		}

		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
		}

		memberMap := make(map[int]*Organism, len(membersList))
		for _, gid := range membersList {
			memberMap[gid] = population[gid]
			newGenomeToSpeciesMap[gid] = sid
		}

		s.Update(representatives[sid], memberMap)
		newSpeciesMap[sid] = s
	}

	ss.Species = newSpeciesMap
	ss.GenomeToSpecies = newGenomeToSpeciesMap

	return nil
}

// speciesSetGob mirrors SpeciesSet's persistent fields. config is not
// carried through a checkpoint — it is re-linked from the freshly loaded
// Config after LoadCheckpoint, the same way the rest of the package avoids
// serializing config pointers.
type speciesSetGob struct {
	Species         map[int]*Species
	GenomeToSpecies map[int]int
	Indexer         int
}

// GobEncode implements gob.GobEncoder.
func (ss *SpeciesSet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	aux := speciesSetGob{
		Species:         ss.Species,
		GenomeToSpecies: ss.GenomeToSpecies,
		Indexer:         ss.indexer,
	}
	if err := gob.NewEncoder(&buf).Encode(aux); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. SetConfig must be called after
// decoding to restore the SpeciesSetConfig reference.
func (ss *SpeciesSet) GobDecode(data []byte) error {
	var aux speciesSetGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	ss.Species = aux.Species
	ss.GenomeToSpecies = aux.GenomeToSpecies
	ss.indexer = aux.Indexer
	return nil
}

// SetConfig relinks a SpeciesSet to its SpeciesSetConfig after it has been
// restored from a checkpoint.
func (ss *SpeciesSet) SetConfig(config *SpeciesSetConfig) {
	ss.config = config
}

// SpeciesOf returns the species an organism belongs to, if any.
func (ss *SpeciesSet) SpeciesOf(genomeID int) (*Species, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	if !exists {
		return nil, false
	}
	s, exists := ss.Species[sid]
	return s, exists
}
