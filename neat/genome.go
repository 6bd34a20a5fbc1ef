package neat

import (
	"bytes"
	"encoding/gob"
	"math/rand"
)

// Genome is a collection of neuron and connection genes: the genotype a
// CTRNN phenotype is decoded from. Neurons and connections are stored in
// maps keyed by stable id, plus parallel order slices — Go maps carry no
// iteration order, but neuron insertion order is part of the genome's
// observable contract (it fixes the CTRNN's state-vector layout).
type Genome struct {
	Key         int
	Neurons     map[int]*NeuronGene
	Connections map[ConnectionKey]*ConnectionGene

	neuronOrder []int
	connOrder   []ConnectionKey
}

// NewGenome creates an empty genome with the given key.
func NewGenome(key int) *Genome {
	return &Genome{
		Key:         key,
		Neurons:     make(map[int]*NeuronGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
	}
}

// NeuronOrder returns neuron ids in the order they were first added to the
// genome. Callers must not mutate the returned slice.
func (g *Genome) NeuronOrder() []int {
	return g.neuronOrder
}

// ConnectionOrder returns connection keys in the order they were first
// added to the genome. Callers must not mutate the returned slice.
func (g *Genome) ConnectionOrder() []ConnectionKey {
	return g.connOrder
}

// AddNeuron inserts ng, or replaces the gene at an existing key in place
// (preserving its original position in NeuronOrder).
func (g *Genome) AddNeuron(ng *NeuronGene) {
	if _, exists := g.Neurons[ng.Key]; !exists {
		g.neuronOrder = append(g.neuronOrder, ng.Key)
	}
	g.Neurons[ng.Key] = ng
}

// AddConnection inserts cg. If a connection already occupies cg.Key, the
// existing gene is re-enabled and its weight replaced rather than
// duplicated — this is the "re-enable and reassign weight" rule used when
// a mutation or crossover targets a (Source, Sink) pair that already
// exists in the genome.
func (g *Genome) AddConnection(cg *ConnectionGene) {
	if existing, exists := g.Connections[cg.Key]; exists {
		existing.Weight = cg.Weight
		existing.Enabled = true
		return
	}
	g.connOrder = append(g.connOrder, cg.Key)
	g.Connections[cg.Key] = cg
}

// RemoveConnection deletes the connection gene at key, if present.
func (g *Genome) RemoveConnection(key ConnectionKey) {
	if _, exists := g.Connections[key]; !exists {
		return
	}
	delete(g.Connections, key)
	for i, k := range g.connOrder {
		if k == key {
			g.connOrder = append(g.connOrder[:i], g.connOrder[i+1:]...)
			break
		}
	}
}

// RemoveNeuron deletes the neuron gene at key, if present, along with every
// connection gene that references it as source or sink. This can never
// violate reference integrity: no connection is left pointing at a neuron
// that no longer exists.
func (g *Genome) RemoveNeuron(key int) {
	if _, exists := g.Neurons[key]; !exists {
		return
	}
	delete(g.Neurons, key)
	for i, k := range g.neuronOrder {
		if k == key {
			g.neuronOrder = append(g.neuronOrder[:i], g.neuronOrder[i+1:]...)
			break
		}
	}
	for connKey := range g.Connections {
		if connKey.Source == key || connKey.Sink == key {
			g.RemoveConnection(connKey)
		}
	}
}

// Copy returns a deep copy of the genome, preserving gene order.
func (g *Genome) Copy() *Genome {
	cp := NewGenome(g.Key)
	cp.neuronOrder = append([]int(nil), g.neuronOrder...)
	for _, key := range g.neuronOrder {
		cp.Neurons[key] = g.Neurons[key].Copy()
	}
	cp.connOrder = append([]ConnectionKey(nil), g.connOrder...)
	for _, key := range g.connOrder {
		cp.Connections[key] = g.Connections[key].Copy()
	}
	return cp
}

// ConfigureCrossover fills g with genes combined from parent1 and parent2.
// Matching genes (genes whose key appears in both parents) are crossed
// homologously; disjoint/excess genes from the fitter parent are always
// inherited. By default genes unique to the weaker parent are dropped —
// if config.IncludeWeakDisjointGene is set, each such gene is independently
// carried over with probability 0.5 instead.
func (g *Genome) ConfigureCrossover(parent1, parent2 *Organism, config *GenomeConfig) {
	if parent1.Fitness < parent2.Fitness {
		parent1, parent2 = parent2, parent1
	}

	for _, key := range parent1.Genome.neuronOrder {
		n1 := parent1.Genome.Neurons[key]
		if n2, ok := parent2.Genome.Neurons[key]; ok {
			g.AddNeuron(n1.Crossover(n2))
		} else {
			g.AddNeuron(n1.Copy())
		}
	}
	if config.IncludeWeakDisjointGene {
		for _, key := range parent2.Genome.neuronOrder {
			if _, ok := parent1.Genome.Neurons[key]; ok {
				continue
			}
			if rand.Float64() < 0.5 {
				g.AddNeuron(parent2.Genome.Neurons[key].Copy())
			}
		}
	}

	for _, key := range parent1.Genome.connOrder {
		c1 := parent1.Genome.Connections[key]
		if c2, ok := parent2.Genome.Connections[key]; ok {
			g.AddConnection(c1.Crossover(c2))
		} else {
			g.AddConnection(c1.Copy())
		}
	}
	if config.IncludeWeakDisjointGene {
		for _, key := range parent2.Genome.connOrder {
			if _, ok := parent1.Genome.Connections[key]; ok {
				continue
			}
			if _, srcOK := g.Neurons[key.Source]; !srcOK {
				continue
			}
			if _, sinkOK := g.Neurons[key.Sink]; !sinkOK {
				continue
			}
			if rand.Float64() < 0.5 {
				g.AddConnection(parent2.Genome.Connections[key].Copy())
			}
		}
	}
}

// Mutate applies, in order: add-connection, add-neuron, toggle,
// delete-connection, delete-neuron, then per-gene attribute perturbation.
// ic hands out fresh, never-reused neuron ids for mutateAddNeuron.
func (g *Genome) Mutate(config *GenomeConfig, ic *InnovationCounter) {
	if len(g.Connections) == 0 || rand.Float64() < config.ConnAddProb {
		g.mutateAddConnection(config)
	}
	if rand.Float64() < config.NodeAddProb {
		g.mutateAddNeuron(config, ic)
	}
	if rand.Float64() < config.ToggleProb {
		g.mutateToggleConnection()
	}
	if rand.Float64() < config.ConnDeleteProb {
		g.mutateDeleteConnection()
	}
	if len(g.neuronOrder) > 1 && rand.Float64() < config.NodeDeleteProb {
		g.mutateDeleteNeuron()
	}

	for _, key := range g.neuronOrder {
		g.Neurons[key].Mutate(config)
	}
	for _, key := range g.connOrder {
		g.Connections[key].Mutate(config)
	}
}

// mutateAddNeuron splits a randomly chosen connection: the original is
// disabled, a new neuron is inserted between its endpoints, and two new
// connections carry the signal through it — the new in-edge with weight
// 1.0, the new out-edge with the original edge's weight, matching
// classical NEAT "add node" semantics.
func (g *Genome) mutateAddNeuron(config *GenomeConfig, ic *InnovationCounter) {
	if len(g.connOrder) == 0 {
		return
	}
	splitKey := g.connOrder[rand.Intn(len(g.connOrder))]
	splitConn := g.Connections[splitKey]
	splitConn.Enabled = false

	newKey := ic.NextNeuronID()
	g.AddNeuron(NewNeuronGene(newKey, config))

	inConn := NewConnectionGene(ConnectionKey{Source: splitConn.Key.Source, Sink: newKey}, config)
	inConn.Weight = 1.0
	g.AddConnection(inConn)

	outConn := NewConnectionGene(ConnectionKey{Source: newKey, Sink: splitConn.Key.Sink}, config)
	outConn.Weight = splitConn.Weight
	g.AddConnection(outConn)
}

// mutateAddConnection attempts to add a new connection between two
// uniformly random neurons already present in the genome. Self-loops
// (Source == Sink) are permitted: the CTRNN evaluator has no acyclic
// requirement, unlike a feed-forward phenotype. A pair that already exists
// but is disabled is re-enabled with a freshly sampled weight; an enabled
// pair is skipped and another is drawn. Gives up silently after a bounded
// number of attempts if every pair is already connected — a benign edge
// case, not an error.
func (g *Genome) mutateAddConnection(config *GenomeConfig) {
	if len(g.neuronOrder) == 0 {
		return
	}
	const maxAttempts = 20
	for i := 0; i < maxAttempts; i++ {
		source := g.neuronOrder[rand.Intn(len(g.neuronOrder))]
		sink := g.neuronOrder[rand.Intn(len(g.neuronOrder))]
		key := ConnectionKey{Source: source, Sink: sink}
		if existing, exists := g.Connections[key]; exists {
			if existing.Enabled {
				continue
			}
			g.AddConnection(NewConnectionGene(key, config))
			return
		}
		g.AddConnection(NewConnectionGene(key, config))
		return
	}
}

// mutateToggleConnection flips the enabled flag of a uniformly random
// connection gene.
func (g *Genome) mutateToggleConnection() {
	if len(g.connOrder) == 0 {
		return
	}
	key := g.connOrder[rand.Intn(len(g.connOrder))]
	cg := g.Connections[key]
	cg.Enabled = !cg.Enabled
}

// mutateDeleteConnection removes a uniformly random connection gene
// entirely, rather than merely disabling it.
func (g *Genome) mutateDeleteConnection() {
	if len(g.connOrder) == 0 {
		return
	}
	key := g.connOrder[rand.Intn(len(g.connOrder))]
	g.RemoveConnection(key)
}

// mutateDeleteNeuron removes a uniformly random neuron, along with every
// connection that references it. Callers should guard this with a
// len(neuronOrder) > 1 check — a genome is not required to retain any
// particular neuron, but there is no reason to reduce it to zero neurons.
func (g *Genome) mutateDeleteNeuron() {
	if len(g.neuronOrder) == 0 {
		return
	}
	key := g.neuronOrder[rand.Intn(len(g.neuronOrder))]
	g.RemoveNeuron(key)
}

// Distance computes the compatibility distance between g and other: for
// neurons and for connections independently, a disjoint-gene-count term
// (normalized by the larger genome's gene count of that kind) plus the
// mean parameter difference over matching genes, then the two sums are
// added together. Distance is symmetric and zero for a genome compared
// with itself.
func (g *Genome) Distance(other *Genome, config *GenomeConfig) float64 {
	neuronDisjoint := 0
	neuronDiffSum := 0.0
	neuronMatching := 0
	for key, n1 := range g.Neurons {
		if n2, ok := other.Neurons[key]; ok {
			neuronDiffSum += n1.Distance(n2, config)
			neuronMatching++
		} else {
			neuronDisjoint++
		}
	}
	for key := range other.Neurons {
		if _, ok := g.Neurons[key]; !ok {
			neuronDisjoint++
		}
	}

	connDisjoint := 0
	connDiffSum := 0.0
	connMatching := 0
	for key, c1 := range g.Connections {
		if c2, ok := other.Connections[key]; ok {
			connDiffSum += c1.Distance(c2, config)
			connMatching++
		} else {
			connDisjoint++
		}
	}
	for key := range other.Connections {
		if _, ok := g.Connections[key]; !ok {
			connDisjoint++
		}
	}

	neuronN := float64(maxInt(len(g.Neurons), len(other.Neurons)))
	if neuronN < 1 {
		neuronN = 1
	}
	connN := float64(maxInt(len(g.Connections), len(other.Connections)))
	if connN < 1 {
		connN = 1
	}

	neuronDistance := (config.DistanceDisjointCoef * float64(neuronDisjoint)) / neuronN
	if neuronMatching > 0 {
		neuronDistance += neuronDiffSum / float64(neuronMatching)
	}

	connDistance := (config.DistanceDisjointCoef * float64(connDisjoint)) / connN
	if connMatching > 0 {
		connDistance += connDiffSum / float64(connMatching)
	}

	return neuronDistance + connDistance
}

// genomeGob mirrors Genome's fields for gob encoding. gob only encodes
// exported fields, and neuronOrder/connOrder are deliberately unexported
// (callers must not be able to reorder them behind AddNeuron/AddConnection),
// so Genome supplies its own GobEncode/GobDecode to carry them through a
// checkpoint round-trip.
type genomeGob struct {
	Key         int
	NeuronOrder []int
	Neurons     map[int]*NeuronGene
	ConnOrder   []ConnectionKey
	Connections map[ConnectionKey]*ConnectionGene
}

// GobEncode implements gob.GobEncoder.
func (g *Genome) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	aux := genomeGob{
		Key:         g.Key,
		NeuronOrder: g.neuronOrder,
		Neurons:     g.Neurons,
		ConnOrder:   g.connOrder,
		Connections: g.Connections,
	}
	if err := gob.NewEncoder(&buf).Encode(aux); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Genome) GobDecode(data []byte) error {
	var aux genomeGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	g.Key = aux.Key
	g.neuronOrder = aux.NeuronOrder
	g.Neurons = aux.Neurons
	g.connOrder = aux.ConnOrder
	g.Connections = aux.Connections
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
