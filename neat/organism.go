package neat

import (
	"bytes"
	"encoding/gob"
)

// Organism pairs a genome with the fitness last assigned to it by an
// Environment. Fitness lives here rather than on Genome itself because a
// genome's identity (its genes) and its evaluated performance are
// conceptually distinct — a freshly mutated offspring has genes before it
// has ever been evaluated.
type Organism struct {
	Genome  *Genome
	Fitness float64
}

// NewOrganism wraps g with a zero fitness, as if freshly created and not
// yet evaluated.
func NewOrganism(g *Genome) *Organism {
	return &Organism{Genome: g}
}

// Copy returns an organism wrapping a deep copy of the genome, carrying
// over the current fitness value.
func (o *Organism) Copy() *Organism {
	return &Organism{Genome: o.Genome.Copy(), Fitness: o.Fitness}
}

// InnovationCounter hands out neuron ids for a single population run. Ids
// are monotonically increasing and never reused, which is what lets
// ConnectionKey double as a historical marker: two genomes that
// independently grow a connection between the same pair of ids are
// structurally compatible, because those ids can only have come from the
// same ancestral mutation or the same seed genome.
type InnovationCounter struct {
	next int
}

// NewInnovationCounter returns a counter starting at zero.
func NewInnovationCounter() *InnovationCounter {
	return &InnovationCounter{}
}

// NextNeuronID returns the next unused neuron id and advances the counter.
func (ic *InnovationCounter) NextNeuronID() int {
	id := ic.next
	ic.next++
	return id
}

// Peek returns the next id that would be returned by NextNeuronID, without
// consuming it.
func (ic *InnovationCounter) Peek() int {
	return ic.next
}

// GobEncode implements gob.GobEncoder. next is unexported so the counter
// needs an explicit encoding to survive a checkpoint round-trip.
func (ic *InnovationCounter) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ic.next); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (ic *InnovationCounter) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&ic.next)
}
