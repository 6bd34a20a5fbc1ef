package neat

import "errors"

// ErrUserContractViolation marks an error caused by a caller-supplied
// Environment breaking its contract with Population.Evolve — returning a
// negative or non-finite fitness, returning a non-nil error, or panicking
// inside Evaluate. These are always returned as errors, never panics: the
// caller's environment is external input, not an invariant this package
// controls.
var ErrUserContractViolation = errors.New("neat: environment violated its contract")

// ErrStructuralInvariant marks a condition that should be impossible given
// the package's own invariants (a genome referencing a missing neuron, an
// empty initial population, an unparseable config file already validated
// at load time). Code that detects one of these panics rather than
// returning an error — there is no recovery strategy for a violated
// internal invariant, only a bug to fix.
var ErrStructuralInvariant = errors.New("neat: structural invariant violated")
