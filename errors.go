package permutohedral

import (
	"fmt"

	"github.com/hupe1980/permutohedral/internal/lattice"
)

var (
	// ErrTableFull reports hash-table probe-space exhaustion. This is a
	// capacity-sizing invariant violation, never a transient condition;
	// the invocation is aborted rather than truncated.
	ErrTableFull = lattice.ErrTableFull

	// ErrCapacityExceeded is returned when the requested geometry cannot
	// be addressed by the lattice's 32-bit slot space.
	ErrCapacityExceeded = lattice.ErrCapacityOverflow
)

// ErrInvalidDimension indicates an invalid filter dimension or sample
// count passed at construction time.
type ErrInvalidDimension struct {
	Name  string
	Value int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Name, e.Value)
}

// ErrDimensionMismatch indicates a buffer whose length does not match
// the configured filter geometry.
type ErrDimensionMismatch struct {
	Buffer   string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("%s length mismatch: expected %d, got %d", e.Buffer, e.Expected, e.Actual)
}

// ErrInvalidBandwidth indicates a zero filter standard deviation.
type ErrInvalidBandwidth struct {
	Name string
}

func (e *ErrInvalidBandwidth) Error() string {
	return fmt.Sprintf("invalid %s: must be non-zero", e.Name)
}
