package dxfcore

import "fmt"

// EntityLimit is the hard cap on the pre-scan entity count (top-level plus
// all block children) that [Import] checks. Shapes produced by expanding
// INSERTs are not counted against it, so the number of emitted shapes can
// exceed it.
const EntityLimit = 30000

// SizeExceededError is returned by [Import] when the pre-scan entity count
// (top-level plus all block children, before INSERT expansion) exceeds
// [EntityLimit]. It is the only error [Import] can return; every other
// malformed-input condition is tolerated and recorded as a [Diagnostic].
type SizeExceededError struct {
	Count int
	Limit int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("dxf import: %d entities exceeds the %d entity limit", e.Count, e.Limit)
}
