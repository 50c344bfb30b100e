package referencechain

// ConstructionError indicates that a chain could not be built from the given
// joint metadata. It is fatal at model-build time; malformed chains are never
// silently repaired.
type ConstructionError struct {
	err error
}

// NewConstructionError wraps the underlying validation failure(s).
func NewConstructionError(err error) *ConstructionError {
	return &ConstructionError{err: err}
}

func (e *ConstructionError) Error() string {
	return "chain construction failed: " + e.err.Error()
}

// Unwrap exposes the aggregated validation errors.
func (e *ConstructionError) Unwrap() error {
	return e.err
}
