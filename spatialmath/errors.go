package spatialmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PreconditionError indicates that a call was rejected before any computation
// began, e.g. a nil batch or two batches with different leading dimensions.
type PreconditionError struct {
	msg string
}

// NewPreconditionError returns a PreconditionError with the given description.
func NewPreconditionError(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{msg: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.msg
}

// ShapeError indicates that an input batch had the wrong dimensions.
type ShapeError struct {
	wantRows, wantCols int
	gotRows, gotCols   int
	what               string
}

// NewShapeError returns a ShapeError describing the expected and received shapes.
// A want value of -1 means any extent is acceptable in that dimension.
func NewShapeError(what string, wantRows, wantCols, gotRows, gotCols int) *ShapeError {
	return &ShapeError{wantRows, wantCols, gotRows, gotCols, what}
}

func (e *ShapeError) Error() string {
	want := func(n int) string {
		if n < 0 {
			return "N"
		}
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s must have shape (%s, %s), got (%d, %d)",
		e.what, want(e.wantRows), want(e.wantCols), e.gotRows, e.gotCols)
}

// NumericError indicates a non-finite value was found in an input. It is
// raised instead of letting NaN or Inf propagate silently into results.
type NumericError struct {
	what     string
	row, col int
	value    float64
}

// NewNumericError returns a NumericError locating the offending entry.
func NewNumericError(what string, row, col int, value float64) *NumericError {
	return &NumericError{what, row, col, value}
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("%s contains non-finite value %v at (%d, %d)", e.what, e.value, e.row, e.col)
}

// CheckBatch validates that m is non-nil, has the expected column count, a
// nonzero number of rows, and only finite entries. A wantCols of -1 skips the
// column check. Validation happens before any computation that consumes m.
func CheckBatch(what string, m *mat.Dense, wantCols int) error {
	return checkDense(what, m, wantCols)
}

// checkDense validates that m is non-nil, has the expected column count, a
// nonzero number of rows, and only finite entries. wantCols of -1 skips the
// column check.
func checkDense(what string, m *mat.Dense, wantCols int) error {
	if m == nil {
		return NewPreconditionError("%s is nil", what)
	}
	r, c := m.Dims()
	if r == 0 {
		return NewShapeError(what, -1, wantCols, r, c)
	}
	if wantCols >= 0 && c != wantCols {
		return NewShapeError(what, -1, wantCols, r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return NewNumericError(what, i, j, v)
			}
		}
	}
	return nil
}

// checkSameBatchSize validates that two batches share a leading dimension.
func checkSameBatchSize(what string, n1, n2 int) error {
	if n1 != n2 {
		return NewPreconditionError("%s batch sizes do not match: %d != %d", what, n1, n2)
	}
	return nil
}
