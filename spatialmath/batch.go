// Package spatialmath implements batched rotation algebra: conversions among
// quaternion, rotation-matrix and homogeneous-transform representations of
// orientation, plus geodesic distance metrics between orientations.
//
// Every operation carries an explicit leading batch dimension, even for a
// single sample. Quaternions are scalar-first (w, x, y, z), matching
// gonum's quat.Number layout.
package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// QuaternionBatch is a batch of N scalar-first quaternions backed by an (N, 4)
// dense matrix. The batch does not enforce unit norm; operations that require
// unit quaternions document that requirement.
type QuaternionBatch struct {
	data *mat.Dense
}

// NewQuaternionBatch wraps an (N, 4) matrix of scalar-first quaternions.
// The matrix is referenced, not copied; callers must not mutate it while the
// batch is in use.
func NewQuaternionBatch(data *mat.Dense) (*QuaternionBatch, error) {
	if err := checkDense("quaternion batch", data, 4); err != nil {
		return nil, err
	}
	return &QuaternionBatch{data: data}, nil
}

// NewQuaternionBatchFromNumbers builds a batch from gonum quaternions.
func NewQuaternionBatchFromNumbers(qs []quat.Number) (*QuaternionBatch, error) {
	if len(qs) == 0 {
		return nil, NewPreconditionError("quaternion batch is empty")
	}
	data := mat.NewDense(len(qs), 4, nil)
	for i, q := range qs {
		data.SetRow(i, []float64{q.Real, q.Imag, q.Jmag, q.Kmag})
	}
	return &QuaternionBatch{data: data}, nil
}

// Len returns the batch size.
func (qb *QuaternionBatch) Len() int {
	r, _ := qb.data.Dims()
	return r
}

// At returns sample i as a gonum quaternion.
func (qb *QuaternionBatch) At(i int) quat.Number {
	return quat.Number{
		Real: qb.data.At(i, 0),
		Imag: qb.data.At(i, 1),
		Jmag: qb.data.At(i, 2),
		Kmag: qb.data.At(i, 3),
	}
}

// RawMatrix returns the underlying (N, 4) matrix.
func (qb *QuaternionBatch) RawMatrix() *mat.Dense {
	return qb.data
}

// RotationBatch is a batch of N 3x3 rotation matrices.
type RotationBatch []mgl64.Mat3

// NewIdentityRotationBatch returns n copies of the identity rotation.
func NewIdentityRotationBatch(n int) RotationBatch {
	rb := make(RotationBatch, n)
	for i := range rb {
		rb[i] = mgl64.Ident3()
	}
	return rb
}

// TransformBatch is a batch of N 4x4 homogeneous transforms. The bottom row of
// every element is (0, 0, 0, 1).
type TransformBatch []mgl64.Mat4

// NewIdentityTransformBatch returns n copies of the identity transform.
func NewIdentityTransformBatch(n int) TransformBatch {
	tb := make(TransformBatch, n)
	for i := range tb {
		tb[i] = mgl64.Ident4()
	}
	return tb
}

// Rotations returns the top-left 3x3 block of each transform.
func (tb TransformBatch) Rotations() RotationBatch {
	rb := make(RotationBatch, len(tb))
	for i, t := range tb {
		var r mgl64.Mat3
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				r.Set(row, col, t.At(row, col))
			}
		}
		rb[i] = r
	}
	return rb
}

// Translations returns the (N, 3) matrix of translation columns.
func (tb TransformBatch) Translations() *mat.Dense {
	out := mat.NewDense(len(tb), 3, nil)
	for i, t := range tb {
		out.SetRow(i, []float64{t.At(0, 3), t.At(1, 3), t.At(2, 3)})
	}
	return out
}

// PoseBatch is a batch of N compact poses, one (x, y, z, qw, qx, qy, qz) row
// per sample, backed by an (N, 7) dense matrix.
type PoseBatch struct {
	data *mat.Dense
}

// NewPoseBatch wraps an (N, 7) matrix of compact poses.
func NewPoseBatch(data *mat.Dense) (*PoseBatch, error) {
	if err := checkDense("pose batch", data, 7); err != nil {
		return nil, err
	}
	return &PoseBatch{data: data}, nil
}

// Len returns the batch size.
func (pb *PoseBatch) Len() int {
	r, _ := pb.data.Dims()
	return r
}

// RawMatrix returns the underlying (N, 7) matrix.
func (pb *PoseBatch) RawMatrix() *mat.Dense {
	return pb.data
}

// Positions returns a copy of the (N, 3) position columns.
func (pb *PoseBatch) Positions() *mat.Dense {
	n := pb.Len()
	out := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, []float64{pb.data.At(i, 0), pb.data.At(i, 1), pb.data.At(i, 2)})
	}
	return out
}

// Quaternions returns a copy of the (N, 4) orientation columns.
func (pb *PoseBatch) Quaternions() (*QuaternionBatch, error) {
	n := pb.Len()
	out := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, []float64{pb.data.At(i, 3), pb.data.At(i, 4), pb.data.At(i, 5), pb.data.At(i, 6)})
	}
	return NewQuaternionBatch(out)
}
