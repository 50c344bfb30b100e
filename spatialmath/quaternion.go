package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// minQuatNorm is the smallest norm for which Inverse will attempt division.
const minQuatNorm = 1e-12

// Conjugate returns a new batch with the vector part of every quaternion
// negated. For unit quaternions the conjugate equals the inverse.
func (qb *QuaternionBatch) Conjugate() *QuaternionBatch {
	n := qb.Len()
	out := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		c := quat.Conj(qb.At(i))
		out.SetRow(i, []float64{c.Real, c.Imag, c.Jmag, c.Kmag})
	}
	return &QuaternionBatch{data: out}
}

// Inverse returns q* / ||q||^2 for every quaternion in the batch. It rejects
// batches containing quaternions with a near-zero norm rather than dividing
// by a vanishing denominator.
func (qb *QuaternionBatch) Inverse() (*QuaternionBatch, error) {
	n := qb.Len()
	out := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		q := qb.At(i)
		norm2 := q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag
		if norm2 < minQuatNorm {
			return nil, NewNumericError("quaternion batch", i, 0, norm2)
		}
		c := quat.Scale(1/norm2, quat.Conj(q))
		out.SetRow(i, []float64{c.Real, c.Imag, c.Jmag, c.Kmag})
	}
	return &QuaternionBatch{data: out}, nil
}

// Norms returns the Euclidean norm of each quaternion 4-vector.
func (qb *QuaternionBatch) Norms() []float64 {
	n := qb.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		q := qb.At(i)
		out[i] = math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	}
	return out
}

// MulQuaternionBatches computes the elementwise Hamilton product q1 ⊗ q2.
// The product represents "apply q2, then q1". Both batches must have the same
// leading dimension.
func MulQuaternionBatches(q1, q2 *QuaternionBatch) (*QuaternionBatch, error) {
	if q1 == nil || q2 == nil {
		return nil, NewPreconditionError("quaternion batch is nil")
	}
	if err := checkSameBatchSize("quaternion", q1.Len(), q2.Len()); err != nil {
		return nil, err
	}
	n := q1.Len()
	out := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		p := quat.Mul(q1.At(i), q2.At(i))
		out.SetRow(i, []float64{p.Real, p.Imag, p.Jmag, p.Kmag})
	}
	return &QuaternionBatch{data: out}, nil
}

// Flip returns the batch with every quaternion multiplied by -1. q and -q
// represent the same rotation.
func (qb *QuaternionBatch) Flip() *QuaternionBatch {
	n := qb.Len()
	out := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, []float64{-qb.data.At(i, 0), -qb.data.At(i, 1), -qb.data.At(i, 2), -qb.data.At(i, 3)})
	}
	return &QuaternionBatch{data: out}
}
