package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrices expands each quaternion to a 3x3 rotation matrix using the
// standard closed-form unit-quaternion expansion. Inputs are not renormalized;
// callers must supply unit quaternions or accept an only approximately
// orthonormal result. The identity quaternion maps to the exact identity.
func (qb *QuaternionBatch) RotationMatrices() RotationBatch {
	n := qb.Len()
	out := make(RotationBatch, n)
	for i := 0; i < n; i++ {
		w := qb.data.At(i, 0)
		x := qb.data.At(i, 1)
		y := qb.data.At(i, 2)
		z := qb.data.At(i, 3)

		xx, yy, zz := x*x, y*y, z*z
		xy, xz, yz := x*y, x*z, y*z
		xw, yw, zw := x*w, y*w, z*w

		var r mgl64.Mat3
		r.Set(0, 0, 1-2*yy-2*zz)
		r.Set(0, 1, 2*xy-2*zw)
		r.Set(0, 2, 2*xz+2*yw)
		r.Set(1, 0, 2*xy+2*zw)
		r.Set(1, 1, 1-2*xx-2*zz)
		r.Set(1, 2, 2*yz-2*xw)
		r.Set(2, 0, 2*xz-2*yw)
		r.Set(2, 1, 2*yz+2*xw)
		r.Set(2, 2, 1-2*xx-2*yy)
		out[i] = r
	}
	return out
}

// RotationBatchToQuaternions extracts a scalar-first unit quaternion from each
// rotation matrix, selecting the numerically stable branch based on the
// largest diagonal element so no division by a near-zero term occurs.
func RotationBatchToQuaternions(rb RotationBatch) (*QuaternionBatch, error) {
	if len(rb) == 0 {
		return nil, NewPreconditionError("rotation batch is empty")
	}
	out := mat.NewDense(len(rb), 4, nil)
	for i, r := range rb {
		m := mgl64.Ident4()
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				m.Set(row, col, r.At(row, col))
			}
		}
		q := mgl64.Mat4ToQuat(m)
		out.SetRow(i, []float64{q.W, q.X(), q.Y(), q.Z()})
	}
	return &QuaternionBatch{data: out}, nil
}

// MulRotationBatches computes the elementwise matrix product r1 · r2.
func MulRotationBatches(r1, r2 RotationBatch) (RotationBatch, error) {
	if err := checkSameBatchSize("rotation", len(r1), len(r2)); err != nil {
		return nil, err
	}
	out := make(RotationBatch, len(r1))
	for i := range r1 {
		out[i] = r1[i].Mul3(r2[i])
	}
	return out, nil
}
