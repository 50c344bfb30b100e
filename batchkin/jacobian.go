package batchkin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/batchfk/referencechain"
)

// Jacobian holds the (N, 7, ndof) derivative of the compact pose with respect
// to each actuated joint angle: three position rows followed by four
// quaternion rows per sample.
type Jacobian struct {
	data      []float64
	batchSize int
	ndof      int
}

// BatchSize returns the leading dimension N.
func (j *Jacobian) BatchSize() int {
	return j.batchSize
}

// DoF returns the trailing dimension, one column per actuated joint.
func (j *Jacobian) DoF() int {
	return j.ndof
}

// At returns d(pose component row)/d(joint col) for sample i. Rows 0-2 are
// x, y, z; rows 3-6 are qw, qx, qy, qz.
func (j *Jacobian) At(i, row, col int) float64 {
	return j.data[(i*7+row)*j.ndof+col]
}

// Sample returns the (7, ndof) Jacobian of sample i as a dense matrix copy.
func (j *Jacobian) Sample(i int) *mat.Dense {
	out := mat.NewDense(7, j.ndof, nil)
	for row := 0; row < 7; row++ {
		for col := 0; col < j.ndof; col++ {
			out.Set(row, col, j.At(i, row, col))
		}
	}
	return out
}

// IsFinite reports whether every entry is finite.
func (j *Jacobian) IsFinite() bool {
	for _, v := range j.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (j *Jacobian) set(i, row, col int, v float64) {
	j.data[(i*7+row)*j.ndof+col] = v
}

// Jacobian computes the closed-form derivative of the compact pose with
// respect to the joint angle batch. Position rows use the geometric Jacobian
// (axis cross the lever arm for revolute joints, the axis itself for
// prismatic joints); quaternion rows use dq/dθ = ½·(0, a)⊗q with a the joint
// axis in the base frame. Every entry is finite for finite inputs, including
// at angle 0 and near π; where quaternion extraction switches branches the
// derivative of the reported quaternion is non-unique but still defined.
func (e *Engine) Jacobian(angles *mat.Dense) (*Jacobian, error) {
	n, err := e.validateAngles(angles)
	if err != nil {
		return nil, err
	}

	out := &Jacobian{
		data:      make([]float64, n*7*e.ndof),
		batchSize: n,
		ndof:      e.ndof,
	}

	// Per-sample forward pass collecting each actuated joint's axis and
	// origin expressed in the base frame.
	axesWorld := make([]mgl64.Vec3, e.ndof)
	originsWorld := make([]mgl64.Vec3, e.ndof)
	for i := 0; i < n; i++ {
		running := mgl64.Ident4()
		col := 0
		for ji, j := range e.joints {
			running = running.Mul4(j.Origin)
			switch j.Type {
			case referencechain.JointTypeRevolute:
				axesWorld[col] = rotateDirection(running, e.axes[ji])
				originsWorld[col] = mgl64.Vec3{running.At(0, 3), running.At(1, 3), running.At(2, 3)}
				running = running.Mul4(mgl64.HomogRotate3D(angles.At(i, col), e.axes[ji]))
				col++
			case referencechain.JointTypePrismatic:
				axesWorld[col] = rotateDirection(running, e.axes[ji])
				originsWorld[col] = mgl64.Vec3{running.At(0, 3), running.At(1, 3), running.At(2, 3)}
				d := angles.At(i, col)
				running = running.Mul4(mgl64.Translate3D(e.axes[ji][0]*d, e.axes[ji][1]*d, e.axes[ji][2]*d))
				col++
			case referencechain.JointTypeFixed:
			}
		}
		running = running.Mul4(e.eeOffset)

		p := mgl64.Vec3{running.At(0, 3), running.At(1, 3), running.At(2, 3)}
		mq := mgl64.Mat4ToQuat(running)
		q := quat.Number{Real: mq.W, Imag: mq.X(), Jmag: mq.Y(), Kmag: mq.Z()}

		col = 0
		for _, j := range e.joints {
			if !j.Actuated() {
				continue
			}
			a := axesWorld[col]
			if j.Type == referencechain.JointTypePrismatic {
				// Pure translation: position rows are the axis, orientation
				// does not change.
				out.set(i, 0, col, a[0])
				out.set(i, 1, col, a[1])
				out.set(i, 2, col, a[2])
			} else {
				lever := p.Sub(originsWorld[col])
				dp := a.Cross(lever)
				out.set(i, 0, col, dp[0])
				out.set(i, 1, col, dp[1])
				out.set(i, 2, col, dp[2])

				dq := quat.Scale(0.5, quat.Mul(quat.Number{Imag: a[0], Jmag: a[1], Kmag: a[2]}, q))
				out.set(i, 3, col, dq.Real)
				out.set(i, 4, col, dq.Imag)
				out.set(i, 5, col, dq.Jmag)
				out.set(i, 6, col, dq.Kmag)
			}
			col++
		}
	}
	return out, nil
}

// rotateDirection applies only the rotation block of t to a direction vector.
func rotateDirection(t mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	r := t.Mul4x1(mgl64.Vec4{v[0], v[1], v[2], 0})
	return mgl64.Vec3{r[0], r[1], r[2]}
}
