package referencechain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Chain is an immutable description of a serial manipulator: joints ordered
// root to tip whose transforms compose by post-multiplication in that order,
// plus a fixed end-effector offset applied after the last joint. A Chain is
// safe for concurrent use once constructed.
type Chain struct {
	name     string
	joints   []Joint
	eeOffset mgl64.Mat4
	ndof     int

	// cached origin transforms as dual quaternions, for the reference FK
	originDQs []dualquat.Number
	eeDQ      dualquat.Number
}

// NewChain validates the given joints and builds a chain. Validation failures
// are aggregated and returned as a *ConstructionError; a chain is never built
// from partially valid metadata.
func NewChain(name string, joints []Joint, eeOffset mgl64.Mat4) (*Chain, error) {
	var errAll error
	if len(joints) == 0 {
		multierr.AppendInto(&errAll, errors.New("chain must contain at least one joint"))
	}
	ndof := 0
	for i, j := range joints {
		switch j.Type {
		case JointTypeRevolute, JointTypePrismatic:
			ndof++
			if norm := j.Axis.Norm(); math.Abs(norm-1) > 1e-8 {
				multierr.AppendInto(&errAll,
					errors.Errorf("joint %d (%s): axis must be a unit vector, got norm %v", i, j.Name, norm))
			}
		case JointTypeFixed:
		default:
			multierr.AppendInto(&errAll, errors.Errorf("joint %d (%s): unsupported joint type %q", i, j.Name, j.Type))
		}
		if !mat4IsFinite(j.Origin) {
			multierr.AppendInto(&errAll, errors.Errorf("joint %d (%s): origin transform has non-finite entries", i, j.Name))
		} else if !mat4HasAffineBottomRow(j.Origin) {
			multierr.AppendInto(&errAll, errors.Errorf("joint %d (%s): origin transform bottom row must be (0,0,0,1)", i, j.Name))
		}
		if j.Actuated() && j.Limit.Min > j.Limit.Max {
			multierr.AppendInto(&errAll, errors.Errorf("joint %d (%s): limit min %v exceeds max %v", i, j.Name, j.Limit.Min, j.Limit.Max))
		}
	}
	if !mat4IsFinite(eeOffset) || !mat4HasAffineBottomRow(eeOffset) {
		multierr.AppendInto(&errAll, errors.New("end-effector offset is not a valid affine transform"))
	}
	if errAll != nil {
		return nil, NewConstructionError(errAll)
	}

	c := &Chain{
		name:      name,
		joints:    append([]Joint{}, joints...),
		eeOffset:  eeOffset,
		ndof:      ndof,
		originDQs: make([]dualquat.Number, len(joints)),
		eeDQ:      dualQuatFromMat4(eeOffset),
	}
	for i, j := range c.joints {
		c.originDQs[i] = dualQuatFromMat4(j.Origin)
	}
	return c, nil
}

// Name returns the chain's name.
func (c *Chain) Name() string {
	return c.name
}

// DoF returns the number of actuated joints.
func (c *Chain) DoF() int {
	return c.ndof
}

// Joints returns the joints in root-to-tip order. The returned slice is a
// copy; the chain itself is never mutated.
func (c *Chain) Joints() []Joint {
	return append([]Joint{}, c.joints...)
}

// EndEffectorOffset returns the fixed transform applied after the last joint.
func (c *Chain) EndEffectorOffset() mgl64.Mat4 {
	return c.eeOffset
}

// Limits returns the advisory limits of the actuated joints in traversal
// order, one per degree of freedom.
func (c *Chain) Limits() []Limit {
	limits := make([]Limit, 0, c.ndof)
	for _, j := range c.joints {
		if j.Actuated() {
			limits = append(limits, j.Limit)
		}
	}
	return limits
}

// Transform computes the end-effector pose for a single joint configuration
// by composing dual quaternions root to tip. The result is a 7-vector
// (x, y, z, qw, qx, qy, qz) with a unit, scalar-first quaternion. It uses no
// batching and serves as the reference implementation that batched engines
// are validated against.
func (c *Chain) Transform(angles []float64) ([]float64, error) {
	if len(angles) != c.ndof {
		return nil, errors.Errorf("given input length %d does not match chain DoF %d", len(angles), c.ndof)
	}
	for i, a := range angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, errors.Errorf("joint angle %d is non-finite: %v", i, a)
		}
	}

	composed := dualquat.Number{Real: quat.Number{Real: 1}}
	idx := 0
	for i, j := range c.joints {
		composed = dualquat.Mul(composed, c.originDQs[i])
		switch j.Type {
		case JointTypeRevolute:
			composed = dualquat.Mul(composed, rotationDQ(j.Axis.X, j.Axis.Y, j.Axis.Z, angles[idx]))
			idx++
		case JointTypePrismatic:
			composed = dualquat.Mul(composed, translationDQ(
				j.Axis.X*angles[idx], j.Axis.Y*angles[idx], j.Axis.Z*angles[idx]))
			idx++
		case JointTypeFixed:
		}
	}
	composed = dualquat.Mul(composed, c.eeDQ)

	// Multiplying by the conjugate yields a dual part holding the full
	// cartesian translation.
	cart := dualquat.Mul(composed, dualquat.Conj(composed))
	rot := composed.Real
	if vecLen := quat.Abs(rot); vecLen != 1 {
		rot = quat.Scale(1/vecLen, rot)
	}
	return []float64{
		cart.Dual.Imag, cart.Dual.Jmag, cart.Dual.Kmag,
		rot.Real, rot.Imag, rot.Jmag, rot.Kmag,
	}, nil
}

// CheckLimits reports, for each row of the (N, ndof) batch, whether every
// angle is within the corresponding advisory limit. It never rejects a batch;
// limits are advisory only.
func (c *Chain) CheckLimits(angles *mat.Dense) ([]bool, error) {
	if angles == nil {
		return nil, errors.New("angle batch is nil")
	}
	rows, cols := angles.Dims()
	if cols != c.ndof {
		return nil, errors.Errorf("given batch has %d columns, chain DoF is %d", cols, c.ndof)
	}
	limits := c.Limits()
	out := make([]bool, rows)
	for i := 0; i < rows; i++ {
		out[i] = true
		for k, lim := range limits {
			if v := angles.At(i, k); v < lim.Min || v > lim.Max {
				out[i] = false
				break
			}
		}
	}
	return out, nil
}

// RandomInputs produces an (n, ndof) batch of joint angles uniformly sampled
// within the chain's limits using the provided generator. Infinite limits
// default to [-999, 999]. Passing the same seeded generator reproduces the
// same batch; there is no process-wide seed state.
func RandomInputs(c *Chain, n int, rSeed *rand.Rand) *mat.Dense {
	if rSeed == nil {
		//nolint:gosec
		rSeed = rand.New(rand.NewSource(1))
	}
	limits := c.Limits()
	out := mat.NewDense(n, len(limits), nil)
	for i := 0; i < n; i++ {
		for k, lim := range limits {
			l, u := lim.Min, lim.Max
			if l == math.Inf(-1) {
				l = -999
			}
			if u == math.Inf(1) {
				u = 999
			}
			jRange := math.Abs(u - l)
			out.Set(i, k, rSeed.Float64()*jRange+l)
		}
	}
	return out
}

// dualQuatFromMat4 converts a homogeneous transform to a unit dual
// quaternion; the dual part is set against the rotation so that composition
// matches matrix post-multiplication.
func dualQuatFromMat4(m mgl64.Mat4) dualquat.Number {
	mq := mgl64.Mat4ToQuat(m)
	real := quat.Number{Real: mq.W, Imag: mq.X(), Jmag: mq.Y(), Kmag: mq.Z()}
	dual := quat.Mul(quat.Number{Imag: m.At(0, 3) / 2, Jmag: m.At(1, 3) / 2, Kmag: m.At(2, 3) / 2}, real)
	return dualquat.Number{Real: real, Dual: dual}
}

// rotationDQ returns the dual quaternion rotating by angle about the given
// unit axis, with no translation.
func rotationDQ(x, y, z, angle float64) dualquat.Number {
	s := math.Sin(angle / 2)
	return dualquat.Number{Real: quat.Number{
		Real: math.Cos(angle / 2),
		Imag: s * x,
		Jmag: s * y,
		Kmag: s * z,
	}}
}

// translationDQ returns the dual quaternion translating by (x, y, z), with no
// rotation.
func translationDQ(x, y, z float64) dualquat.Number {
	return dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{Imag: x / 2, Jmag: y / 2, Kmag: z / 2},
	}
}
