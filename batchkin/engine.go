// Package batchkin computes forward kinematics for whole batches of joint
// configurations in one pass: every chain stage is applied to the full batch
// before moving to the next joint, so the work grows with chain length times
// batch size and never falls back to per-sample recomputation of the chain.
package batchkin

import (
	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/batchfk/referencechain"
	"go.viam.com/batchfk/spatialmath"
)

// Engine computes batches of end-effector poses from batches of joint
// angles. It holds only immutable, precomputed chain data, so a single Engine
// may serve Compute calls from many goroutines concurrently.
type Engine struct {
	chain    *referencechain.Chain
	joints   []referencechain.Joint
	axes     []mgl64.Vec3 // per joint; zero vector for fixed joints
	eeOffset mgl64.Mat4
	ndof     int
	logger   golog.Logger
}

// NewEngine builds an engine from a constructed chain. The engine never
// mutates the chain.
func NewEngine(chain *referencechain.Chain, logger golog.Logger) (*Engine, error) {
	if chain == nil {
		return nil, errors.New("chain is nil")
	}
	joints := chain.Joints()
	axes := make([]mgl64.Vec3, len(joints))
	for i, j := range joints {
		if j.Actuated() {
			axes[i] = mgl64.Vec3{j.Axis.X, j.Axis.Y, j.Axis.Z}
		}
	}
	if logger != nil {
		logger.Debugf("built forward kinematics engine for %q: %d joints, %d DoF", chain.Name(), len(joints), chain.DoF())
	}
	return &Engine{
		chain:    chain,
		joints:   joints,
		axes:     axes,
		eeOffset: chain.EndEffectorOffset(),
		ndof:     chain.DoF(),
		logger:   logger,
	}, nil
}

// Chain returns the chain model this engine was built from.
func (e *Engine) Chain() *referencechain.Chain {
	return e.chain
}

// validateAngles rejects nil batches, wrong column counts and non-finite
// values before any computation begins.
func (e *Engine) validateAngles(angles *mat.Dense) (int, error) {
	if err := spatialmath.CheckBatch("joint angle batch", angles, e.ndof); err != nil {
		return 0, err
	}
	rows, _ := angles.Dims()
	return rows, nil
}

// Compute returns the (N, 4, 4) batch of base-to-end-effector homogeneous
// transforms for the (N, ndof) angle batch. The output batch size equals the
// input batch size and the result is a pure function of the input.
func (e *Engine) Compute(angles *mat.Dense) (spatialmath.TransformBatch, error) {
	n, err := e.validateAngles(angles)
	if err != nil {
		return nil, err
	}

	running := spatialmath.NewIdentityTransformBatch(n)
	col := 0
	for ji, j := range e.joints {
		switch j.Type {
		case referencechain.JointTypeRevolute:
			for i := 0; i < n; i++ {
				local := j.Origin.Mul4(mgl64.HomogRotate3D(angles.At(i, col), e.axes[ji]))
				running[i] = running[i].Mul4(local)
			}
			col++
		case referencechain.JointTypePrismatic:
			for i := 0; i < n; i++ {
				d := angles.At(i, col)
				local := j.Origin.Mul4(mgl64.Translate3D(e.axes[ji][0]*d, e.axes[ji][1]*d, e.axes[ji][2]*d))
				running[i] = running[i].Mul4(local)
			}
			col++
		case referencechain.JointTypeFixed:
			for i := 0; i < n; i++ {
				running[i] = running[i].Mul4(j.Origin)
			}
		}
	}
	for i := 0; i < n; i++ {
		running[i] = running[i].Mul4(e.eeOffset)
	}
	return running, nil
}

// ComputePoses returns the (N, 7) compact pose batch, positions followed by
// scalar-first unit quaternions extracted with the stable largest-diagonal
// branch.
func (e *Engine) ComputePoses(angles *mat.Dense) (*spatialmath.PoseBatch, error) {
	transforms, err := e.Compute(angles)
	if err != nil {
		return nil, err
	}
	return transforms.Poses()
}
