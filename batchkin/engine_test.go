package batchkin

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/batchfk/referencechain"
	"go.viam.com/batchfk/spatialmath"
)

func TestNewEngine(t *testing.T) {
	logger := golog.NewTestLogger(t)

	engine, err := NewEngine(planarTwoLink(t), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Chain().DoF(), test.ShouldEqual, 2)

	_, err = NewEngine(nil, logger)
	test.That(t, err, test.ShouldNotBeNil)

	// A nil logger is allowed.
	_, err = NewEngine(planarTwoLink(t), nil)
	test.That(t, err, test.ShouldBeNil)
}

func TestComputeKnownPoses(t *testing.T) {
	engine, err := NewEngine(planarTwoLink(t), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	angles := mat.NewDense(3, 2, []float64{
		0, 0,
		0, math.Pi / 2,
		math.Pi / 2, 0,
	})
	poses, err := engine.ComputePoses(angles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses.Len(), test.ShouldEqual, 3)

	raw := poses.RawMatrix()
	// Fully extended along x.
	test.That(t, raw.At(0, 0), test.ShouldAlmostEqual, 0.5, 1e-12)
	test.That(t, raw.At(0, 1), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, math.Abs(raw.At(0, 3)), test.ShouldAlmostEqual, 1, 1e-12)
	// Elbow bent 90 degrees.
	test.That(t, raw.At(1, 0), test.ShouldAlmostEqual, 0.3, 1e-12)
	test.That(t, raw.At(1, 1), test.ShouldAlmostEqual, 0.2, 1e-12)
	// Shoulder bent 90 degrees swings the arm to +y.
	test.That(t, raw.At(2, 0), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, raw.At(2, 1), test.ShouldAlmostEqual, 0.5, 1e-12)
}

func TestComputePrismatic(t *testing.T) {
	engine, err := NewEngine(rprChain(t), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// Only the prismatic joint is displaced; the end effector rises by that
	// displacement.
	rest, err := engine.ComputePoses(mat.NewDense(1, 3, []float64{0, 0, 0}))
	test.That(t, err, test.ShouldBeNil)
	lifted, err := engine.ComputePoses(mat.NewDense(1, 3, []float64{0, 0.2, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lifted.RawMatrix().At(0, 2)-rest.RawMatrix().At(0, 2), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, lifted.RawMatrix().At(0, 0), test.ShouldAlmostEqual, rest.RawMatrix().At(0, 0), 1e-12)
}

// compareToReference checks every batched pose against the single-sample dual
// quaternion computation.
func compareToReference(t *testing.T, chain *referencechain.Chain, n int, seed int64) {
	t.Helper()
	engine, err := NewEngine(chain, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	//nolint:gosec
	angles := referencechain.RandomInputs(chain, n, rand.New(rand.NewSource(seed)))
	poses, err := engine.ComputePoses(angles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses.Len(), test.ShouldEqual, n)

	raw := poses.RawMatrix()
	for i := 0; i < n; i++ {
		want, err := chain.Transform(mat.Row(nil, i, angles))
		test.That(t, err, test.ShouldBeNil)
		for k := 0; k < 3; k++ {
			test.That(t, raw.At(i, k), test.ShouldAlmostEqual, want[k], 1e-8)
		}
		// Quaternions may differ by global sign between the two paths.
		dot := 0.0
		for k := 3; k < 7; k++ {
			dot += raw.At(i, k) * want[k]
		}
		test.That(t, math.Abs(dot), test.ShouldAlmostEqual, 1, 1e-8)
	}
}

func TestComputeMatchesReference(t *testing.T) {
	t.Run("planar2r", func(t *testing.T) { compareToReference(t, planarTwoLink(t), 100, 1) })
	t.Run("rpr", func(t *testing.T) { compareToReference(t, rprChain(t), 100, 2) })
	t.Run("seven_dof", func(t *testing.T) { compareToReference(t, sevenDOF(t), 100, 3) })
}

func TestComputeBatchSizeInvariance(t *testing.T) {
	chain := sevenDOF(t)
	engine, err := NewEngine(chain, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	//nolint:gosec
	big := referencechain.RandomInputs(chain, 500, rand.New(rand.NewSource(7)))
	bigPoses, err := engine.ComputePoses(big)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bigPoses.Len(), test.ShouldEqual, 500)

	for _, n := range []int{1, 10} {
		sub := mat.NewDense(n, chain.DoF(), nil)
		for i := 0; i < n; i++ {
			sub.SetRow(i, mat.Row(nil, i, big))
		}
		subPoses, err := engine.ComputePoses(sub)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, subPoses.Len(), test.ShouldEqual, n)
		for i := 0; i < n; i++ {
			for k := 0; k < 7; k++ {
				test.That(t, subPoses.RawMatrix().At(i, k), test.ShouldEqual, bigPoses.RawMatrix().At(i, k))
			}
		}
	}
}

func TestComputeQuaternionsAreUnit(t *testing.T) {
	chain := sevenDOF(t)
	engine, err := NewEngine(chain, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	//nolint:gosec
	angles := referencechain.RandomInputs(chain, 200, rand.New(rand.NewSource(11)))
	poses, err := engine.ComputePoses(angles)
	test.That(t, err, test.ShouldBeNil)

	quats, err := poses.Quaternions()
	test.That(t, err, test.ShouldBeNil)
	for _, norm := range quats.Norms() {
		test.That(t, norm, test.ShouldAlmostEqual, 1, 1e-9)
	}
}

func TestComputeEveryJointActuates(t *testing.T) {
	chain := sevenDOF(t)
	engine, err := NewEngine(chain, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	base := mat.NewDense(1, chain.DoF(), []float64{0.1, 0.2, -0.3, -1.5, 0.4, 1.0, -0.2})
	basePose, err := engine.ComputePoses(base)
	test.That(t, err, test.ShouldBeNil)

	for col := 0; col < chain.DoF(); col++ {
		bumped := mat.DenseCopyOf(base)
		bumped.Set(0, col, bumped.At(0, col)+0.2)
		pose, err := engine.ComputePoses(bumped)
		test.That(t, err, test.ShouldBeNil)

		diff := 0.0
		for k := 0; k < 7; k++ {
			diff += math.Abs(pose.RawMatrix().At(0, k) - basePose.RawMatrix().At(0, k))
		}
		test.That(t, diff, test.ShouldBeGreaterThan, 1e-6)
	}
}

func TestComputeRejectsBadBatches(t *testing.T) {
	engine, err := NewEngine(planarTwoLink(t), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, err = engine.Compute(nil)
	test.That(t, err, test.ShouldNotBeNil)
	var preErr *spatialmath.PreconditionError
	test.That(t, errors.As(err, &preErr), test.ShouldBeTrue)

	_, err = engine.Compute(mat.NewDense(2, 3, nil))
	test.That(t, err, test.ShouldNotBeNil)
	var shapeErr *spatialmath.ShapeError
	test.That(t, errors.As(err, &shapeErr), test.ShouldBeTrue)

	_, err = engine.Compute(mat.NewDense(1, 2, []float64{0, math.NaN()}))
	test.That(t, err, test.ShouldNotBeNil)
	var numErr *spatialmath.NumericError
	test.That(t, errors.As(err, &numErr), test.ShouldBeTrue)

	_, err = engine.Compute(mat.NewDense(1, 2, []float64{math.Inf(1), 0}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.As(err, &numErr), test.ShouldBeTrue)
}
