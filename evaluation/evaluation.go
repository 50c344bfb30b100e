// Package evaluation compares batches of poses for positional and rotational
// closeness. It is a consumer of the rotation algebra, used by validation
// harnesses and tests; the kinematics engines do not depend on it.
package evaluation

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/batchfk/spatialmath"
)

// Default thresholds for considering two poses equal, matching the tightest
// tolerances the kinematics pipeline is validated to.
const (
	DefaultMaxL2Err      = 5e-4
	DefaultMaxAngularErr = math.Pi / 180 * 0.06 // radians
)

// PoseErrors returns the per-sample positional L2 error and rotational
// geodesic error (radians) between two pose batches of equal size.
func PoseErrors(p1, p2 *spatialmath.PoseBatch) ([]float64, []float64, error) {
	if p1 == nil || p2 == nil {
		return nil, nil, errors.New("pose batch is nil")
	}
	if p1.Len() != p2.Len() {
		return nil, nil, errors.Errorf("pose batches are of different sizes: %d != %d", p1.Len(), p2.Len())
	}
	n := p1.Len()

	l2 := make([]float64, n)
	diff := make([]float64, 3)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			diff[k] = p1.RawMatrix().At(i, k) - p2.RawMatrix().At(i, k)
		}
		l2[i] = floats.Norm(diff, 2)
	}

	q1, err := p1.Quaternions()
	if err != nil {
		return nil, nil, err
	}
	q2, err := p2.Quaternions()
	if err != nil {
		return nil, nil, err
	}
	ang, err := spatialmath.GeodesicQuaternionDistance(q1, q2)
	if err != nil {
		return nil, nil, err
	}
	return l2, ang, nil
}

// PosesAlmostEqual returns nil when every sample of the two batches is within
// the given thresholds, and an error naming the first offending sample
// otherwise. Non-positive thresholds fall back to the defaults.
func PosesAlmostEqual(p1, p2 *spatialmath.PoseBatch, maxL2, maxAngular float64) error {
	if maxL2 <= 0 {
		maxL2 = DefaultMaxL2Err
	}
	if maxAngular <= 0 {
		maxAngular = DefaultMaxAngularErr
	}
	l2, ang, err := PoseErrors(p1, p2)
	if err != nil {
		return err
	}
	for i := range l2 {
		if l2[i] > maxL2 {
			return errors.Errorf("positions of sample %d are not equal (error=%v, max=%v)", i, l2[i], maxL2)
		}
		if ang[i] > maxAngular {
			return errors.Errorf("rotations of sample %d are not equal (error=%v rad, max=%v rad)", i, ang[i], maxAngular)
		}
	}
	return nil
}

// Summary aggregates the error distributions between two pose batches.
type Summary struct {
	L2      []float64
	Angular []float64

	MaxL2       float64
	MeanL2      float64
	MaxAngular  float64
	MeanAngular float64
}

// Summarize computes per-sample errors plus their maxima and means.
func Summarize(p1, p2 *spatialmath.PoseBatch) (*Summary, error) {
	l2, ang, err := PoseErrors(p1, p2)
	if err != nil {
		return nil, err
	}
	return &Summary{
		L2:          l2,
		Angular:     ang,
		MaxL2:       floats.Max(l2),
		MeanL2:      floats.Sum(l2) / float64(len(l2)),
		MaxAngular:  floats.Max(ang),
		MeanAngular: floats.Sum(ang) / float64(len(ang)),
	}, nil
}
