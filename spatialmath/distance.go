package spatialmath

import (
	"math"

	"go.viam.com/batchfk/utils"
)

// GeodesicQuaternionDistance returns the angular distance in radians, in
// [0, pi], between each pair of orientations. The absolute value of the dot
// product collapses the double cover (q and -q are the same rotation), so the
// shorter angular path is always taken. The acos argument is clamped to
// [-1, 1] so floating-point overshoot at near-identical orientations can
// never produce NaN or a small negative distance.
func GeodesicQuaternionDistance(q1, q2 *QuaternionBatch) ([]float64, error) {
	if q1 == nil || q2 == nil {
		return nil, NewPreconditionError("quaternion batch is nil")
	}
	if err := checkSameBatchSize("quaternion", q1.Len(), q2.Len()); err != nil {
		return nil, err
	}
	n := q1.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		dot := q1.data.At(i, 0)*q2.data.At(i, 0) +
			q1.data.At(i, 1)*q2.data.At(i, 1) +
			q1.data.At(i, 2)*q2.data.At(i, 2) +
			q1.data.At(i, 3)*q2.data.At(i, 3)
		out[i] = 2 * math.Acos(utils.Clamp(math.Abs(dot), -1, 1))
	}
	return out, nil
}

// GeodesicRotationDistance returns the angular distance in radians derived
// from the trace of the relative rotation R1ᵀ·R2. It agrees with the
// quaternion-based distance for the same orientations to within conversion
// tolerance; the rotation-matrix path has a precision ceiling near antipodal
// rotations, so agreement should only be expected to roughly 5e-3 rad there.
func GeodesicRotationDistance(r1, r2 RotationBatch) ([]float64, error) {
	if err := checkSameBatchSize("rotation", len(r1), len(r2)); err != nil {
		return nil, err
	}
	if len(r1) == 0 {
		return nil, NewPreconditionError("rotation batch is empty")
	}
	out := make([]float64, len(r1))
	for i := range r1 {
		rel := r1[i].Transpose().Mul3(r2[i])
		cos := (rel.At(0, 0) + rel.At(1, 1) + rel.At(2, 2) - 1) / 2
		out[i] = math.Acos(utils.Clamp(cos, -1, 1))
	}
	return out, nil
}
