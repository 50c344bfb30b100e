package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// TransformsFromRotationsAndTranslations embeds each 3x3 rotation into the
// top-left block and each translation row into the top-right column of a 4x4
// homogeneous transform with bottom row (0, 0, 0, 1).
func TransformsFromRotationsAndTranslations(rb RotationBatch, translations *mat.Dense) (TransformBatch, error) {
	if len(rb) == 0 {
		return nil, NewPreconditionError("rotation batch is empty")
	}
	if err := checkDense("translation batch", translations, 3); err != nil {
		return nil, err
	}
	rows, _ := translations.Dims()
	if err := checkSameBatchSize("rotation/translation", len(rb), rows); err != nil {
		return nil, err
	}
	out := make(TransformBatch, len(rb))
	for i, r := range rb {
		m := mgl64.Ident4()
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				m.Set(row, col, r.At(row, col))
			}
			m.Set(row, 3, translations.At(i, row))
		}
		out[i] = m
	}
	return out, nil
}

// TransformsFromQuaternionsAndTranslations builds homogeneous transforms from
// unit quaternions and translation rows.
func TransformsFromQuaternionsAndTranslations(qb *QuaternionBatch, translations *mat.Dense) (TransformBatch, error) {
	if qb == nil {
		return nil, NewPreconditionError("quaternion batch is nil")
	}
	return TransformsFromRotationsAndTranslations(qb.RotationMatrices(), translations)
}

// Poses converts the transform batch to compact (x, y, z, qw, qx, qy, qz)
// form. Quaternion extraction uses the stable largest-diagonal branch; the
// emitted quaternions are unit within floating-point tolerance. The sign of
// each quaternion is whichever the stable branch produces; q and -q describe
// the same rotation.
func (tb TransformBatch) Poses() (*PoseBatch, error) {
	if len(tb) == 0 {
		return nil, NewPreconditionError("transform batch is empty")
	}
	out := mat.NewDense(len(tb), 7, nil)
	for i, t := range tb {
		q := mgl64.Mat4ToQuat(t)
		out.SetRow(i, []float64{t.At(0, 3), t.At(1, 3), t.At(2, 3), q.W, q.X(), q.Y(), q.Z()})
	}
	return NewPoseBatch(out)
}

// TranslationVec returns the translation column of a single transform.
func TranslationVec(t mgl64.Mat4) r3.Vector {
	return r3.Vector{X: t.At(0, 3), Y: t.At(1, 3), Z: t.At(2, 3)}
}
