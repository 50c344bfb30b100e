// Package dataset persists ground-truth forward kinematics data: per robot,
// one NumPy file of joint angle samples and one of the expected poses, with
// matching leading dimensions.
package dataset

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// File name suffixes, one pair of files per robot name.
const (
	anglesSuffix = "__joint_angles.npy"
	posesSuffix  = "__poses.npy"
)

// AnglesPath returns the joint-angle file path for a robot.
func AnglesPath(dir, name string) string {
	return filepath.Join(dir, name+anglesSuffix)
}

// PosesPath returns the expected-pose file path for a robot.
func PosesPath(dir, name string) string {
	return filepath.Join(dir, name+posesSuffix)
}

// Save writes an (N, ndof) angle batch and its (N, 7) expected pose batch.
func Save(dir, name string, angles, poses *mat.Dense) error {
	if angles == nil || poses == nil {
		return errors.New("angles and poses must be non-nil")
	}
	ra, _ := angles.Dims()
	rp, pc := poses.Dims()
	if ra != rp {
		return errors.Errorf("angles and poses have mismatched leading dimensions: %d != %d", ra, rp)
	}
	if pc != 7 {
		return errors.Errorf("poses must have 7 columns, got %d", pc)
	}
	if err := writeMatrix(AnglesPath(dir, name), angles); err != nil {
		return err
	}
	return writeMatrix(PosesPath(dir, name), poses)
}

// Load reads a robot's ground-truth pair, enforcing the matching leading
// dimension.
func Load(dir, name string) (*mat.Dense, *mat.Dense, error) {
	angles, err := readMatrix(AnglesPath(dir, name))
	if err != nil {
		return nil, nil, err
	}
	poses, err := readMatrix(PosesPath(dir, name))
	if err != nil {
		return nil, nil, err
	}
	ra, _ := angles.Dims()
	rp, _ := poses.Dims()
	if ra != rp {
		return nil, nil, errors.Errorf(
			"ground-truth files for %q have mismatched leading dimensions: %d angles vs %d poses", name, ra, rp)
	}
	return angles, poses, nil
}

func writeMatrix(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := npyio.Write(f, m); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

func readMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return &m, nil
}
