// Package referencechain describes a serial manipulator as an immutable,
// ordered sequence of joints from base to end-effector, and provides a
// single-sample dual-quaternion forward kinematics used to cross-validate
// batched implementations.
package referencechain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// JointType enumerates the supported joint parameterizations.
type JointType string

// The three joint types in a serial chain. Fixed joints contribute a constant
// transform and no degree of freedom.
const (
	JointTypeRevolute  JointType = "revolute"
	JointTypePrismatic JointType = "prismatic"
	JointTypeFixed     JointType = "fixed"
)

// Limit represents the advisory limits of motion for one degree of freedom.
// Nothing in this package or in the forward kinematics enforces them.
type Limit struct {
	Min float64
	Max float64
}

// Joint is one element of a kinematic chain: a fixed transform from the
// parent link frame to the joint's reference frame, plus a joint-type
// dependent parametrized transform about or along Axis. Joints are value
// types and are never mutated after chain construction.
type Joint struct {
	Name   string
	Type   JointType
	Origin mgl64.Mat4
	// Axis is a unit vector, meaningful only for revolute and prismatic joints.
	Axis  r3.Vector
	Limit Limit
}

// Actuated reports whether the joint contributes a degree of freedom.
func (j Joint) Actuated() bool {
	return j.Type == JointTypeRevolute || j.Type == JointTypePrismatic
}

func mat4IsFinite(m mgl64.Mat4) bool {
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			if v := m.At(i, k); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func mat4HasAffineBottomRow(m mgl64.Mat4) bool {
	return m.At(3, 0) == 0 && m.At(3, 1) == 0 && m.At(3, 2) == 0 && m.At(3, 3) == 1
}
