package batchkin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/batchfk/referencechain"
)

// frameAt builds a fixed joint origin from a translation and extrinsic
// x-y-z rotation, matching the URDF origin convention.
func frameAt(x, y, z, roll, pitch, yaw float64) mgl64.Mat4 {
	m := mgl64.HomogRotate3DZ(yaw).Mul4(mgl64.HomogRotate3DY(pitch)).Mul4(mgl64.HomogRotate3DX(roll))
	m.Set(0, 3, x)
	m.Set(1, 3, y)
	m.Set(2, 3, z)
	return m
}

var zAxis = r3.Vector{Z: 1}

// planarTwoLink is a 2R planar arm with link lengths 0.3 and 0.2 along x.
func planarTwoLink(tb testing.TB) *referencechain.Chain {
	tb.Helper()
	c, err := referencechain.NewChain("planar2r", []referencechain.Joint{
		{Name: "shoulder", Type: referencechain.JointTypeRevolute, Origin: mgl64.Ident4(), Axis: zAxis,
			Limit: referencechain.Limit{Min: -math.Pi, Max: math.Pi}},
		{Name: "elbow", Type: referencechain.JointTypeRevolute, Origin: frameAt(0.3, 0, 0, 0, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -math.Pi, Max: math.Pi}},
	}, frameAt(0.2, 0, 0, 0, 0, 0))
	test.That(tb, err, test.ShouldBeNil)
	return c
}

// rprChain mixes revolute and prismatic joints with a fixed mounting joint.
func rprChain(tb testing.TB) *referencechain.Chain {
	tb.Helper()
	c, err := referencechain.NewChain("rpr", []referencechain.Joint{
		{Name: "base", Type: referencechain.JointTypeFixed, Origin: frameAt(0, 0, 0.1, 0, 0, 0)},
		{Name: "pan", Type: referencechain.JointTypeRevolute, Origin: mgl64.Ident4(), Axis: zAxis,
			Limit: referencechain.Limit{Min: -math.Pi, Max: math.Pi}},
		{Name: "lift", Type: referencechain.JointTypePrismatic, Origin: frameAt(0.15, 0, 0, 0, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: 0, Max: 0.5}},
		{Name: "wrist", Type: referencechain.JointTypeRevolute, Origin: frameAt(0, 0, 0.05, -math.Pi / 2, 0, 0),
			Axis: zAxis, Limit: referencechain.Limit{Min: -2, Max: 2}},
	}, frameAt(0, 0, 0.04, 0, 0, 0))
	test.That(tb, err, test.ShouldBeNil)
	return c
}

// sevenDOF is a 7R arm with the joint frames of a Panda-style manipulator.
func sevenDOF(tb testing.TB) *referencechain.Chain {
	tb.Helper()
	halfPi := math.Pi / 2
	c, err := referencechain.NewChain("seven_dof", []referencechain.Joint{
		{Name: "joint1", Type: referencechain.JointTypeRevolute, Origin: frameAt(0, 0, 0.333, 0, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -2.8973, Max: 2.8973}},
		{Name: "joint2", Type: referencechain.JointTypeRevolute, Origin: frameAt(0, 0, 0, -halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -1.7628, Max: 1.7628}},
		{Name: "joint3", Type: referencechain.JointTypeRevolute, Origin: frameAt(0, -0.316, 0, halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -2.8973, Max: 2.8973}},
		{Name: "joint4", Type: referencechain.JointTypeRevolute, Origin: frameAt(0.0825, 0, 0, halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -3.0718, Max: -0.0698}},
		{Name: "joint5", Type: referencechain.JointTypeRevolute, Origin: frameAt(-0.0825, 0.384, 0, -halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -2.8973, Max: 2.8973}},
		{Name: "joint6", Type: referencechain.JointTypeRevolute, Origin: frameAt(0, 0, 0, halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -0.0175, Max: 3.7525}},
		{Name: "joint7", Type: referencechain.JointTypeRevolute, Origin: frameAt(0.088, 0, 0, halfPi, 0, 0), Axis: zAxis,
			Limit: referencechain.Limit{Min: -2.8973, Max: 2.8973}},
	}, frameAt(0, 0, 0.107, 0, 0, 0))
	test.That(tb, err, test.ShouldBeNil)
	return c
}
