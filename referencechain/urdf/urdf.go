// Package urdf builds kinematic chains from Universal Robot Description
// Format (URDF) XML files.
package urdf

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/batchfk/referencechain"
)

// World is the reserved link name for the URDF world frame.
const World = "world"

// Joint type strings as they appear in URDF files.
const (
	ContinuousJoint = "continuous"
	PrismaticJoint  = "prismatic"
	RevoluteJoint   = "revolute"
	FixedJoint      = "fixed"
)

// Config represents the supported fields in a URDF file.
type Config struct {
	XMLName xml.Name `xml:"robot"`
	Name    string   `xml:"name,attr"`
	Links   []link   `xml:"link"`
	Joints  []joint  `xml:"joint"`
}

type link struct {
	XMLName xml.Name `xml:"link"`
	Name    string   `xml:"name,attr"`
}

type frame struct {
	Link string `xml:"link,attr"`
}

type pose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"` // rotation about x, y, z axes, in that order
}

type axis struct {
	XYZ string `xml:"xyz,attr"`
}

type limit struct {
	XMLName xml.Name `xml:"limit"`
	Lower   float64  `xml:"lower,attr"` // translation limits in meters, revolute limits in radians
	Upper   float64  `xml:"upper,attr"`
}

type joint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  frame    `xml:"parent"`
	Child   frame    `xml:"child"`
	Origin  *pose    `xml:"origin,omitempty"`
	Axis    *axis    `xml:"axis,omitempty"`
	Limit   *limit   `xml:"limit,omitempty"`
}

// NewUnsupportedJointTypeError returns an error for a joint type this parser
// cannot handle.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type %q", jointType)
}

// ParseFile reads a URDF file and builds the serial chain it describes. If
// chainName is empty, the robot name from the file is used.
func ParseFile(filename, chainName string) (*referencechain.Chain, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return Parse(xmlData, chainName)
}

// Parse converts URDF XML data into a chain. The joint graph must form a
// single serial path from the root link to the final link; branching,
// disconnection and unknown joint types are hard construction errors.
func Parse(xmlData []byte, chainName string) (*referencechain.Chain, error) {
	if len(xmlData) == 0 {
		return nil, referencechain.NewConstructionError(errors.New("no model information in URDF data"))
	}
	urdf := &Config{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, referencechain.NewConstructionError(errors.Wrap(err, "failed to unmarshal URDF data"))
	}
	if chainName == "" {
		chainName = urdf.Name
	}

	// Index joints by parent link and find the root: a parent link that is
	// nobody's child.
	byParentLink := map[string][]joint{}
	childLinks := map[string]bool{}
	var errAll error
	for _, j := range urdf.Joints {
		byParentLink[j.Parent.Link] = append(byParentLink[j.Parent.Link], j)
		if childLinks[j.Child.Link] {
			multierr.AppendInto(&errAll, errors.Errorf("link %q is the child of more than one joint", j.Child.Link))
		}
		childLinks[j.Child.Link] = true
	}
	if errAll != nil {
		return nil, referencechain.NewConstructionError(errAll)
	}

	root := ""
	for parent := range byParentLink {
		if !childLinks[parent] {
			if root != "" && root != parent {
				return nil, referencechain.NewConstructionError(
					errors.Errorf("chain has multiple root links: %q and %q", root, parent))
			}
			root = parent
		}
	}
	if root == "" {
		return nil, referencechain.NewConstructionError(errors.New("chain has no root link; the joint graph contains a cycle"))
	}

	var joints []referencechain.Joint
	for current := root; ; {
		next, ok := byParentLink[current]
		if !ok {
			break
		}
		if len(next) > 1 {
			names := make([]string, 0, len(next))
			for _, j := range next {
				names = append(names, j.Name)
			}
			return nil, referencechain.NewConstructionError(
				errors.Errorf("link %q branches into joints %s; only serial chains are supported",
					current, strings.Join(names, ", ")))
		}
		j, err := convertJoint(next[0])
		if err != nil {
			return nil, referencechain.NewConstructionError(err)
		}
		joints = append(joints, j)
		current = next[0].Child.Link
		if len(joints) > len(urdf.Joints) {
			return nil, referencechain.NewConstructionError(errors.New("joint graph contains a cycle"))
		}
	}
	if len(joints) != len(urdf.Joints) {
		return nil, referencechain.NewConstructionError(
			errors.Errorf("%d of %d joints are disconnected from the chain", len(urdf.Joints)-len(joints), len(urdf.Joints)))
	}

	return referencechain.NewChain(chainName, joints, mgl64.Ident4())
}

func convertJoint(elem joint) (referencechain.Joint, error) {
	if elem.Name == World {
		return referencechain.Joint{}, errors.New("joints with the name 'world' are not supported")
	}
	origin, err := originTransform(elem.Origin)
	if err != nil {
		return referencechain.Joint{}, errors.Wrapf(err, "joint %q", elem.Name)
	}

	out := referencechain.Joint{Name: elem.Name, Origin: origin}
	switch elem.Type {
	case RevoluteJoint, ContinuousJoint:
		out.Type = referencechain.JointTypeRevolute
	case PrismaticJoint:
		out.Type = referencechain.JointTypePrismatic
	case FixedJoint:
		out.Type = referencechain.JointTypeFixed
		return out, nil
	default:
		return referencechain.Joint{}, NewUnsupportedJointTypeError(elem.Type)
	}

	// URDF defaults the axis to (1, 0, 0) when omitted.
	out.Axis = r3.Vector{X: 1}
	if elem.Axis != nil {
		xyz, err := spaceDelimitedFloats(elem.Axis.XYZ, 3)
		if err != nil {
			return referencechain.Joint{}, errors.Wrapf(err, "joint %q axis", elem.Name)
		}
		out.Axis = r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}.Normalize()
	}

	// Continuous joints are a special case of revolute joints with no bounds.
	if elem.Type == ContinuousJoint || elem.Limit == nil {
		out.Limit = referencechain.Limit{Min: math.Inf(-1), Max: math.Inf(1)}
	} else {
		out.Limit = referencechain.Limit{Min: elem.Limit.Lower, Max: elem.Limit.Upper}
	}
	return out, nil
}

// originTransform builds the fixed parent-to-joint transform from the URDF
// origin element. A missing origin means identity.
func originTransform(p *pose) (mgl64.Mat4, error) {
	m := mgl64.Ident4()
	if p == nil {
		return m, nil
	}
	if p.RPY != "" {
		rpy, err := spaceDelimitedFloats(p.RPY, 3)
		if err != nil {
			return m, errors.Wrap(err, "origin rpy")
		}
		m = mgl64.HomogRotate3DZ(rpy[2]).Mul4(mgl64.HomogRotate3DY(rpy[1])).Mul4(mgl64.HomogRotate3DX(rpy[0]))
	}
	if p.XYZ != "" {
		xyz, err := spaceDelimitedFloats(p.XYZ, 3)
		if err != nil {
			return m, errors.Wrap(err, "origin xyz")
		}
		m.Set(0, 3, xyz[0])
		m.Set(1, 3, xyz[1])
		m.Set(2, 3, xyz[2])
	}
	return m, nil
}

// spaceDelimitedFloats splits space-delimited URDF attribute fields such as
// xyz or rpy.
func spaceDelimitedFloats(s string, want int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != want {
		return nil, errors.Errorf("expected %d space-delimited values, got %q", want, s)
	}
	out := make([]float64, 0, want)
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
