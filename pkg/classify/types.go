package classify

import (
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

// Termination is the on-chip termination mode of an SSTL pin.
type Termination int

const (
	// TermNotApplicable is reported for standards without termination.
	TermNotApplicable Termination = iota
	// TermDefault matches termination bits [0,0,1].
	TermDefault
	// TermClass12 matches termination bits [1,1,0].
	TermClass12
	// TermNone is any other termination bit pattern.
	TermNone
)

func (t Termination) String() string {
	switch t {
	case TermDefault:
		return "SSTL, term"
	case TermClass12:
		return "SSTL cl1/2, term"
	case TermNone:
		return "no term"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Termination) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Direction summarizes the input and output readouts.
type Direction int

const (
	DirNone Direction = iota
	DirInput
	DirOutput
	DirBidir
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirBidir:
		return "bidir"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Classification is the recovered configuration of one pin in one image.
type Classification struct {
	Pin          string              `json:"pin"`
	Role         pininfo.ChannelRole `json:"role"`
	Input        bool                `json:"input"`
	Output       bool                `json:"output"`
	PullUp       bool                `json:"pull_up"`
	Differential bool                `json:"differential"`
	IOStandard   string              `json:"io_standard"`
	Termination  Termination         `json:"termination,omitempty"`
}

// Direction returns the combined direction of the pin.
func (c *Classification) Direction() Direction {
	switch {
	case c.Input && c.Output:
		return DirBidir
	case c.Output:
		return DirOutput
	case c.Input:
		return DirInput
	default:
		return DirNone
	}
}

// RoleLookup resolves the dedicated channel role of a pin.
// *pininfo.Table implements it.
type RoleLookup interface {
	Role(pin string) pininfo.ChannelRole
}

// RoleMap is a fixed RoleLookup; pins not in the map have RoleNone.
type RoleMap map[string]pininfo.ChannelRole

// Role implements RoleLookup.
func (m RoleMap) Role(pin string) pininfo.ChannelRole {
	return m[pin]
}

// Procedure is a frozen decision procedure mapping a feature sub-vector to an
// I/O standard label. *dtree.Tree implements it.
type Procedure interface {
	// Features returns the catalog offsets of the sub-vector, in input order.
	Features() []int
	Predict(bits []uint8) (string, error)
}
