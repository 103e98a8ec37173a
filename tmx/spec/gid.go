package spec

import "fmt"

// GID is a global tile id as stored in layer data and object gid
// attributes: the top bits carry orientation flags, the rest is the id.
type GID uint32

const (
	FlipHorizontal GID = 0x80000000
	FlipVertical   GID = 0x40000000
	FlipDiagonal   GID = 0x20000000
	RotateHex120   GID = 0x10000000 // masked out, no transform is derived from it

	flagMask = FlipHorizontal | FlipVertical | FlipDiagonal | RotateHex120
)

func (g GID) ID() uint32 {
	return uint32(g &^ flagMask)
}

func (g GID) Flags() GID {
	return g & flagMask
}

func (g GID) IsEmpty() bool {
	return g.ID() == 0
}

func (g GID) Transform() Transform {
	return TransformFor(g)
}

func (g GID) String() string {
	if g.Flags() == 0 {
		return fmt.Sprint(g.ID())
	}
	return fmt.Sprintf("%d[%s]", g.ID(), g.Transform())
}

// Transform is an element of the dihedral group of the square. The diagonal
// swap is applied first, the axis negations after it, so as a matrix acting
// on (x, y) it is diag(sx, sy) * S where S is either identity or the swap.
// The zero value is the identity.
type Transform struct {
	Swap  bool
	FlipX bool
	FlipY bool
}

var Identity = Transform{}

// TransformFor derives the transform of the orientation bits of flags.
func TransformFor(flags GID) Transform {
	return Transform{
		Swap:  flags&FlipDiagonal != 0,
		FlipX: flags&FlipHorizontal != 0,
		FlipY: flags&FlipVertical != 0,
	}
}

// Flags is the inverse of TransformFor.
func (t Transform) Flags() GID {
	var flags GID
	if t.Swap {
		flags |= FlipDiagonal
	}
	if t.FlipX {
		flags |= FlipHorizontal
	}
	if t.FlipY {
		flags |= FlipVertical
	}
	return flags
}

func (t Transform) IsIdentity() bool {
	return t == Identity
}

// Scale returns the per-axis sign applied after the optional swap.
func (t Transform) Scale() (sx, sy int) {
	return sign(t.FlipX), sign(t.FlipY)
}

func (t Transform) Matrix() [2][2]int {
	sx, sy := t.Scale()
	if t.Swap {
		return [2][2]int{{0, sx}, {sy, 0}}
	}
	return [2][2]int{{sx, 0}, {0, sy}}
}

func transformOf(m [2][2]int) Transform {
	if m[0][1] != 0 {
		return Transform{Swap: true, FlipX: m[0][1] < 0, FlipY: m[1][0] < 0}
	}
	return Transform{FlipX: m[0][0] < 0, FlipY: m[1][1] < 0}
}

// Mul returns the transform that applies u first and then t.
func (t Transform) Mul(u Transform) Transform {
	a, b := t.Matrix(), u.Matrix()
	var m [2][2]int
	for i := range 2 {
		for j := range 2 {
			m[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return transformOf(m)
}

func (t Transform) Inverse() Transform {
	m := t.Matrix()
	m[0][1], m[1][0] = m[1][0], m[0][1]
	return transformOf(m)
}

func (t Transform) Apply(x, y int) (int, int) {
	m := t.Matrix()
	return m[0][0]*x + m[0][1]*y, m[1][0]*x + m[1][1]*y
}

func (t Transform) String() string {
	s := ""
	if t.Swap {
		s += "D"
	}
	if t.FlipX {
		s += "H"
	}
	if t.FlipY {
		s += "V"
	}
	if s == "" {
		return "I"
	}
	return s
}

func sign(negative bool) int {
	if negative {
		return -1
	}
	return 1
}
