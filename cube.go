package smartcube

// Cube is a sticker-level 3x3 model in the Facelets layout. It is driven by
// moves rather than by the hardware, and is used for offline simulation and
// for checking the sticker tables elsewhere in the package.
type Cube struct {
	stickers [FaceletCount]byte
}

// NewCube creates a solved cube.
func NewCube() *Cube {
	c := &Cube{}
	c.Reset()
	return c
}

// CubeFromFacelets creates a cube in the given state.
func CubeFromFacelets(f Facelets) (*Cube, error) {
	if _, err := ParseFacelets(string(f)); err != nil {
		return nil, err
	}
	c := &Cube{}
	copy(c.stickers[:], f)
	return c, nil
}

// Reset returns the cube to the solved state.
func (c *Cube) Reset() {
	copy(c.stickers[:], SolvedFacelets)
}

// Clone creates a copy of the cube.
func (c *Cube) Clone() *Cube {
	clone := *c
	return &clone
}

// Facelets returns the current state.
func (c *Cube) Facelets() Facelets {
	return Facelets(c.stickers[:])
}

// IsSolved returns true if the cube is in the solved state.
func (c *Cube) IsSolved() bool {
	return c.Facelets().IsSolved()
}

// Apply applies moves in order.
func (c *Cube) Apply(moves ...Move) {
	for _, m := range moves {
		c.ApplyMove(m)
	}
}

// ApplyMoves applies a sequence of moves to the cube.
func (c *Cube) ApplyMoves(moves []Move) {
	c.Apply(moves...)
}

// ApplyMove applies a single face turn.
func (c *Cube) ApplyMove(m Move) {
	perm, ok := turnPerms[m.Face]
	if !ok {
		return
	}
	for i := 0; i < m.QuarterTurns(); i++ {
		c.permute(perm)
	}
}

// ApplyNotation parses and applies a move sequence such as "R U R' U'".
func (c *Cube) ApplyNotation(s string) error {
	moves, err := ParseMoves(s)
	if err != nil {
		return err
	}
	c.Apply(moves...)
	return nil
}

// Axis names a whole-cube rotation.
type Axis byte

const (
	AxisX Axis = 'x' // follows R
	AxisY Axis = 'y' // follows U
	AxisZ Axis = 'z' // follows F
)

// Rotate turns the whole cube by quarter clockwise quarter turns about axis.
// Negative values rotate the other way.
func (c *Cube) Rotate(axis Axis, quarter int) {
	perm, ok := rotationPerms[axis]
	if !ok {
		return
	}
	for n := ((quarter % 4) + 4) % 4; n > 0; n-- {
		c.permute(perm)
	}
}

// String returns the unfolded net.
func (c *Cube) String() string {
	return c.Facelets().Net()
}

func (c *Cube) permute(perm *[FaceletCount]int) {
	var next [FaceletCount]byte
	for dst, src := range perm {
		next[dst] = c.stickers[src]
	}
	c.stickers = next
}

// Geometry. x points to R, y to U, z to F. Every sticker is identified by
// the cubie position it sits on and the outward normal of its face.

type vec struct{ x, y, z int }

type sticker struct{ pos, normal vec }

var (
	stickers     [FaceletCount]sticker
	stickerIndex = make(map[sticker]int, FaceletCount)

	turnPerms     = make(map[Face]*[FaceletCount]int, 6)
	rotationPerms = make(map[Axis]*[FaceletCount]int, 3)
)

func stickerAt(face Face, i int) sticker {
	r, c := i/3, i%3
	switch face {
	case FaceU:
		return sticker{vec{c - 1, 1, r - 1}, vec{0, 1, 0}}
	case FaceD:
		return sticker{vec{c - 1, -1, 1 - r}, vec{0, -1, 0}}
	case FaceF:
		return sticker{vec{c - 1, 1 - r, 1}, vec{0, 0, 1}}
	case FaceB:
		return sticker{vec{1 - c, 1 - r, -1}, vec{0, 0, -1}}
	case FaceR:
		return sticker{vec{1, 1 - r, 1 - c}, vec{1, 0, 0}}
	default: // FaceL
		return sticker{vec{-1, 1 - r, c - 1}, vec{-1, 0, 0}}
	}
}

// Clockwise quarter turns seen from the positive end of each axis, and
// their inverses.
func rotX(v vec) vec    { return vec{v.x, v.z, -v.y} }
func rotXInv(v vec) vec { return vec{v.x, -v.z, v.y} }
func rotY(v vec) vec    { return vec{-v.z, v.y, v.x} }
func rotYInv(v vec) vec { return vec{v.z, v.y, -v.x} }
func rotZ(v vec) vec    { return vec{v.y, -v.x, v.z} }
func rotZInv(v vec) vec { return vec{-v.y, v.x, v.z} }

func buildPerm(inLayer func(vec) bool, rot func(vec) vec) *[FaceletCount]int {
	var perm [FaceletCount]int
	for i := range perm {
		perm[i] = i
	}
	for src, s := range stickers {
		if !inLayer(s.pos) {
			continue
		}
		dst := stickerIndex[sticker{rot(s.pos), rot(s.normal)}]
		perm[dst] = src
	}
	return &perm
}

func init() {
	for b, face := range Faces {
		for i := 0; i < 9; i++ {
			s := stickerAt(face, i)
			stickers[b*9+i] = s
			stickerIndex[s] = b*9 + i
		}
	}

	turnPerms[FaceU] = buildPerm(func(v vec) bool { return v.y == 1 }, rotY)
	turnPerms[FaceD] = buildPerm(func(v vec) bool { return v.y == -1 }, rotYInv)
	turnPerms[FaceR] = buildPerm(func(v vec) bool { return v.x == 1 }, rotX)
	turnPerms[FaceL] = buildPerm(func(v vec) bool { return v.x == -1 }, rotXInv)
	turnPerms[FaceF] = buildPerm(func(v vec) bool { return v.z == 1 }, rotZ)
	turnPerms[FaceB] = buildPerm(func(v vec) bool { return v.z == -1 }, rotZInv)

	all := func(vec) bool { return true }
	rotationPerms[AxisX] = buildPerm(all, rotX)
	rotationPerms[AxisY] = buildPerm(all, rotY)
	rotationPerms[AxisZ] = buildPerm(all, rotZ)
}
