package smartcube

// CFOP phase detection over Facelets.
// The F2L and OLL checks expect a cube already rotated so that the cross
// face is D (see RotateToReference).

// crossCheck lists, for one face, its four edge stickers' neighbours on the
// adjacent faces and the centres those neighbours must match.
type crossCheck struct {
	face      Face
	neighbour [4]int
	centre    [4]int
}

// crossChecks is in scan order: U, R, F, D, L, B.
var crossChecks = [6]crossCheck{
	{FaceU, [4]int{10, 19, 46, 37}, [4]int{13, 22, 49, 40}},
	{FaceR, [4]int{5, 23, 32, 48}, [4]int{4, 22, 31, 49}},
	{FaceF, [4]int{7, 12, 28, 41}, [4]int{4, 13, 31, 40}},
	{FaceD, [4]int{16, 25, 52, 43}, [4]int{13, 22, 49, 40}},
	{FaceL, [4]int{3, 50, 30, 21}, [4]int{4, 49, 31, 22}},
	{FaceB, [4]int{1, 39, 34, 14}, [4]int{4, 40, 31, 13}},
}

// CrossSolvedFace returns the first face, in URFDLB order, whose cross is
// complete: its four edge stickers match its centre and each edge's other
// sticker matches the adjacent centre.
func CrossSolvedFace(f Facelets) (Face, bool) {
	if len(f) != FaceletCount {
		return "", false
	}
	for _, cc := range crossChecks {
		if crossSolved(f, cc) {
			return cc.face, true
		}
	}
	return "", false
}

func crossSolved(f Facelets, cc crossCheck) bool {
	off := blockOffset(cc.face)
	centre := f[off+4]
	for _, i := range [4]int{1, 3, 5, 7} {
		if f[off+i] != centre {
			return false
		}
	}
	for k, i := range cc.neighbour {
		if f[i] != f[cc.centre[k]] {
			return false
		}
	}
	return true
}

// Slot identifies an F2L slot by the pair of side faces it sits between.
type Slot int

const (
	SlotFR Slot = iota
	SlotBR
	SlotBL
	SlotFL
)

func (s Slot) String() string {
	switch s {
	case SlotFR:
		return "FR"
	case SlotBR:
		return "BR"
	case SlotBL:
		return "BL"
	case SlotFL:
		return "FL"
	default:
		return "?"
	}
}

// slotBits follows the cube firmware's bit layout for the four slots.
var slotBits = [4]uint8{
	SlotFR: 1 << 1,
	SlotBR: 1 << 3,
	SlotBL: 1 << 0,
	SlotFL: 1 << 2,
}

// slotStickers holds each slot's corner (D, side, side) and edge stickers,
// with D as the cross face.
var slotStickers = [4]struct {
	corner [3]int
	edge   [2]int
}{
	SlotFR: {[3]int{29, 26, 15}, [2]int{23, 12}},
	SlotBR: {[3]int{35, 17, 51}, [2]int{14, 48}},
	SlotBL: {[3]int{33, 53, 42}, [2]int{50, 39}},
	SlotFL: {[3]int{27, 24, 44}, [2]int{21, 41}},
}

// F2LStatus records which slots are solved.
type F2LStatus [4]bool

// Mask returns the solved slots as a bit set.
func (s F2LStatus) Mask() uint8 {
	var m uint8
	for slot, ok := range s {
		if ok {
			m |= slotBits[slot]
		}
	}
	return m
}

// Count returns the number of solved slots.
func (s F2LStatus) Count() int {
	n := 0
	for _, ok := range s {
		if ok {
			n++
		}
	}
	return n
}

// F2LSlots checks each slot of a cube whose cross face is D. A slot is
// solved when its corner and edge stickers match the centres of their faces.
// The cross itself is not re-checked.
func F2LSlots(normalized Facelets) F2LStatus {
	var status F2LStatus
	if len(normalized) != FaceletCount {
		return status
	}
	for slot, st := range slotStickers {
		ok := true
		for _, i := range st.corner {
			ok = ok && matchesCentre(normalized, i)
		}
		for _, i := range st.edge {
			ok = ok && matchesCentre(normalized, i)
		}
		status[slot] = ok
	}
	return status
}

// IsOLLSolved reports whether the last layer (U, with D as the cross face)
// shows one colour.
func IsOLLSolved(normalized Facelets) bool {
	if len(normalized) != FaceletCount {
		return false
	}
	centre := normalized[4]
	for i := 0; i < 9; i++ {
		if normalized[i] != centre {
			return false
		}
	}
	return true
}

// matchesCentre reports whether sticker i matches its own face's centre.
func matchesCentre(f Facelets, i int) bool {
	return f[i] == f[(i/9)*9+4]
}

// SlotCount returns the number of set bits in an F2L mask.
func SlotCount(mask uint8) int {
	n := 0
	for ; mask != 0; mask &= mask - 1 {
		n++
	}
	return n
}
