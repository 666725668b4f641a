package smartcube

import "fmt"

// faceSource says where a face block comes from during a whole-cube
// rotation: which block, and how many clockwise quarter turns it takes in
// place.
type faceSource struct {
	from Face
	turn int
}

// referenceRotations maps a cross face to the rotation that brings it to D,
// as one faceSource per target block in URFDLB order.
var referenceRotations = map[Face][6]faceSource{
	// x2
	FaceU: {{FaceD, 0}, {FaceR, 2}, {FaceB, 2}, {FaceU, 0}, {FaceL, 2}, {FaceF, 2}},
	// x'
	FaceF: {{FaceB, 2}, {FaceR, 3}, {FaceU, 0}, {FaceF, 0}, {FaceL, 1}, {FaceD, 2}},
	// x
	FaceB: {{FaceF, 0}, {FaceR, 1}, {FaceD, 0}, {FaceB, 2}, {FaceL, 3}, {FaceU, 2}},
	// z
	FaceR: {{FaceL, 1}, {FaceU, 1}, {FaceF, 1}, {FaceR, 1}, {FaceD, 1}, {FaceB, 3}},
	// z'
	FaceL: {{FaceR, 3}, {FaceD, 3}, {FaceF, 3}, {FaceL, 3}, {FaceU, 3}, {FaceB, 1}},
}

// blockTurns[n][i] is the source index for sticker i after n clockwise
// quarter turns of a block.
var blockTurns = [4][9]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
	{6, 3, 0, 7, 4, 1, 8, 5, 2},
	{8, 7, 6, 5, 4, 3, 2, 1, 0},
	{2, 5, 8, 1, 4, 7, 0, 3, 6},
}

// RotateToReference rotates the whole cube so that face ends up on D.
// D itself is returned unchanged.
func RotateToReference(f Facelets, face Face) (Facelets, error) {
	if face == FaceD {
		return f, nil
	}
	table, ok := referenceRotations[face]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFace, face)
	}
	if len(f) != FaceletCount {
		return "", fmt.Errorf("%w: length %d", ErrInvalidFacelets, len(f))
	}

	out := make([]byte, FaceletCount)
	for target, src := range table {
		from := blockOffset(src.from)
		idx := blockTurns[src.turn]
		for i := 0; i < 9; i++ {
			out[target*9+i] = f[from+idx[i]]
		}
	}
	return Facelets(out), nil
}
