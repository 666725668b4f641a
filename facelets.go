package smartcube

import (
	"fmt"
	"strings"
)

// Facelets is a 54-sticker cube description in URFDLB block order, nine
// stickers per face, row-major as seen looking at that face:
//
//	             0  1  2
//	             3  U  5
//	             6  7  8
//	36 37 38  18 19 20   9 10 11  45 46 47
//	39  L 41  21  F 23  12  R 14  48  B 50
//	42 43 44  24 25 26  15 16 17  51 52 53
//	            27 28 29
//	            30  D 32
//	            33 34 35
//
// Each sticker is the letter of the face whose centre shares its colour.
type Facelets string

// SolvedFacelets is the solved cube.
const SolvedFacelets Facelets = "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"

// FaceletCount is the number of stickers on a 3x3x3 cube.
const FaceletCount = 54

// ParseFacelets validates length and alphabet.
func ParseFacelets(s string) (Facelets, error) {
	if len(s) != FaceletCount {
		return "", fmt.Errorf("%w: length %d", ErrInvalidFacelets, len(s))
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune("URFDLB", rune(s[i])) {
			return "", fmt.Errorf("%w: sticker %d is %q", ErrInvalidFacelets, i, s[i])
		}
	}
	return Facelets(s), nil
}

// IsSolved reports whether every sticker matches the solved cube.
func (f Facelets) IsSolved() bool {
	return f == SolvedFacelets
}

// blockOffset returns the index of the first sticker of face, or -1.
func blockOffset(face Face) int {
	for i, f := range Faces {
		if f == face {
			return i * 9
		}
	}
	return -1
}

// Block returns the nine stickers of face.
func (f Facelets) Block(face Face) string {
	off := blockOffset(face)
	if off < 0 || len(f) != FaceletCount {
		return ""
	}
	return string(f[off : off+9])
}

// Center returns the centre sticker of face.
func (f Facelets) Center(face Face) byte {
	return f[blockOffset(face)+4]
}

// Net renders the facelets as an unfolded cube.
func (f Facelets) Net() string {
	var b strings.Builder
	row := func(face Face, r int) string {
		block := f.Block(face)
		return strings.Join(strings.Split(block[r*3:r*3+3], ""), " ")
	}

	for r := 0; r < 3; r++ {
		b.WriteString("      " + row(FaceU, r) + "\n")
	}
	for r := 0; r < 3; r++ {
		parts := []string{row(FaceL, r), row(FaceF, r), row(FaceR, r), row(FaceB, r)}
		b.WriteString(strings.Join(parts, " ") + "\n")
	}
	for r := 0; r < 3; r++ {
		b.WriteString("      " + row(FaceD, r) + "\n")
	}
	return b.String()
}
