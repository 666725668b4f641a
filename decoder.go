package smartcube

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// StateReport is the decoded content of a hello or state-change message.
type StateReport struct {
	Opcode    byte
	Timestamp uint32
	// Moves are the turns not seen before, oldest first. Hello messages
	// carry none.
	Moves    []TimedMove
	Facelets Facelets
	Battery  int
}

// Decoder turns decrypted cube messages into moves and facelets. It keeps a
// watermark of the newest device timestamp seen so that history entries
// repeated across messages are reported only once.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	watermark uint32
}

// NewDecoder creates a decoder with a zero watermark.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Watermark returns the newest device timestamp processed.
func (d *Decoder) Watermark() uint32 {
	return d.watermark
}

// SetWatermark overrides the watermark, e.g. after reconnecting.
func (d *Decoder) SetWatermark(ts uint32) {
	d.watermark = ts
}

// Decode decodes msg. On error the watermark is left untouched.
func (d *Decoder) Decode(msg *protocol.Message) (*StateReport, error) {
	if len(msg.Raw) == 0 || msg.Raw[0] != protocol.FrameMarker {
		return nil, protocol.ErrBadMarker
	}

	report := &StateReport{Opcode: msg.Opcode, Timestamp: msg.Timestamp}
	if msg.Opcode != protocol.OpHello && msg.Opcode != protocol.OpStateChange {
		d.watermark = msg.Timestamp
		return report, nil
	}

	block, err := msg.FaceletBlock()
	if err != nil {
		return nil, err
	}
	if report.Facelets, err = DecodeFacelets(block); err != nil {
		return nil, err
	}
	if report.Battery, err = msg.Battery(); err != nil {
		return nil, err
	}

	if msg.Opcode == protocol.OpStateChange {
		if report.Moves, err = d.decodeMoves(msg); err != nil {
			return nil, err
		}
	}

	d.watermark = msg.Timestamp
	return report, nil
}

// decodeMoves collects the newest move and walks the history back until it
// reaches the watermark. Notifications can arrive out of causal order, so
// the batch is sorted by device time.
func (d *Decoder) decodeMoves(msg *protocol.Message) ([]TimedMove, error) {
	newest, err := DecodeMove(msg.Raw[protocol.LastMoveOffset])
	if err != nil {
		return nil, err
	}
	moves := []TimedMove{{Move: newest, Timestamp: msg.Timestamp}}

	for k := 1; k < protocol.HistoryDepth; k++ {
		ts, code, err := msg.HistoryEntry(k)
		if err != nil {
			return nil, err
		}
		if ts <= d.watermark {
			break
		}
		m, err := DecodeMove(code)
		if err != nil {
			return nil, err
		}
		moves = append(moves, TimedMove{Move: m, Timestamp: ts})
	}

	slices.SortStableFunc(moves, func(a, b TimedMove) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return moves, nil
}

// Move code tables from the cube firmware. Codes run 1..12; each face has
// an odd (counter-clockwise) and an even (clockwise) code.
var (
	moveAxis      = [6]int{4, 1, 3, 0, 2, 5}
	moveFaceOrder = "URFDLB"
)

// DecodeMove decodes a hardware move code.
func DecodeMove(code byte) (Move, error) {
	if code < 1 || code > 12 {
		return Move{}, fmt.Errorf("%w: 0x%02X", ErrUnknownMove, code)
	}
	i := moveAxis[(code-1)>>1]
	face := Face(moveFaceOrder[i : i+1])
	turn := CW
	if code&1 == 1 {
		turn = CCW
	}
	return Move{Face: face, Turn: turn}, nil
}

// faceletColours indexes the 4-bit colour codes of the facelet block.
const faceletColours = "LRDUFB"

// DecodeFacelets unpacks 27 bytes into 54 stickers, low nibble first.
func DecodeFacelets(raw []byte) (Facelets, error) {
	if len(raw) < protocol.FaceletBytes {
		return "", fmt.Errorf("%w: %d facelet bytes", protocol.ErrTooShort, len(raw))
	}
	out := make([]byte, FaceletCount)
	for i := range out {
		nibble := (raw[i/2] >> ((i % 2) * 4)) & 0xF
		if int(nibble) >= len(faceletColours) {
			return "", fmt.Errorf("%w: colour code %d at sticker %d", ErrProtocol, nibble, i)
		}
		out[i] = faceletColours[nibble]
	}
	return Facelets(out), nil
}

// EncodeFacelets packs stickers into the 27-byte wire form.
func EncodeFacelets(f Facelets) ([protocol.FaceletBytes]byte, error) {
	var raw [protocol.FaceletBytes]byte
	if _, err := ParseFacelets(string(f)); err != nil {
		return raw, err
	}
	for i := 0; i < FaceletCount; i++ {
		code := byte(0)
		for c := 0; c < len(faceletColours); c++ {
			if faceletColours[c] == f[i] {
				code = byte(c)
				break
			}
		}
		raw[i/2] |= code << ((i % 2) * 4)
	}
	return raw, nil
}

// EncodeMove is the inverse of DecodeMove. Half turns have no code.
func EncodeMove(m Move) (byte, error) {
	for code := byte(1); code <= 12; code++ {
		if decoded, _ := DecodeMove(code); decoded == m {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMove, m)
}
