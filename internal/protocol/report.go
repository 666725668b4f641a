package protocol

import "encoding/binary"

// HistorySlot is one remembered move in a state-change message.
type HistorySlot struct {
	Timestamp uint32
	Code      byte
}

// Report describes the content of a hello or state-change message as the
// cube would send it. It is used to fabricate frames for offline runs and
// tests.
type Report struct {
	Opcode    byte
	Timestamp uint32
	Facelets  [FaceletBytes]byte
	Battery   byte
	LastMove  byte
	// History holds older moves, newest first. At most HistoryDepth-1
	// entries are encoded.
	History []HistorySlot
}

// reportLength is the message length up to (excluding) the CRC.
const reportLength = HistoryBase

// Content returns the frame content (everything between the length byte
// and the CRC).
func (r Report) Content() []byte {
	msg := make([]byte, reportLength)
	msg[2] = r.Opcode
	binary.BigEndian.PutUint32(msg[TimestampOffset:], r.Timestamp)
	copy(msg[FaceletOffset:], r.Facelets[:])
	msg[LastMoveOffset] = r.LastMove
	msg[BatteryOffset] = r.Battery

	for i, slot := range r.History {
		k := i + 1
		if k >= HistoryDepth {
			break
		}
		off := HistoryBase - HistoryStride*k
		binary.BigEndian.PutUint32(msg[off:], slot.Timestamp)
		msg[off+4] = slot.Code
	}
	return msg[2:]
}

// Frame encrypts the report with key.
func (r Report) Frame(key []byte) ([]byte, error) {
	return Encrypt(r.Content(), key)
}
