// Package protocol implements the QiYi smart cube BLE wire protocol.
//
// Every notification on the cube characteristic is a whole number of
// AES-128 blocks. Once decrypted, a message looks like:
//
//	[0xFE] [length] [opcode] [timestamp x4] [payload...] [crc lo] [crc hi] [zero padding]
//
// The length byte counts everything up to and including the CRC, so the CRC
// of the first length bytes is zero for a valid message.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// QiYi BLE Service and Characteristic UUIDs
const (
	ServiceUUID = "0000fff0-0000-1000-8000-00805f9b34fb"
	CharUUID    = "0000fff6-0000-1000-8000-00805f9b34fb" // Notify + write
)

// DeviceNamePrefix is the advertised local name prefix of QiYi cubes.
const DeviceNamePrefix = "QY-"

// Opcode constants
const (
	OpHello       byte = 0x02
	OpStateChange byte = 0x03
)

// Frame constants
const (
	FrameMarker byte = 0xFE
	BlockSize        = 16
	KeySize          = 16
)

// Offsets into a decrypted hello or state-change message.
const (
	TimestampOffset = 3
	FaceletOffset   = 7
	FaceletBytes    = 27
	LastMoveOffset  = 34
	BatteryOffset   = 35

	// History entries are 5 bytes (timestamp x4, move code) packed
	// backwards from HistoryBase.
	HistoryBase   = 91
	HistoryStride = 5
	HistoryDepth  = 10
)

// Message is a decrypted, checksum-verified cube message.
type Message struct {
	Opcode    byte
	Timestamp uint32 // device clock, milliseconds
	Raw       []byte // decrypted bytes truncated to the length byte
}

// Ack returns the acknowledgement payload for this message: the opcode and
// the four timestamp bytes, echoed back to the cube.
func (m *Message) Ack() []byte {
	if len(m.Raw) < TimestampOffset+4 {
		return nil
	}
	ack := make([]byte, 5)
	copy(ack, m.Raw[2:TimestampOffset+4])
	return ack
}

// NeedsAck reports whether the cube expects an acknowledgement.
func (m *Message) NeedsAck() bool {
	return m.Opcode == OpHello || m.Opcode == OpStateChange
}

// Battery returns the battery percentage carried by hello and state-change
// messages.
func (m *Message) Battery() (int, error) {
	if len(m.Raw) <= BatteryOffset {
		return 0, fmt.Errorf("%w: no battery byte in %d byte message", ErrTooShort, len(m.Raw))
	}
	return int(m.Raw[BatteryOffset]), nil
}

// FaceletBlock returns the 27 packed facelet bytes.
func (m *Message) FaceletBlock() ([]byte, error) {
	end := FaceletOffset + FaceletBytes
	if len(m.Raw) < end {
		return nil, fmt.Errorf("%w: no facelets in %d byte message", ErrTooShort, len(m.Raw))
	}
	return m.Raw[FaceletOffset:end], nil
}

// HistoryEntry returns the k-th history slot (k >= 1), counting back from
// the newest move.
func (m *Message) HistoryEntry(k int) (ts uint32, code byte, err error) {
	off := HistoryBase - HistoryStride*k
	if off < 0 || len(m.Raw) < off+HistoryStride {
		return 0, 0, fmt.Errorf("%w: history slot %d out of range", ErrTooShort, k)
	}
	ts = binary.BigEndian.Uint32(m.Raw[off : off+4])
	return ts, m.Raw[off+4], nil
}

// OpcodeName returns a human-readable name for the opcode.
func OpcodeName(op byte) string {
	switch op {
	case OpHello:
		return "hello"
	case OpStateChange:
		return "state_change"
	default:
		return fmt.Sprintf("unknown_0x%02X", op)
	}
}
