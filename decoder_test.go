package smartcube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

var testKey = []byte("0123456789abcdef")

func stateMessage(t *testing.T, r protocol.Report) *protocol.Message {
	t.Helper()
	frame, err := r.Frame(testKey)
	require.NoError(t, err)
	msg, err := protocol.Decrypt(frame, testKey)
	require.NoError(t, err)
	return msg
}

func solvedBlock(t *testing.T) [protocol.FaceletBytes]byte {
	t.Helper()
	block, err := EncodeFacelets(SolvedFacelets)
	require.NoError(t, err)
	return block
}

func TestDecodeMoveTable(t *testing.T) {
	want := []string{"L'", "L", "R'", "R", "D'", "D", "U'", "U", "F'", "F", "B'", "B"}
	for i, notation := range want {
		code := byte(i + 1)
		m, err := DecodeMove(code)
		require.NoError(t, err)
		assert.Equal(t, notation, m.String(), "code %d", code)

		back, err := EncodeMove(m)
		require.NoError(t, err)
		assert.Equal(t, code, back)
	}

	for _, code := range []byte{0, 13, 0xFF} {
		_, err := DecodeMove(code)
		assert.ErrorIs(t, err, ErrUnknownMove)
		assert.ErrorIs(t, err, ErrProtocol)
	}

	_, err := EncodeMove(R2)
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestFaceletsRoundTrip(t *testing.T) {
	c := NewCube()
	require.NoError(t, c.ApplyNotation("R U F' L2 D B' R U2"))

	block, err := EncodeFacelets(c.Facelets())
	require.NoError(t, err)
	got, err := DecodeFacelets(block[:])
	require.NoError(t, err)
	assert.Equal(t, c.Facelets(), got)

	_, err = DecodeFacelets(block[:10])
	assert.ErrorIs(t, err, protocol.ErrTooShort)

	bad := block
	bad[0] = 0x0F
	_, err = DecodeFacelets(bad[:])
	assert.ErrorIs(t, err, ErrProtocol)

	_, err = EncodeFacelets("UUU")
	assert.ErrorIs(t, err, ErrInvalidFacelets)
}

func TestDecodeHello(t *testing.T) {
	d := NewDecoder()
	msg := stateMessage(t, protocol.Report{
		Opcode:    protocol.OpHello,
		Timestamp: 500,
		Facelets:  solvedBlock(t),
		Battery:   87,
	})

	report, err := d.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.OpHello, report.Opcode)
	assert.Equal(t, SolvedFacelets, report.Facelets)
	assert.Equal(t, 87, report.Battery)
	assert.Empty(t, report.Moves)
	assert.Equal(t, uint32(500), d.Watermark())
}

func TestDecodeStopsAtWatermark(t *testing.T) {
	d := NewDecoder()
	d.SetWatermark(85)

	msg := stateMessage(t, protocol.Report{
		Opcode:    protocol.OpStateChange,
		Timestamp: 100,
		Facelets:  solvedBlock(t),
		LastMove:  4, // R
		History: []protocol.HistorySlot{
			{Timestamp: 90, Code: 8},  // U
			{Timestamp: 80, Code: 10}, // F
		},
	})

	report, err := d.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, []TimedMove{
		{Move: U, Timestamp: 90},
		{Move: R, Timestamp: 100},
	}, report.Moves)
	assert.Equal(t, uint32(100), d.Watermark())

	// The same message again only repeats the newest move.
	report, err = d.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, []TimedMove{{Move: R, Timestamp: 100}}, report.Moves)
}

func TestDecodeSortsByDeviceTime(t *testing.T) {
	d := NewDecoder()
	msg := stateMessage(t, protocol.Report{
		Opcode:    protocol.OpStateChange,
		Timestamp: 300,
		Facelets:  solvedBlock(t),
		LastMove:  6, // D
		History: []protocol.HistorySlot{
			{Timestamp: 100, Code: 1},  // L'
			{Timestamp: 200, Code: 12}, // B
		},
	})

	report, err := d.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "L' B D", FormatMoves(timedToMoves(report.Moves)))
}

func timedToMoves(timed []TimedMove) []Move {
	out := make([]Move, len(timed))
	for i, tm := range timed {
		out[i] = tm.Move
	}
	return out
}

func TestDecodeErrorKeepsWatermark(t *testing.T) {
	d := NewDecoder()
	d.SetWatermark(50)

	msg := stateMessage(t, protocol.Report{
		Opcode:    protocol.OpStateChange,
		Timestamp: 100,
		Facelets:  solvedBlock(t),
		LastMove:  0,
	})
	_, err := d.Decode(msg)
	assert.ErrorIs(t, err, ErrUnknownMove)
	assert.Equal(t, uint32(50), d.Watermark())

	_, err = d.Decode(&protocol.Message{Opcode: protocol.OpStateChange, Raw: []byte{0x00, 0x05, 0x03}})
	assert.ErrorIs(t, err, protocol.ErrBadMarker)
	assert.Equal(t, uint32(50), d.Watermark())

	short := &protocol.Message{Opcode: protocol.OpStateChange, Timestamp: 70, Raw: []byte{protocol.FrameMarker, 0x09, 0x03, 0, 0, 0, 70}}
	_, err = d.Decode(short)
	assert.ErrorIs(t, err, protocol.ErrTooShort)
	assert.Equal(t, uint32(50), d.Watermark())
}

func TestDecodeOtherOpcodes(t *testing.T) {
	d := NewDecoder()
	frame, err := protocol.Encrypt([]byte{0x09, 0x00, 0x00, 0x01, 0x00}, testKey)
	require.NoError(t, err)
	msg, err := protocol.Decrypt(frame, testKey)
	require.NoError(t, err)

	report, err := d.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, byte(0x09), report.Opcode)
	assert.Empty(t, report.Moves)
	assert.Equal(t, uint32(256), d.Watermark())
}
