package protocol

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

// encryptRaw encrypts an already padded plaintext without framing it.
func encryptRaw(t *testing.T, plain []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(testKey)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += BlockSize {
		block.Encrypt(out[i:i+BlockSize], plain[i:i+BlockSize])
	}
	return out
}

func TestCRC16Modbus(t *testing.T) {
	// Standard check value for CRC-16/MODBUS.
	assert.Equal(t, uint16(0x4B37), CRC16Modbus([]byte("123456789")))

	for _, data := range [][]byte{
		{0xFE, 0x09, 0x02, 0x00, 0x00},
		[]byte("hello cube"),
		{},
	} {
		crc := CRC16Modbus(data)
		withCRC := append(append([]byte{}, data...), byte(crc&0xFF), byte(crc>>8))
		assert.Equal(t, uint16(0), CRC16Modbus(withCRC), "residue for %x", data)
	}
}

func TestBuildFrame(t *testing.T) {
	frame := BuildFrame([]byte{0x03, 0xAA})
	require.Len(t, frame, 16)
	assert.Equal(t, FrameMarker, frame[0])
	assert.Equal(t, byte(6), frame[1])
	assert.Equal(t, uint16(0), CRC16Modbus(frame[:6]))
	for _, b := range frame[6:] {
		assert.Zero(t, b)
	}

	long := BuildFrame(make([]byte, 20))
	assert.Len(t, long, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	content := []byte{OpStateChange, 0x00, 0x01, 0x02, 0x03, 0x42}

	frame, err := Encrypt(content, testKey)
	require.NoError(t, err)
	require.Zero(t, len(frame)%BlockSize)

	msg, err := Decrypt(frame, testKey)
	require.NoError(t, err)
	assert.Equal(t, OpStateChange, msg.Opcode)
	assert.Equal(t, uint32(0x00010203), msg.Timestamp)
	assert.Len(t, msg.Raw, 4+len(content))
	assert.Equal(t, content, msg.Raw[2:2+len(content)])
}

func TestDecryptErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Decrypt(nil, testKey)
		assert.ErrorIs(t, err, ErrTooShort)
		assert.ErrorIs(t, err, ErrProtocol)
	})

	t.Run("partial block", func(t *testing.T) {
		_, err := Decrypt(make([]byte, 17), testKey)
		assert.ErrorIs(t, err, ErrFrameSize)
	})

	t.Run("length byte too small", func(t *testing.T) {
		plain := make([]byte, 16)
		plain[0], plain[1] = FrameMarker, 2
		_, err := Decrypt(encryptRaw(t, plain), testKey)
		assert.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("bad checksum", func(t *testing.T) {
		plain := BuildFrame([]byte{OpHello, 1, 2, 3, 4})
		plain[4] ^= 0xFF
		_, err := Decrypt(encryptRaw(t, plain), testKey)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("wrong key", func(t *testing.T) {
		frame, err := Encrypt([]byte{OpHello, 1, 2, 3, 4}, testKey)
		require.NoError(t, err)
		other := append([]byte{}, testKey...)
		other[0] ^= 0x80
		_, err = Decrypt(frame, other)
		assert.ErrorIs(t, err, ErrProtocol)
	})

	t.Run("bad key size", func(t *testing.T) {
		_, err := Decrypt(make([]byte, 16), []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f")
	require.NoError(t, err)
	assert.Equal(t, testKey, key)

	_, err = ParseKey("0011")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseKey("zz")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestHelloPayload(t *testing.T) {
	payload, err := HelloPayload("CC:A3:00:00:25:13")
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x6b, 0x01, 0x00, 0x00, 0x22, 0x06, 0x00, 0x02, 0x08, 0x00,
		0x13, 0x25, 0x00, 0x00, 0xA3, 0xCC,
	}, payload)

	_, err = HelloPayload("CC:A3")
	assert.ErrorIs(t, err, ErrInvalidMAC)
}

func TestReportFields(t *testing.T) {
	r := Report{
		Opcode:    OpStateChange,
		Timestamp: 5000,
		Battery:   87,
		LastMove:  4,
		History: []HistorySlot{
			{Timestamp: 4000, Code: 3},
			{Timestamp: 3000, Code: 8},
		},
	}
	r.Facelets[0] = 0x21

	frame, err := r.Frame(testKey)
	require.NoError(t, err)
	msg, err := Decrypt(frame, testKey)
	require.NoError(t, err)

	assert.Equal(t, uint32(5000), msg.Timestamp)
	assert.Equal(t, []byte{OpStateChange, 0, 0, 0x13, 0x88}, msg.Ack())
	assert.True(t, msg.NeedsAck())

	battery, err := msg.Battery()
	require.NoError(t, err)
	assert.Equal(t, 87, battery)

	block, err := msg.FaceletBlock()
	require.NoError(t, err)
	assert.Equal(t, byte(0x21), block[0])
	assert.Equal(t, byte(4), msg.Raw[LastMoveOffset])

	ts, code, err := msg.HistoryEntry(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(4000), ts)
	assert.Equal(t, byte(3), code)

	ts, code, err = msg.HistoryEntry(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(3000), ts)
	assert.Equal(t, byte(8), code)
}

func TestShortMessageAccessors(t *testing.T) {
	frame, err := Encrypt([]byte{OpHello, 0, 0, 0, 1}, testKey)
	require.NoError(t, err)
	msg, err := Decrypt(frame, testKey)
	require.NoError(t, err)

	_, err = msg.Battery()
	assert.ErrorIs(t, err, ErrTooShort)
	_, err = msg.FaceletBlock()
	assert.ErrorIs(t, err, ErrTooShort)
	_, _, err = msg.HistoryEntry(1)
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Equal(t, "hello", OpcodeName(msg.Opcode))
}
