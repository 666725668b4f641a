package protocol

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseKey decodes a hex encoded AES-128 key. Spaces, colons and a 0x
// prefix are ignored.
func ParseKey(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(strings.TrimSpace(s))
	key, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}
	return key, nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return block, nil
}

// Decrypt decrypts a raw notification block by block, truncates it to the
// length byte and verifies the CRC.
func Decrypt(frame, key []byte) (*Message, error) {
	if len(frame) == 0 {
		return nil, ErrTooShort
	}
	if len(frame)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameSize, len(frame))
	}

	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(frame))
	for i := 0; i < len(frame); i += BlockSize {
		block.Decrypt(plain[i:i+BlockSize], frame[i:i+BlockSize])
	}

	n := int(plain[1])
	if n > len(plain) {
		n = len(plain)
	}
	msg := plain[:n]
	if len(msg) < 3 {
		return nil, fmt.Errorf("%w: length byte %d", ErrTooShort, n)
	}
	if crc := CRC16Modbus(msg); crc != 0 {
		return nil, fmt.Errorf("%w: residue 0x%04X", ErrChecksum, crc)
	}
	if msg[0] != FrameMarker {
		return nil, fmt.Errorf("%w: got 0x%02X", ErrBadMarker, msg[0])
	}

	m := &Message{Opcode: msg[2], Raw: msg}
	if len(msg) >= TimestampOffset+4 {
		m.Timestamp = binary.BigEndian.Uint32(msg[TimestampOffset : TimestampOffset+4])
	}
	return m, nil
}

// Encrypt frames content with BuildFrame and encrypts it block by block.
func Encrypt(content, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	plain := BuildFrame(content)
	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += BlockSize {
		block.Encrypt(out[i:i+BlockSize], plain[i:i+BlockSize])
	}
	return out, nil
}

// BuildFrame returns the plaintext frame for content:
// [0xFE, 4+len(content), content..., crc lo, crc hi] zero padded to a
// multiple of the block size.
func BuildFrame(content []byte) []byte {
	msg := make([]byte, 0, len(content)+4)
	msg = append(msg, FrameMarker, byte(4+len(content)))
	msg = append(msg, content...)

	crc := CRC16Modbus(msg)
	msg = append(msg, byte(crc&0xFF), byte(crc>>8))

	if rem := len(msg) % BlockSize; rem != 0 {
		msg = append(msg, make([]byte, BlockSize-rem)...)
	}
	return msg
}

// helloPrefix precedes the reversed MAC address in the hello command.
var helloPrefix = []byte{0x00, 0x6b, 0x01, 0x00, 0x00, 0x22, 0x06, 0x00, 0x02, 0x08, 0x00}

// HelloPayload builds the hello command content for the cube's MAC
// address ("CC:A3:00:00:25:13" form).
func HelloPayload(mac string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(mac), ":")
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	out := make([]byte, 0, len(helloPrefix)+6)
	out = append(out, helloPrefix...)
	for i := len(parts) - 1; i >= 0; i-- {
		b, err := hex.DecodeString(parts[i])
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
		}
		out = append(out, b[0])
	}
	return out, nil
}
