package protocol

import (
	"errors"
	"fmt"
)

// ErrProtocol is the umbrella for every malformed-frame condition. Callers
// drop the notification on any error matching it.
var ErrProtocol = errors.New("protocol: malformed frame")

// Errors
var (
	ErrTooShort   = fmt.Errorf("%w: message too short", ErrProtocol)
	ErrChecksum   = fmt.Errorf("%w: checksum mismatch", ErrProtocol)
	ErrFrameSize  = fmt.Errorf("%w: frame is not a whole number of blocks", ErrProtocol)
	ErrBadMarker  = fmt.Errorf("%w: missing 0xFE marker", ErrProtocol)
	ErrInvalidKey = errors.New("protocol: key must be 16 bytes")
	ErrInvalidMAC = errors.New("protocol: invalid MAC address")
)
