package smartcube

import (
	"errors"
	"fmt"

	"github.com/SeamusWaldron/smartcube/internal/ble"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// Sentinel errors for the smartcube package.
var (
	// Connection errors
	ErrNotConnected     = ble.ErrNotConnected
	ErrAlreadyConnected = ble.ErrAlreadyConnected
	ErrDeviceNotFound   = ble.ErrDeviceNotFound
	ErrNoKey            = errors.New("smartcube: no cube key configured")

	// Parsing errors
	ErrInvalidNotation = errors.New("smartcube: invalid move notation")
	ErrInvalidFacelets = errors.New("smartcube: invalid facelet string")
	ErrUnknownFace     = errors.New("smartcube: unknown face")

	// ErrProtocol matches every malformed notification.
	ErrProtocol    = protocol.ErrProtocol
	ErrUnknownMove = fmt.Errorf("%w: unknown move code", protocol.ErrProtocol)

	// Session errors
	ErrCheckpointOverflow = errors.New("smartcube: more checkpoints than the mode expects")
	ErrNoScramble         = errors.New("smartcube: scramble source returned no moves")
)
