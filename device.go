package smartcube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube/internal/ble"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// Device represents a discovered cube. Devices are returned by Scan and can
// be passed to Connect.
type Device struct {
	Name    string // Advertised name (e.g. "QY-QYSC-S-2513")
	Address string // Platform address; the MAC on Linux, a UUID on macOS
	RSSI    int16  // Signal strength in dBm

	result ble.ScanResult
}

// Scan discovers nearby QiYi cubes via Bluetooth Low Energy.
//
// Typical usage:
//
//	devices, err := smartcube.Scan(ctx, 10*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Printf("Found: %s (RSSI: %d)\n", d.Name, d.RSSI)
//	}
//
// Ensure the cube is not connected to another device (e.g. a phone app).
func Scan(ctx context.Context, timeout time.Duration) ([]Device, error) {
	client, err := ble.NewClient()
	if err != nil {
		return nil, err
	}
	defer client.Disconnect()

	results, err := client.Scan(ctx, timeout, protocol.DeviceNamePrefix)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(results))
	for i, r := range results {
		devices[i] = Device{Name: r.Name, Address: r.Address, RSSI: r.RSSI, result: r}
	}
	return devices, nil
}

// transport is the part of the BLE client a connected cube writes to.
type transport interface {
	Write(frame []byte) error
	Disconnect() error
	IsConnected() bool
	DeviceName() string
}

// Conn is a connection to a QiYi cube. It answers the cube's hello and
// state-change messages with acknowledgements and forwards every message
// to a Session.
type Conn struct {
	link    transport
	key     []byte
	session *Session
	log     *zap.Logger

	mu      sync.Mutex
	onError func(error)
}

// Connect connects to device, says hello with the cube's MAC address and
// starts forwarding messages to session. The MAC is needed even on
// platforms where Device.Address is not one.
func Connect(ctx context.Context, device Device, mac string, key []byte, session *Session) (*Conn, error) {
	if len(key) != protocol.KeySize {
		return nil, ErrNoKey
	}
	hello, err := protocol.HelloPayload(mac)
	if err != nil {
		return nil, err
	}

	client, err := ble.NewClient()
	if err != nil {
		return nil, err
	}

	c := newConn(client, key, session)
	client.SetNotificationCallback(c.handleFrame)

	if device.result.Address != "" {
		err = client.ConnectToResult(ctx, device.result)
	} else {
		err = client.Connect(ctx, device.Address)
	}
	if err != nil {
		return nil, err
	}

	if err := c.send(hello); err != nil {
		client.Disconnect()
		return nil, fmt.Errorf("hello: %w", err)
	}
	c.log.Info("connected", zap.String("device", client.DeviceName()), zap.String("mac", mac))
	return c, nil
}

func newConn(link transport, key []byte, session *Session) *Conn {
	return &Conn{
		link:    link,
		key:     append([]byte(nil), key...),
		session: session,
		log:     session.cfg.logger.With(zap.String("component", "device")),
	}
}

// OnError sets a callback for notifications that could not be handled.
// It runs on the BLE goroutine.
func (c *Conn) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

func (c *Conn) handleFrame(frame []byte) {
	msg, err := protocol.Decrypt(frame, c.key)
	if err != nil {
		c.session.drop(err)
		c.fail(err)
		return
	}

	if msg.NeedsAck() {
		if err := c.send(msg.Ack()); err != nil {
			c.log.Warn("ack failed", zap.String("opcode", protocol.OpcodeName(msg.Opcode)), zap.Error(err))
		}
	}

	if err := c.session.HandleMessage(msg); err != nil {
		c.fail(err)
	}
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (c *Conn) send(content []byte) error {
	frame, err := protocol.Encrypt(content, c.key)
	if err != nil {
		return err
	}
	return c.link.Write(frame)
}

// Close disconnects from the cube.
func (c *Conn) Close() error {
	c.session.Close()
	return c.link.Disconnect()
}

// IsConnected returns true if still connected to the cube.
func (c *Conn) IsConnected() bool {
	return c.link.IsConnected()
}

// DeviceName returns the connected device name.
func (c *Conn) DeviceName() string {
	return c.link.DeviceName()
}

// Session returns the session messages are forwarded to.
func (c *Conn) Session() *Session {
	return c.session
}
