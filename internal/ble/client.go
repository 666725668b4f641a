// Package ble provides low-level BLE communication with QiYi smart cubes.
package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

// Errors
var (
	ErrNotConnected     = errors.New("ble: not connected to device")
	ErrAlreadyConnected = errors.New("ble: already connected to a device")
	ErrDeviceNotFound   = errors.New("ble: device not found")
	ErrNoService        = errors.New("ble: cube service not found")
)

// connectScanTimeout bounds the scan Connect runs to find an address.
const connectScanTimeout = 10 * time.Second

var (
	serviceUUID = mustParseUUID(protocol.ServiceUUID)
	cubeUUID    = mustParseUUID(protocol.CharUUID)
)

func mustParseUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(fmt.Sprintf("ble: bad uuid %q: %v", s, err))
	}
	return uuid
}

// ScanResult represents a discovered cube.
type ScanResult struct {
	Name    string
	Address string
	RSSI    int16
	addr    bluetooth.Address
}

// Client manages the BLE connection to one cube. The cube exposes a single
// characteristic that both notifies encrypted frames and accepts writes.
type Client struct {
	adapter *bluetooth.Adapter
	device  bluetooth.Device
	char    bluetooth.DeviceCharacteristic

	mu         sync.RWMutex
	connected  bool
	deviceName string
	address    string

	onNotify func([]byte)
}

// NewClient enables the default adapter.
func NewClient() (*Client, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}
	return &Client{adapter: adapter}, nil
}

// SetNotificationCallback sets the callback for raw notification frames.
// It runs on the BLE stack's goroutine; the slice is only valid for the
// duration of the call.
func (c *Client) SetNotificationCallback(cb func([]byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNotify = cb
}

// Scan lists devices whose advertised name starts with prefix
// (case-insensitive) until timeout or ctx ends.
func (c *Client) Scan(ctx context.Context, timeout time.Duration, prefix string) ([]ScanResult, error) {
	if c.IsConnected() {
		return nil, ErrAlreadyConnected
	}

	var (
		mu      sync.Mutex
		results []ScanResult
		seen    = make(map[string]bool)
		done    = make(chan error, 1)
	)
	prefix = strings.ToLower(prefix)

	go func() {
		done <- c.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			name := result.LocalName()
			addr := result.Address.String()

			mu.Lock()
			defer mu.Unlock()
			if seen[addr] || !strings.HasPrefix(strings.ToLower(name), prefix) {
				return
			}
			seen[addr] = true
			results = append(results, ScanResult{
				Name:    name,
				Address: addr,
				RSSI:    result.RSSI,
				addr:    result.Address,
			})
		})
	}()

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
	}
	c.adapter.StopScan()

	mu.Lock()
	defer mu.Unlock()
	return append([]ScanResult(nil), results...), nil
}

// Connect scans for the device with the given address and connects to it.
func (c *Client) Connect(ctx context.Context, address string) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}

	var (
		target    ScanResult
		found     = make(chan struct{})
		foundOnce sync.Once
	)
	go func() {
		c.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !strings.EqualFold(result.Address.String(), address) {
				return
			}
			foundOnce.Do(func() {
				target = ScanResult{
					Name:    result.LocalName(),
					Address: result.Address.String(),
					RSSI:    result.RSSI,
					addr:    result.Address,
				}
				close(found)
			})
		})
	}()

	select {
	case <-found:
		c.adapter.StopScan()
	case <-time.After(connectScanTimeout):
		c.adapter.StopScan()
		return ErrDeviceNotFound
	case <-ctx.Done():
		c.adapter.StopScan()
		return ctx.Err()
	}

	return c.ConnectToResult(ctx, target)
}

// ConnectToResult connects to a device from a scan result and subscribes
// to its notifications.
func (c *Client) ConnectToResult(ctx context.Context, result ScanResult) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	device, err := c.adapter.Connect(result.addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		device.Disconnect()
		return ErrNoService
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{cubeUUID})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return fmt.Errorf("failed to discover characteristics: %w", errors.Join(ErrNoService, err))
	}

	char := chars[0]
	if err := char.EnableNotifications(c.handleNotification); err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to enable notifications: %w", err)
	}

	c.mu.Lock()
	c.device = device
	c.char = char
	c.connected = true
	c.deviceName = result.Name
	c.address = result.Address
	c.mu.Unlock()
	return nil
}

// Disconnect disconnects from the current device.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	err := c.device.Disconnect()
	c.connected = false
	c.deviceName = ""
	c.address = ""
	return err
}

// IsConnected returns true if connected to a device.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// DeviceName returns the connected device name.
func (c *Client) DeviceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceName
}

// Address returns the connected device address.
func (c *Client) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// Write sends an already encrypted frame to the cube.
func (c *Client) Write(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	_, err := c.char.WriteWithoutResponse(frame)
	return err
}

func (c *Client) handleNotification(data []byte) {
	c.mu.RLock()
	cb := c.onNotify
	c.mu.RUnlock()

	if cb != nil {
		cb(data)
	}
}
