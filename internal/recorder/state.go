// Package recorder persists finished solves and remembers the last cube.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AppState represents the persistent application state.
type AppState struct {
	LastDeviceAddress string `json:"last_device_address,omitempty"`
	LastDeviceName    string `json:"last_device_name,omitempty"`
	LastSolveID       string `json:"last_solve_id,omitempty"`
}

// StateFile manages the application state file.
type StateFile struct {
	path string

	mu    sync.Mutex
	state AppState
}

// NewStateFile loads the state at path. A missing file is an empty state.
func NewStateFile(path string) (*StateFile, error) {
	sf := &StateFile{path: path}
	if err := sf.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return sf, nil
}

// Load loads the state from disk.
func (sf *StateFile) Load() error {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := json.Unmarshal(data, &sf.state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	return nil
}

func (sf *StateFile) saveLocked() error {
	data, err := json.MarshalIndent(sf.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sf.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(sf.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// State returns the current state.
func (sf *StateFile) State() AppState {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.state
}

// SetLastDevice records the last connected cube.
func (sf *StateFile) SetLastDevice(address, name string) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.state.LastDeviceAddress = address
	sf.state.LastDeviceName = name
	return sf.saveLocked()
}

// SetLastSolve records the ID of the last stored solve.
func (sf *StateFile) SetLastSolve(id string) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.state.LastSolveID = id
	return sf.saveLocked()
}
