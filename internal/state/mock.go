// internal/state/mock.go
package state

import (
	"database/sql"
)

// Mock is a test double for Manager.
type Mock struct {
	playerState *PlayerState
	queueState  *QueueState
	saved       []PlayerState
	closed      bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SavePlayer(state PlayerState) {
	m.playerState = &state
	m.saved = append(m.saved, state)
}

func (m *Mock) GetPlayer() (*PlayerState, error) {
	if m.playerState == nil {
		return &PlayerState{Volume: 1.0}, nil
	}
	return m.playerState, nil
}

func (m *Mock) SaveQueue(state QueueState) error {
	m.queueState = &state
	return nil
}

func (m *Mock) GetQueue() (*QueueState, error) {
	if m.queueState == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	return m.queueState, nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPlayer(state *PlayerState) { m.playerState = state }

func (m *Mock) SetQueue(state *QueueState) { m.queueState = state }

func (m *Mock) SavedPlayerStates() []PlayerState { return m.saved }

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
