package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager tracks every call currently in progress for this client, handing
// out ports from one process-wide PortAllocator and keying calls by their
// uuid rather than the signalling layer's conference tag or member id,
// since either can be reused across calls that happen not to overlap in
// time.
type Manager struct {
	ports *PortAllocator

	mu    sync.Mutex
	calls map[uuid.UUID]*Call
}

// NewManager constructs an empty call manager.
func NewManager() *Manager {
	return &Manager{
		ports: NewPortAllocator(),
		calls: make(map[uuid.UUID]*Call),
	}
}

// StartCall allocates a new call leg's pipeline, starts it against remote,
// and registers it under its generated uuid.
func (m *Manager) StartCall(conferenceTag string, memberID int64, key []byte, remote Endpoint, onPCM PCMCallback, onFrame VideoFrameCallback) (*Call, error) {
	call, err := NewCall(m.ports, conferenceTag, memberID, onPCM, onFrame)
	if err != nil {
		return nil, err
	}

	if err := call.Start(key, remote); err != nil {
		return nil, fmt.Errorf("session: start call: %w", err)
	}

	m.mu.Lock()
	m.calls[call.ID] = call
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "Manager.StartCall",
		"call_id":        call.ID,
		"conference_tag": conferenceTag,
		"member_id":      memberID,
	}).Info("call started")

	return call, nil
}

// Call looks up a call by id.
func (m *Manager) Call(id uuid.UUID) (*Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call, ok := m.calls[id]
	return call, ok
}

// EndCall stops and unregisters the call with the given id. It is a no-op
// if no such call is registered.
func (m *Manager) EndCall(id uuid.UUID) {
	m.mu.Lock()
	call, ok := m.calls[id]
	delete(m.calls, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	call.Stop()

	logrus.WithFields(logrus.Fields{
		"function": "Manager.EndCall",
		"call_id":  id,
	}).Info("call ended")
}

// EndAll stops and unregisters every call currently tracked, for client
// shutdown.
func (m *Manager) EndAll() {
	m.mu.Lock()
	calls := make([]*Call, 0, len(m.calls))
	for _, call := range m.calls {
		calls = append(calls, call)
	}
	m.calls = make(map[uuid.UUID]*Call)
	m.mu.Unlock()

	for _, call := range calls {
		call.Stop()
	}
}

// ActiveCount returns the number of calls currently tracked.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
