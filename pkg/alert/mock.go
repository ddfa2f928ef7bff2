package alert

import (
	"sync"
	"time"
)

// MockHandler implements Handler for testing. Behavior is customized
// via function fields; invocations are recorded.
type MockHandler struct {
	// ChannelName is returned by Name. Defaults to "mock".
	ChannelName string

	// TriggerFunc is called when Trigger is invoked. If nil, Trigger
	// returns nil.
	TriggerFunc func(details Details) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Trigger invocation.
type MockCall struct {
	Details Details
	Time    time.Time
}

// Name implements Handler.
func (m *MockHandler) Name() string {
	if m.ChannelName != "" {
		return m.ChannelName
	}
	return "mock"
}

// Trigger implements Handler.
func (m *MockHandler) Trigger(details Details) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Details: details, Time: time.Now()})
	m.mu.Unlock()

	if m.TriggerFunc != nil {
		return m.TriggerFunc(details)
	}
	return nil
}

// Calls returns the number of recorded invocations.
func (m *MockHandler) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent invocation, if any.
func (m *MockHandler) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}
