package vision

import "sync"

// MockDetector implements LandmarkDetector for testing.
// Behavior is customized via function fields; calls are recorded.
type MockDetector struct {
	// DetectFunc is called when DetectLandmarks is invoked.
	// If nil, no face is reported.
	DetectFunc func(jpeg []byte) (LandmarkSet, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls int
}

// DetectLandmarks calls DetectFunc and records the call.
func (m *MockDetector) DetectLandmarks(jpeg []byte) (LandmarkSet, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.DetectFunc != nil {
		return m.DetectFunc(jpeg)
	}
	return nil, nil
}

// Close calls CloseFunc.
func (m *MockDetector) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times DetectLandmarks was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
