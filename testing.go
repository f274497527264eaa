package rclgo

import (
	"fmt"
	"sync"
)

// MockLogger is a hand-rolled interfaces.Logger implementation that
// records every call for verification in tests, in the teacher's
// MockBackend call-tracking style (testing.go).
type MockLogger struct {
	mu     sync.Mutex
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
}

// NewMockLogger creates an empty mock logger.
func NewMockLogger() *MockLogger { return &MockLogger{} }

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Debugs = append(m.Debugs, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos = append(m.Infos, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Warns = append(m.Warns, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, fmt.Sprintf(format, args...))
}

// CallCounts returns the number of times each level was logged.
func (m *MockLogger) CallCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"debug": len(m.Debugs),
		"info":  len(m.Infos),
		"warn":  len(m.Warns),
		"error": len(m.Errors),
	}
}

// Reset clears all recorded calls.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Debugs = nil
	m.Infos = nil
	m.Warns = nil
	m.Errors = nil
}

// MockObserver records ObserveCycle/ObserveTimeout calls for assertions
// in executor lifecycle tests.
type MockObserver struct {
	mu       sync.Mutex
	Cycles   int
	Took     int
	Executed int
	Errors   int
	Timeouts int
}

// NewMockObserver creates an empty mock observer.
func NewMockObserver() *MockObserver { return &MockObserver{} }

// ObserveCycle implements interfaces.Observer.
func (m *MockObserver) ObserveCycle(took int, executed int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles++
	m.Took += took
	m.Executed += executed
	if err != nil {
		m.Errors++
	}
}

// ObserveTimeout implements interfaces.Observer.
func (m *MockObserver) ObserveTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timeouts++
}
