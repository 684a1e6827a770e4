package extraction

import (
	"context"
	"sync"
)

// MockClient is a canned-answer Client for tests. Answers are keyed by field
// label; unknown fields get the not-found sentinel.
type MockClient struct {
	Answers map[string]string
	Err     error

	mu    sync.Mutex
	calls []string
}

// ExtractField implements Client.
func (m *MockClient) ExtractField(_ context.Context, field, _, _ string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, field)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if answer, ok := m.Answers[field]; ok {
		return answer, nil
	}
	return "Non spécifié", nil
}

// Calls returns the field labels asked so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
