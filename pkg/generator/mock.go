package generator

import "context"

// MockProvider returns canned replies. Used by tests and the terminal
// simulation client.
type MockProvider struct {
	Reply string
	Err   error
	Calls int
}

func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

func (m *MockProvider) Generate(ctx context.Context, userContext string, message string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return "Based on your interest (" + userContext + "), here is some advice regarding: " + message, nil
}
