package llm

import (
	"context"
	"errors"
	"sync"
)

// MockProvider 按顺序返回预置结果，记录收到的请求，测试用
type MockProvider struct {
	mu      sync.Mutex
	results []MockResult
	Calls   []Request
}

type MockResult struct {
	Content   string
	Truncated bool
	Err       error
}

func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{results: results}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.results) == 0 {
		return nil, &Error{Kind: KindUnavailable, Err: errors.New("mock: no results queued")}
	}
	next := m.results[0]
	m.results = m.results[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	resp := &Response{Content: next.Content, Model: "mock", Truncated: next.Truncated}
	return resp, checkOutput(req.Schema, resp)
}

func (m *MockProvider) Push(results ...MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, results...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
