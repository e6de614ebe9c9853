package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/pixgateway/internal/domain/pix"
)

// --- Provider Mock ---

// MockProvider is a mock implementation of providers.Provider. Unset
// function fields fall back to a successful empty JSON reply.
type MockProvider struct {
	mu        sync.Mutex
	created   []*pix.ProviderRequest
	lookedUp  []string
	NameValue string

	ConfiguredFunc        func() error
	CreateTransactionFunc func(ctx context.Context, req *pix.ProviderRequest) (*pix.RawResponse, error)
	GetTransactionFunc    func(ctx context.Context, transactionID string) (*pix.RawResponse, error)
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{NameValue: name}
}

func (m *MockProvider) Name() string { return m.NameValue }

func (m *MockProvider) Configured() error {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return nil
}

func (m *MockProvider) CreateTransaction(ctx context.Context, req *pix.ProviderRequest) (*pix.RawResponse, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()

	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, req)
	}
	return &pix.RawResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (m *MockProvider) GetTransaction(ctx context.Context, transactionID string) (*pix.RawResponse, error) {
	m.mu.Lock()
	m.lookedUp = append(m.lookedUp, transactionID)
	m.mu.Unlock()

	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, transactionID)
	}
	return &pix.RawResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
}

// Created returns every request passed to CreateTransaction.
func (m *MockProvider) Created() []*pix.ProviderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pix.ProviderRequest(nil), m.created...)
}

// LookedUp returns every id passed to GetTransaction.
func (m *MockProvider) LookedUp() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookedUp...)
}

// Calls is the total number of provider calls made.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created) + len(m.lookedUp)
}

// Reply returns a function suitable for CreateTransactionFunc or
// GetTransactionFunc that always answers with status and body.
func Reply(status int, body string) func(context.Context, string) (*pix.RawResponse, error) {
	return func(context.Context, string) (*pix.RawResponse, error) {
		return &pix.RawResponse{StatusCode: status, Body: []byte(body)}, nil
	}
}

// ReplyCreate is Reply for CreateTransactionFunc.
func ReplyCreate(status int, body string) func(context.Context, *pix.ProviderRequest) (*pix.RawResponse, error) {
	return func(context.Context, *pix.ProviderRequest) (*pix.RawResponse, error) {
		return &pix.RawResponse{StatusCode: status, Body: []byte(body)}, nil
	}
}
