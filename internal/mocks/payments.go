package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// MockPaymentGateway implements session.PaymentGateway for testing
type MockPaymentGateway struct {
	ChargeFn func(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)

	// Default response values
	Result *domain.ChargeResult
	Err    error

	mu       sync.Mutex
	requests []domain.ChargeRequest
}

// NewApprovingGateway returns a gateway that accepts every charge.
func NewApprovingGateway() *MockPaymentGateway {
	return &MockPaymentGateway{Result: &domain.ChargeResult{Success: true, Message: "ok"}}
}

// NewDecliningGateway returns a gateway that declines every charge with message.
func NewDecliningGateway(message string) *MockPaymentGateway {
	return &MockPaymentGateway{Result: &domain.ChargeResult{Success: false, Message: message}}
}

// Charge implements the session.PaymentGateway interface
func (m *MockPaymentGateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.ChargeFn != nil {
		return m.ChargeFn(ctx, req)
	}
	return m.Result, m.Err
}

// Requests returns every charge request received, in call order.
func (m *MockPaymentGateway) Requests() []domain.ChargeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChargeRequest(nil), m.requests...)
}
