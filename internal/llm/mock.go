package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient implements Client for testing Selection/Extraction callers
// without a network dependency. It lives outside _test.go so other
// packages' tests can import it directly.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}
