package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}
