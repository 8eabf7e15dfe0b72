package mocks

import (
	"context"

	"fileapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadRepository) FindByName(ctx context.Context, storageName string) (*model.UploadRecord, error) {
	args := m.Called(ctx, storageName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadRepository) Delete(ctx context.Context, storageName string) error {
	args := m.Called(ctx, storageName)
	return args.Error(0)
}
