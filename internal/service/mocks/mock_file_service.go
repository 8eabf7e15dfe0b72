package mocks

import (
	"context"

	"fileapi/internal/model"
	"fileapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) ValidateAndStore(ctx context.Context, content []byte, contentType, originalFilename string) (string, error) {
	args := m.Called(ctx, content, contentType, originalFilename)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Describe(ctx context.Context, storedName, contentType string, size int64, content []byte, origin model.Origin) (*model.UploadDescriptor, error) {
	args := m.Called(ctx, storedName, contentType, size, content, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadDescriptor), args.Error(1)
}

func (m *MockFileService) Upload(ctx context.Context, f service.UploadFile, origin model.Origin) (*model.UploadDescriptor, error) {
	args := m.Called(ctx, f, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadDescriptor), args.Error(1)
}

func (m *MockFileService) UploadMany(ctx context.Context, files []service.UploadFile, origin model.Origin) ([]model.UploadDescriptor, error) {
	args := m.Called(ctx, files, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadDescriptor), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFileService) Open(ctx context.Context, name string) (*service.Download, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockFileService) Archive(ctx context.Context, names []string) (*service.Download, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockFileService) Record(ctx context.Context, name string) (*model.UploadRecord, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockFileService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
