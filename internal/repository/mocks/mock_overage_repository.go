package mocks

import (
	"context"

	"homeaudit/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockOverageRepository struct {
	mock.Mock
}

func (m *MockOverageRepository) FindByUser(ctx context.Context, userID string) (*model.OverageRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OverageRecord), args.Error(1)
}

func (m *MockOverageRepository) Upsert(ctx context.Context, rec *model.OverageRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
