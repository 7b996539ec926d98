// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

type MockSnapshotRepositoryInterface struct {
	mock.Mock
}

func (m *MockSnapshotRepositoryInterface) Save(ctx context.Context, snapshot model.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepositoryInterface) Restore(ctx context.Context, orderID string) (*model.Snapshot, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepositoryInterface) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
