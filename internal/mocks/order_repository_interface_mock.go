// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/repository"
)

type MockOrderRepositoryInterface struct {
	mock.Mock
}

func (m *MockOrderRepositoryInterface) SaveOrder(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepositoryInterface) LoadOrder(ctx context.Context, orderID string) (*repository.OrderState, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OrderState), args.Error(1)
}

func (m *MockOrderRepositoryInterface) DeleteOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepositoryInterface) SubmitLineItems(ctx context.Context, orderID string, changes model.ChangeSet[model.Product]) (model.SyncResult, error) {
	args := m.Called(ctx, orderID, changes)
	return args.Get(0).(model.SyncResult), args.Error(1)
}

func (m *MockOrderRepositoryInterface) SubmitPackages(ctx context.Context, orderID string, changes model.ChangeSet[model.Package]) (model.SyncResult, error) {
	args := m.Called(ctx, orderID, changes)
	return args.Get(0).(model.SyncResult), args.Error(1)
}
