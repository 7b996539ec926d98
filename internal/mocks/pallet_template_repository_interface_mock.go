// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

type MockPalletTemplateRepositoryInterface struct {
	mock.Mock
}

func (m *MockPalletTemplateRepositoryInterface) List(ctx context.Context) ([]model.Pallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pallet), args.Error(1)
}

func (m *MockPalletTemplateRepositoryInterface) Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error) {
	args := m.Called(ctx, template)
	return args.Get(0).(model.Pallet), args.Error(1)
}

func (m *MockPalletTemplateRepositoryInterface) Delete(ctx context.Context, templateID string) error {
	args := m.Called(ctx, templateID)
	return args.Error(0)
}

func (m *MockPalletTemplateRepositoryInterface) SeedDefaults(ctx context.Context, templates []model.Pallet) error {
	args := m.Called(ctx, templates)
	return args.Error(0)
}
