//go:build !integration

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/mocks"
)

func TestPalletTemplateService_WithoutRepository(t *testing.T) {
	ctx := context.Background()
	svc := NewPalletTemplateService(nil)

	templates, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPalletTemplates(), templates)
	assert.Equal(t, model.DefaultPalletTemplates(), svc.Templates(ctx))

	_, err = svc.Upsert(ctx, model.Pallet{ID: "x"})
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	assert.ErrorIs(t, svc.Delete(ctx, "x"), ErrRepositoryNotConfigured)
	assert.ErrorIs(t, svc.Seed(ctx), ErrRepositoryNotConfigured)
}

func TestPalletTemplateService_Templates(t *testing.T) {
	ctx := context.Background()
	custom := []model.Pallet{{ID: "custom", Dimension: model.NewDimension(100, 50, 100)}}

	tests := []struct {
		name     string
		stored   []model.Pallet
		err      error
		expected []model.Pallet
	}{
		{name: "stored templates", stored: custom, expected: custom},
		{name: "empty catalogue", stored: []model.Pallet{}, expected: model.DefaultPalletTemplates()},
		{name: "repository error", err: errors.New("down"), expected: model.DefaultPalletTemplates()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPalletTemplateRepositoryInterface)
			if tt.err != nil {
				repo.On("List", ctx).Return(nil, tt.err)
			} else {
				repo.On("List", ctx).Return(tt.stored, nil)
			}

			svc := NewPalletTemplateService(repo)
			assert.Equal(t, tt.expected, svc.Templates(ctx))
			repo.AssertExpectations(t)
		})
	}
}

func TestPalletTemplateService_Upsert(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		template    model.Pallet
		expectedErr error
	}{
		{name: "valid", template: model.Pallet{ID: "big", Dimension: model.NewDimension(120, 60, 120), Weight: 35}},
		{name: "missing id", template: model.Pallet{Dimension: model.NewDimension(1, 1, 1)}, expectedErr: ErrInvalidTemplate},
		{name: "zero height", template: model.Pallet{ID: "flat", Dimension: model.NewDimension(120, 0, 80)}, expectedErr: ErrInvalidTemplate},
		{name: "negative weight", template: model.Pallet{ID: "neg", Dimension: model.NewDimension(1, 1, 1), Weight: -1}, expectedErr: ErrInvalidTemplate},
		{name: "negative max load", template: model.Pallet{ID: "neg", Dimension: model.NewDimension(1, 1, 1), MaxLoad: -5}, expectedErr: ErrInvalidTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPalletTemplateRepositoryInterface)
			repo.On("Upsert", ctx, mock.AnythingOfType("model.Pallet")).Return(tt.template, nil)

			saved, err := NewPalletTemplateService(repo).Upsert(ctx, tt.template)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.template, saved)
		})
	}
}

func TestPalletTemplateService_SeedAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPalletTemplateRepositoryInterface)
	repo.On("SeedDefaults", ctx, model.DefaultPalletTemplates()).Return(nil)
	repo.On("Delete", ctx, "eur").Return(nil)

	svc := NewPalletTemplateService(repo)
	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Delete(ctx, "eur"))
	repo.AssertExpectations(t)
}
