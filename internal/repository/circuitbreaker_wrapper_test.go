//go:build !integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/mocks"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

func newBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "test",
		Ignore:           repository.IsBenign,
	})
}

func TestOrderState_Pool(t *testing.T) {
	state := repository.OrderState{
		LineItems: []model.Product{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Packages: []model.Package{
			{ID: "pkg-1", Products: []model.Product{{ID: "B"}}},
		},
	}

	pool := state.Pool()
	require.Len(t, pool, 2)
	assert.Equal(t, "A", pool[0].ID)
	assert.Equal(t, "C", pool[1].ID)
}

func TestIsBenign(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "not found", err: repository.ErrNotFound, expected: true},
		{name: "wrapped corrupt snapshot", err: errors.Join(errors.New("restore"), snapshot.ErrCorruptSnapshot), expected: true},
		{name: "cancelled", err: context.Canceled, expected: true},
		{name: "network", err: errors.New("connection reset"), expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repository.IsBenign(tt.err))
		})
	}
}

func TestOrderRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("passes results through", func(t *testing.T) {
		repo := new(mocks.MockOrderRepositoryInterface)
		state := &repository.OrderState{Order: model.Order{ID: "ORD-1"}}
		repo.On("LoadOrder", ctx, "ORD-1").Return(state, nil)
		repo.On("SaveOrder", ctx, mock.AnythingOfType("model.Order")).Return(nil)

		wrapped := repository.NewOrderRepositoryWithCircuitBreaker(repo, newBreaker())
		loaded, err := wrapped.LoadOrder(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, state, loaded)
		assert.NoError(t, wrapped.SaveOrder(ctx, model.Order{ID: "ORD-1"}))
		repo.AssertExpectations(t)
	})

	t.Run("not found does not trip the circuit", func(t *testing.T) {
		repo := new(mocks.MockOrderRepositoryInterface)
		repo.On("LoadOrder", ctx, "missing").Return(nil, repository.ErrNotFound)

		cb := newBreaker()
		wrapped := repository.NewOrderRepositoryWithCircuitBreaker(repo, cb)
		for i := 0; i < 3; i++ {
			_, err := wrapped.LoadOrder(ctx, "missing")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		}
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})

	t.Run("submission failures open the circuit", func(t *testing.T) {
		repo := new(mocks.MockOrderRepositoryInterface)
		changes := model.ChangeSet[model.Package]{Deleted: []string{"pkg-1"}}
		repo.On("SubmitPackages", ctx, "ORD-1", changes).Return(model.SyncResult{}, errors.New("timeout"))

		cb := newBreaker()
		wrapped := repository.NewOrderRepositoryWithCircuitBreaker(repo, cb)
		for i := 0; i < 2; i++ {
			_, err := wrapped.SubmitPackages(ctx, "ORD-1", changes)
			assert.Error(t, err)
		}

		_, err := wrapped.SubmitPackages(ctx, "ORD-1", changes)
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
		repo.AssertNumberOfCalls(t, "SubmitPackages", 2)
		assert.Same(t, cb, wrapped.GetCircuitBreaker())
	})
}

func TestSnapshotRepositoryWithCircuitBreaker_OpenCircuitRestoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockSnapshotRepositoryInterface)
	repo.On("Restore", ctx, "ORD-1").Return(nil, errors.New("down"))

	wrapped := repository.NewSnapshotRepositoryWithCircuitBreaker(repo, newBreaker())
	for i := 0; i < 2; i++ {
		_, err := wrapped.Restore(ctx, "ORD-1")
		assert.Error(t, err)
	}

	s, err := wrapped.Restore(ctx, "ORD-1")
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestPalletTemplateRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("list falls back to nil when open", func(t *testing.T) {
		repo := new(mocks.MockPalletTemplateRepositoryInterface)
		repo.On("List", ctx).Return(nil, errors.New("down"))

		wrapped := repository.NewPalletTemplateRepositoryWithCircuitBreaker(repo, newBreaker())
		_, _ = wrapped.List(ctx)
		_, _ = wrapped.List(ctx)

		templates, err := wrapped.List(ctx)
		assert.NoError(t, err)
		assert.Nil(t, templates)
	})

	t.Run("upsert and delete pass through", func(t *testing.T) {
		repo := new(mocks.MockPalletTemplateRepositoryInterface)
		eur := model.DefaultPalletTemplates()[0]
		repo.On("Upsert", ctx, eur).Return(eur, nil)
		repo.On("Delete", ctx, "eur").Return(repository.ErrNotFound)
		repo.On("SeedDefaults", ctx, []model.Pallet{eur}).Return(nil)

		wrapped := repository.NewPalletTemplateRepositoryWithCircuitBreaker(repo, newBreaker())
		saved, err := wrapped.Upsert(ctx, eur)
		require.NoError(t, err)
		assert.Equal(t, eur, saved)
		assert.ErrorIs(t, wrapped.Delete(ctx, "eur"), repository.ErrNotFound)
		assert.NoError(t, wrapped.SeedDefaults(ctx, []model.Pallet{eur}))
		repo.AssertExpectations(t)
	})
}
