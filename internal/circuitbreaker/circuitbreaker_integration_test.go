//go:build integration

package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/pallet-service/internal/circuitbreaker"
	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/repository"
	"github.com/guttosm/pallet-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerWithMongoDB_Integration(t *testing.T) {
	ctx := context.Background()

	mongoContainer, err := testutil.SetupMongoDB(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, mongoContainer.Cleanup(ctx))
	}()

	t.Run("circuit breaker protects order repository", func(t *testing.T) {
		db, err := repository.NewMongoDB(mongoContainer.URI, "test_pallet_orders")
		require.NoError(t, err)
		defer func() {
			_ = db.Close(ctx)
		}()

		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 2,
			SuccessThreshold: 1,
			Timeout:          100 * time.Millisecond,
			Name:             "test-orders",
		})
		wrappedRepo := repository.NewOrderRepositoryWithCircuitBreaker(repository.NewOrderRepository(db), cb)

		order := model.Order{ID: "ORD-CB", WeightTier: model.WeightTierStd}
		require.NoError(t, wrappedRepo.SaveOrder(ctx, order))

		_, err = wrappedRepo.SubmitLineItems(ctx, order.ID, model.ChangeSet[model.Product]{
			Added: []model.Product{{ID: "A", Name: "A", Count: 1, Dimension: model.NewDimension(10, 10, 10)}},
		})
		require.NoError(t, err)

		state, err := wrappedRepo.LoadOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, state.LineItems, 1)

		// missing orders are an expected outcome and must not trip the breaker
		for i := 0; i < 3; i++ {
			_, err = wrappedRepo.LoadOrder(ctx, "missing")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		}

		stats := cb.GetStats()
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
		assert.True(t, stats.IsHealthy)
	})

	t.Run("circuit breaker protects pallet template repository", func(t *testing.T) {
		db, err := repository.NewMongoDB(mongoContainer.URI, "test_pallet_templates")
		require.NoError(t, err)
		defer func() {
			_ = db.Close(ctx)
		}()

		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 2,
			SuccessThreshold: 1,
			Timeout:          100 * time.Millisecond,
			Name:             "test-templates",
		})
		wrappedRepo := repository.NewPalletTemplateRepositoryWithCircuitBreaker(repository.NewPalletTemplateRepository(db), cb)

		require.NoError(t, wrappedRepo.SeedDefaults(ctx, model.DefaultPalletTemplates()))
		templates, err := wrappedRepo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, templates, len(model.DefaultPalletTemplates()))

		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
		assert.True(t, cb.GetStats().IsHealthy)
	})

	t.Run("circuit breaker opens when the database goes away", func(t *testing.T) {
		db, err := repository.NewMongoDB(mongoContainer.URI, "test_pallet_outage")
		require.NoError(t, err)

		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 2,
			SuccessThreshold: 1,
			Timeout:          time.Minute,
			Name:             "test-outage",
			Ignore:           repository.IsBenign,
		})
		wrappedRepo := repository.NewOrderRepositoryWithCircuitBreaker(repository.NewOrderRepository(db), cb)
		require.NoError(t, db.Close(ctx))

		for i := 0; i < 2; i++ {
			_, err := wrappedRepo.LoadOrder(ctx, "ORD-DOWN")
			require.Error(t, err)
			assert.False(t, errors.Is(err, repository.ErrNotFound))
		}

		assert.Equal(t, circuitbreaker.StateOpen, cb.State())
		_, err = wrappedRepo.LoadOrder(ctx, "ORD-DOWN")
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	})
}
