package snapshot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// Restorer is the read side of a snapshot store.
type Restorer interface {
	Restore(ctx context.Context, orderID string) (*model.Snapshot, error)
}

// RestoreOrEmpty returns the stored snapshot of the order. Missing, corrupt or
// unreachable snapshots degrade to the empty snapshot; the boolean reports
// whether a stored snapshot was used.
func RestoreOrEmpty(ctx context.Context, store Restorer, orderID string) (model.Snapshot, bool) {
	if store == nil {
		return model.EmptySnapshot(orderID), false
	}
	s, err := store.Restore(ctx, orderID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Snapshot restore failed, starting from empty state")
		return model.EmptySnapshot(orderID), false
	}
	if s == nil {
		return model.EmptySnapshot(orderID), false
	}
	return *s, true
}
