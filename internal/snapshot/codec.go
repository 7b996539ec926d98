// Package snapshot stores the local working state of plans and restores it
// without ever failing the caller.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

// FormatVersion is written into every encoded snapshot.
const FormatVersion = "1"

// ErrCorruptSnapshot is returned when stored data cannot be decoded into a snapshot.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

type envelope struct {
	Version  string          `json:"version"`
	Snapshot *model.Snapshot `json:"snapshot"`
}

// Encode serializes a snapshot with its format version.
func Encode(s model.Snapshot) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: FormatVersion, Snapshot: &s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", s.OrderID, err)
	}
	return data, nil
}

// Decode parses data written by Encode. Any unreadable or foreign payload is
// reported as ErrCorruptSnapshot.
func Decode(orderID string, data []byte) (*model.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, orderID, err)
	}
	if env.Version != FormatVersion || env.Snapshot == nil {
		return nil, fmt.Errorf("%w: %s: unsupported version %q", ErrCorruptSnapshot, orderID, env.Version)
	}
	if env.Snapshot.OrderID != "" && env.Snapshot.OrderID != orderID {
		return nil, fmt.Errorf("%w: %s: belongs to order %s", ErrCorruptSnapshot, orderID, env.Snapshot.OrderID)
	}

	s := env.Snapshot
	s.OrderID = orderID
	if s.Order.ID == "" {
		s.Order.ID = orderID
	}
	if s.Pool == nil {
		s.Pool = []model.Product{}
	}
	if s.Packages == nil {
		s.Packages = []model.Package{}
	}
	return s, nil
}
