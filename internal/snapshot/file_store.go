package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps one JSON file per order in a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(orderID string) string {
	return filepath.Join(f.dir, unsafeChars.ReplaceAllString(orderID, "_")+".json")
}

// Save writes the snapshot through a temporary file so readers never see a partial write.
func (f *FileStore) Save(ctx context.Context, s model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = f.now()
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}

	target := f.path(s.OrderID)
	tmp, err := os.CreateTemp(f.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Restore reads the snapshot of the order, or nil when none was saved.
func (f *FileStore) Restore(ctx context.Context, orderID string) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(orderID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(orderID, data)
}

// Delete removes the snapshot file of the order.
func (f *FileStore) Delete(ctx context.Context, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.path(orderID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
