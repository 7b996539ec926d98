//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// maxDBNameLen keeps generated names below the 63 byte limit of MongoDB.
const maxDBNameLen = 48

var (
	sharedMu        sync.RWMutex
	sharedContainer *MongoDBContainer
	dbCounter       atomic.Uint64
)

// GetSharedMongoDB returns the container shared by the tests of a package,
// starting it on first use.
func GetSharedMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer != nil {
		return sharedContainer, nil
	}
	container, err := SetupMongoDB(ctx)
	if err != nil {
		return nil, err
	}
	sharedContainer = container
	return sharedContainer, nil
}

// CleanupSharedMongoDB terminates the shared container.
func CleanupSharedMongoDB(ctx context.Context) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	err := sharedContainer.Cleanup(ctx)
	sharedContainer = nil
	return err
}

// SetupTestMainWithMongoDB runs the tests of a package against one shared container.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	if _, err := GetSharedMongoDB(ctx); err != nil {
		panic(err)
	}

	code := m.Run()

	if err := CleanupSharedMongoDB(ctx); err != nil {
		// Docker reaps the container anyway
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to cleanup shared MongoDB container: %v\n", err)
	}
	return code
}

// GetSharedContainerURI returns the URI of the shared container.
// Panics if SetupTestMainWithMongoDB did not run.
func GetSharedContainerURI() string {
	sharedMu.RLock()
	defer sharedMu.RUnlock()

	if sharedContainer == nil {
		panic("shared MongoDB container not initialized - call GetSharedMongoDB first")
	}
	return sharedContainer.URI
}

// SanitizeDBName turns a test name into a database name unique to this run.
// Characters MongoDB rejects in database names become underscores.
func SanitizeDBName(testName string) string {
	var b strings.Builder
	for _, r := range testName {
		switch r {
		case '/', '\\', '.', ' ', '"', '$', '*', '<', '>', ':', '|', '?':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	name := b.String()
	if len(name) > maxDBNameLen {
		name = name[:maxDBNameLen]
	}
	return fmt.Sprintf("%s_%d_%d", name, os.Getpid()%10000, dbCounter.Add(1))
}
