// pkg/store/store.go
package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// ErrUnavailable reports that the graph store could not be reached.
// Batch persistence treats it as retriable; everything else is a
// per-record failure.
var ErrUnavailable = errors.New("store unavailable")

// Record is one entity returned from the store.
type Record struct {
	ID         string
	EntityType string
	Fields     map[string]interface{}
}

// Store is the tenant-scoped graph store the pipeline persists into.
// Every operation carries the tenant identifier; implementations must
// never let data cross tenants.
type Store interface {
	// Create inserts an entity and returns its assigned identifier.
	Create(ctx context.Context, tenantID, entityType string, fields map[string]interface{}) (string, error)

	// Match finds at most one entity whose fields contain the
	// predicate. A nil record with a nil error means no match.
	Match(ctx context.Context, tenantID, entityType string, predicate map[string]interface{}) (*Record, error)

	// MatchByID looks up one entity by its identifier. A nil record
	// with a nil error means the entity does not exist in the tenant.
	MatchByID(ctx context.Context, tenantID, entityType, id string) (*Record, error)

	// UpdateRelationship replaces the outgoing relationship of the
	// given type from one entity so it points at another.
	UpdateRelationship(ctx context.Context, tenantID, fromID, relType, toID string) error

	// Close releases the underlying connection.
	Close() error
}

// IsUnavailable reports whether an error means the store is unreachable
// rather than the request being bad.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Class 08 covers connection exceptions.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return true
	}

	return false
}
