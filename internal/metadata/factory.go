package metadata

import (
	"context"
	"fmt"

	mydb "github.com/TimurManjosov/trackerrules/internal/db"
)

// NewStore creates a new store based on the given store type.
// Supported types: "memory", "postgres"
func NewStore(ctx context.Context, storeType, dbDSN string) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := mydb.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		st := NewPostgresStore(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
