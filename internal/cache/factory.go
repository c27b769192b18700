package cache

import (
	"context"
	"fmt"

	"github.com/opmodel/combogen/internal/artifact"
)

// Options selects and configures a cache driver.
type Options struct {
	Driver Driver

	// DSN is the sqlite file path or the postgres connection string.
	DSN string

	// Artifacts holds the metadata document for the json driver.
	Artifacts artifact.Store

	// Key overrides the json document key (default MetadataKey).
	Key string
}

// Open builds the cache selected by opts.Driver (default json).
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverJSON:
		if opts.Artifacts == nil {
			return nil, fmt.Errorf("json cache requires an artifact store")
		}
		return OpenJSON(ctx, opts.Artifacts, opts.Key)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q (valid: json, sqlite, postgres, memory)", opts.Driver)
	}
}
