package artifact

import (
	"context"
	"fmt"
)

// Options selects and configures a store backend.
type Options struct {
	Driver Driver

	// Root is the directory for the fs driver.
	Root string

	// S3 configures the s3 driver.
	S3 S3Config
}

// Open builds the store selected by opts.Driver (default fs).
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(opts.Root)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown artifact store driver %q (valid: fs, memory, s3)", opts.Driver)
	}
}
