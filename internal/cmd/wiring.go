package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/opmodel/combogen/internal/artifact"
	"github.com/opmodel/combogen/internal/cache"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
)

// openStores opens the artifact store and the cache selected by s.
// The caller closes the cache.
func openStores(ctx context.Context, s *settings) (artifact.Store, cache.Store, error) {
	artifacts, err := artifact.Open(ctx, artifact.Options{
		Driver: artifact.Driver(s.StoreDriver),
		Root:   s.BuildDir,
		S3: artifact.S3Config{
			Bucket:          s.S3.Bucket,
			Region:          s.S3.Region,
			Endpoint:        s.S3.Endpoint,
			Prefix:          s.S3.Prefix,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
			PathStyle:       s.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, nil, storageError("could not open artifact store", s.StoreDriver, err)
	}

	dsn := s.CacheDSN
	if cache.Driver(s.CacheDriver) == cache.DriverSQLite && dsn == "" {
		dsn = filepath.Join(s.BuildDir, cache.DefaultSQLiteFile)
	}

	c, err := cache.Open(ctx, cache.Options{
		Driver:    cache.Driver(s.CacheDriver),
		DSN:       dsn,
		Artifacts: artifacts,
	})
	if err != nil {
		return nil, nil, storageError("could not open combo cache", s.CacheDriver, err)
	}

	output.Debug("stores opened",
		"store", artifacts.Driver(),
		"cache", s.CacheDriver,
		"entries", c.Len(),
	)
	return artifacts, c, nil
}

func storageError(msg, driver string, err error) error {
	return oerrors.NewStorageError(fmt.Sprintf("%s: %v", msg, err),
		map[string]string{"driver": driver},
		"Check --build-dir, --store and --cache-dsn.")
}
