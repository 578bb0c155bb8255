// Package archive stores backtest result documents in a cold backend,
// either the local filesystem or an S3-compatible object store.
package archive

import (
	"context"
	"fmt"

	"github.com/horaciomoreno100/deriv-bot/internal/config"
	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// Store is a flat key/value blob store for archived results.
type Store interface {
	// Put stores data under key, creating parents as needed.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// FromConfig builds the store selected by the archive configuration.
func FromConfig(cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}
