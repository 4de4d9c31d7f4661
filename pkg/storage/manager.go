package storage

import (
	"context"
	"fmt"

	"github.com/vancyferns/near2door/config"
)

// Config selects and configures the upload disk.
type Config struct {
	Driver    string // "local" or "s3"
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// FromConfig reads STORAGE_* and S3_* settings.
func FromConfig() Config {
	return Config{
		Driver:    config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	}
}

// Open boots the disk named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.LocalURL), nil
	case "s3":
		return NewS3Disk(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
