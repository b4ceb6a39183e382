package storage

import (
	"fmt"

	"github.com/Studio-Zurich/fix-app-sub000/internal/config"
)

// Open выбирает драйвер хранилища по STORAGE_DRIVER.
func Open(cfg *config.Config) (ObjectStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		s3, err := NewS3Storage(S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicBaseURL:  cfg.S3PublicBaseURL,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	case config.StorageDriverLocal:
		local, err := NewLocalStorage(cfg.MediaStoragePath, cfg.MediaPublicURL, cfg.MaxUploadSizeMB)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("storage: неизвестный драйвер %q", cfg.StorageDriver)
	}
}
