package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"library-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver writes the merged library to object storage after a pass that
// changed local data, giving a point-in-time backup of the catalog.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewArchiver creates a snapshot archiver writing to the given bucket.
func NewArchiver(client storage.Client, bucket string, logg *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		logger: logg,
		now:    time.Now,
	}
}

// Archive uploads the encoded library as an indented JSON object named by
// the current timestamp.
func (a *Archiver) Archive(ctx context.Context, entries []LibraryEntry) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check snapshot bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create snapshot bucket: %w", err)
		}
		a.logger.Info("Created snapshot bucket", zap.String("bucket", a.bucket))
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library snapshot: %w", err)
	}

	objName := fmt.Sprintf("snapshots/library-%d.json", a.now().Unix())
	reader := bytes.NewReader(data)

	_, err = a.client.PutObject(ctx, a.bucket, objName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objName, err)
	}
	return nil
}
