package library

import (
	"context"
	"fmt"
	"testing"
	"time"

	"library-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestArchiver(client *mocks.Client) *Archiver {
	a := NewArchiver(client, "library", zap.NewNop())
	a.now = func() time.Time { return time.Unix(99999, 0) }
	return a
}

func TestArchiver_Archive(t *testing.T) {
	entries := []LibraryEntry{{Name: "Foo", Slug: "foo", Playtime: "1.00000", Categories: []string{}}}

	t.Run("Existing Bucket", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "library").Return(true, nil)
		client.On("PutObject", mock.Anything, "library", "snapshots/library-99999.json",
			mock.Anything, mock.Anything, mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
				return opts.ContentType == "application/json"
			})).Return(minio.UploadInfo{}, nil)

		err := newTestArchiver(client).Archive(context.Background(), entries)
		require.NoError(t, err)
		client.AssertExpectations(t)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates Missing Bucket", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "library").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "library", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "library", mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

		err := newTestArchiver(client).Archive(context.Background(), entries)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Bucket Check Failure", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "library").Return(false, fmt.Errorf("connection refused"))

		err := newTestArchiver(client).Archive(context.Background(), entries)
		assert.Error(t, err)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Upload Failure", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "library").Return(true, nil)
		client.On("PutObject", mock.Anything, "library", mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, fmt.Errorf("access denied"))

		err := newTestArchiver(client).Archive(context.Background(), entries)
		assert.Error(t, err)
	})
}
