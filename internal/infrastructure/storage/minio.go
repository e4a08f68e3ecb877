package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

const transcriptPrefix = "transcripts"

// MinIOClient archives transcript text in a private bucket
type MinIOClient struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
		now:    time.Now,
	}
	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// TranscriptKey builds the object name of an archived transcript:
// transcripts/<meeting id>/<unix millis>-<file name>.txt
func TranscriptKey(meetingID uuid.UUID, fileName string, at time.Time) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(fileName, "\\", "/")), path.Ext(fileName))
	if base == "" || base == "." || base == "/" {
		base = "transcript"
	}
	return fmt.Sprintf("%s/%s/%d-%s.txt", transcriptPrefix, meetingID, at.UnixMilli(), base)
}

// ArchiveTranscript stores the extracted transcript text and returns its object key
func (m *MinIOClient) ArchiveTranscript(ctx context.Context, meetingID uuid.UUID, fileName, text string) (string, error) {
	key := TranscriptKey(meetingID, fileName, m.now())
	_, err := m.client.PutObject(ctx, m.bucket, key, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"meeting-id": meetingID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}
	return key, nil
}

// ListTranscripts lists archived transcript keys of a meeting
func (m *MinIOClient) ListTranscripts(ctx context.Context, meetingID uuid.UUID) ([]string, error) {
	var keys []string
	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    fmt.Sprintf("%s/%s/", transcriptPrefix, meetingID),
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

// Ping reports whether the bucket is reachable
func (m *MinIOClient) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
