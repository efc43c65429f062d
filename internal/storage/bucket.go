package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/config"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
)

type BucketCategory string

const (
	BucketCategoryModels       BucketCategory = "models"
	BucketCategoryTrainingData BucketCategory = "training-data"
)

// BucketService is the blob-store collaborator. Model artifacts live under
// {model_id}/{filename} in the models bucket, training uploads under
// {upload_id}/{filename} in the training-data bucket.
type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) ([]byte, error)
	GetPublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *gcs.Client
	modelsBucket  string
	dataBucket    string
	publicBaseURL string
	timeout       time.Duration
	maxRetries    int
}

func NewBucketService(log *logger.Logger, cfg *config.Config) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	ctx := context.Background()
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info("Object storage initialized",
		"models_bucket", cfg.ModelsBucket,
		"training_data_bucket", cfg.TrainingDataBucket,
		"public_base_url", cfg.StoreURL,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: client,
		modelsBucket:  cfg.ModelsBucket,
		dataBucket:    cfg.TrainingDataBucket,
		publicBaseURL: cfg.StoreURL,
		timeout:       cfg.RequestTimeout,
		maxRetries:    cfg.MaxRetries,
	}, nil
}

func newStorageClient(ctx context.Context, cfg *config.Config) (*gcs.Client, error) {
	if emulator := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); emulator != "" {
		opts := []option.ClientOption{
			option.WithoutAuthentication(),
			option.WithEndpoint(strings.TrimRight(emulator, "/") + "/storage/v1/"),
		}
		return gcs.NewClient(ctx, opts...)
	}
	opts := []option.ClientOption{
		option.WithScopes(gcs.ScopeReadWrite),
		option.WithAPIKey(cfg.StoreAPIKey),
	}
	return gcs.NewClient(ctx, opts...)
}

func (s *bucketService) bucketName(category BucketCategory) string {
	if category == BucketCategoryTrainingData {
		return s.dataBucket
	}
	return s.modelsBucket
}

func (s *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	writer := s.storageClient.Bucket(s.bucketName(category)).Object(key).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		s.log.Error("Upload failed", "bucket", s.bucketName(category), "key", key, "error", err)
		return fmt.Errorf("%w: upload %s: %v", apperr.ErrStorageUnavailable, key, err)
	}
	if err := writer.Close(); err != nil {
		s.log.Error("Upload close failed", "bucket", s.bucketName(category), "key", key, "error", err)
		return fmt.Errorf("%w: upload %s: %v", apperr.ErrStorageUnavailable, key, err)
	}
	return nil
}

// DownloadFile reads the whole object. Transient failures are retried up to
// the configured max-retry count; each attempt has its own timeout.
func (s *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) ([]byte, error) {
	bucket := s.bucketName(category)

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: download %s: %v", apperr.ErrStorageUnavailable, key, ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		raw, err := s.downloadOnce(ctx, bucket, key)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		s.log.Warn("Download attempt failed", "bucket", bucket, "key", key, "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("%w: download %s: %v", apperr.ErrStorageUnavailable, key, lastErr)
}

func (s *bucketService) downloadOnce(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reader, err := s.storageClient.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (s *bucketService) GetPublicURL(category BucketCategory, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.publicBaseURL, s.bucketName(category), key)
}
