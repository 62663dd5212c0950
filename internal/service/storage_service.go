package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/models"
)

// StorageService archives finished reports to S3-compatible object storage
// (Tigris, MinIO, AWS). Disabled when no bucket is configured; every
// operation is then a no-op or an explicit error.
type StorageService struct {
	client  *s3.Client
	bucket  string
	enabled bool
	logger  *slog.Logger
}

// NewStorageService creates the report archive service.
func NewStorageService(cfg *appconfig.Config, logger *slog.Logger) (*StorageService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.StorageEnabled {
		logger.Info("report archive disabled - no bucket configured")
		return &StorageService{enabled: false, logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true // required for some S3-compatible services
	})

	logger.Info("report archive initialized",
		"bucket", cfg.StorageBucket,
		"endpoint", cfg.StorageEndpoint,
	)

	return &StorageService{
		client:  client,
		bucket:  cfg.StorageBucket,
		enabled: true,
		logger:  logger,
	}, nil
}

// IsEnabled returns whether the archive is configured and available.
func (s *StorageService) IsEnabled() bool {
	return s.enabled
}

func reportKey(id string) string {
	return fmt.Sprintf("reports/%s.json", id)
}

// ArchiveReport uploads one stored report as a JSON object under
// reports/{id}.json.
func (s *StorageService) ArchiveReport(ctx context.Context, stored *models.StoredReport) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := reportKey(stored.ID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}

	s.logger.Info("archived report",
		"report_id", stored.ID,
		"key", key,
		"size_bytes", len(data),
	)
	return nil
}

// GetArchivedReport retrieves a previously archived report.
func (s *StorageService) GetArchivedReport(ctx context.Context, id string) (*models.StoredReport, error) {
	if !s.enabled {
		return nil, fmt.Errorf("report archive is not enabled")
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reportKey(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get archived report: %w", err)
	}
	defer func() { _ = output.Body.Close() }()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived report: %w", err)
	}

	var stored models.StoredReport
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archived report: %w", err)
	}
	return &stored, nil
}

// ReportPresignedURL returns a presigned download URL for an archived report,
// valid for the given duration (default 1 hour).
func (s *StorageService) ReportPresignedURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("report archive is not enabled")
	}
	if expiry == 0 {
		expiry = 1 * time.Hour
	}

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reportKey(id)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}
