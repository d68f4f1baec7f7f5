package services

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/chiaview/site-backend/errs"
)

// StorageConfig points at an S3-compatible bucket (Supabase Storage exposes one).
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// ObjectStorage stores uploaded images and returns their public URL.
type ObjectStorage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewObjectStorage(ctx context.Context, cfg StorageConfig) (*ObjectStorage, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("Failed to load storage configuration", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &ObjectStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores body under uploads/<uuid><ext> and returns its public URL.
func (s *ObjectStorage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := "uploads/" + uuid.NewString() + strings.ToLower(path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errs.NewUpstreamError("Failed to upload file", "storage", err)
	}
	return s.publicURL + "/" + key, nil
}
