package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	// ProductImageFolder is the key prefix for catalog images.
	ProductImageFolder = "products"
	// MaxImageSize bounds a single product image upload.
	MaxImageSize int64 = 5 << 20

	presignExpiry = 15 * time.Minute
)

var (
	ErrContentTypeNotAllowed = errors.New("content type is not allowed")
	ErrFileTooLarge          = errors.New("file exceeds maximum size")
)

// AllowedImageTypes are the content types accepted for product images.
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImageUploader hands out direct-to-bucket upload URLs.
type ImageUploader interface {
	PresignProductImage(ctx context.Context, filename, contentType string, size int64) (*PresignedUpload, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Storage uses the static keys from cfg when both are set and the
// default AWS credential chain otherwise.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = loaded
	}

	logger.Info("S3 image storage configured", map[string]interface{}{
		"bucket": cfg.Bucket,
		"region": cfg.Region,
	})

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// PresignProductImage validates the upload and returns a PUT URL valid for
// 15 minutes under products/<uuid><ext>.
func (s *S3Storage) PresignProductImage(ctx context.Context, filename, contentType string, size int64) (*PresignedUpload, error) {
	if err := ValidateContentType(contentType, AllowedImageTypes); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(size, MaxImageSize); err != nil {
		return nil, err
	}
	return s.presignPut(ctx, filename, contentType, ProductImageFolder)
}

func (s *S3Storage) presignPut(ctx context.Context, filename, contentType, folder string) (*PresignedUpload, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	req, err := s3.NewPresignClient(s.client).PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ValidateFileSize rejects sizes above maxSize. Zero means unknown and is
// allowed; the bucket policy enforces the hard limit.
func ValidateFileSize(size, maxSize int64) error {
	if size < 0 || size > maxSize {
		return fmt.Errorf("%w of %d bytes", ErrFileTooLarge, maxSize)
	}
	return nil
}

func ValidateContentType(contentType string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(contentType, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
}
