package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/sirupsen/logrus"
)

// S3API is the subset of the S3 client used for file storage
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

const s3KeyPrefix = "uploads/"

// S3FileStorage keeps files in an S3 bucket under uploads/
type S3FileStorage struct {
	client S3API
	bucket string
}

// NewS3FileStorage initializes the S3 client with AWS credentials from config
func NewS3FileStorage(ctx context.Context, cfg *config.Config) (*S3FileStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logrus.WithField("bucket", cfg.AWSS3Bucket).Info("Using S3 file storage")
	return NewS3FileStorageWithClient(s3.NewFromConfig(awsConfig), cfg.AWSS3Bucket), nil
}

// NewS3FileStorageWithClient wraps an existing client (used by tests)
func NewS3FileStorageWithClient(client S3API, bucket string) *S3FileStorage {
	return &S3FileStorage{client: client, bucket: bucket}
}

func (s *S3FileStorage) key(name string) *string {
	return aws.String(s3KeyPrefix + name)
}

func (s *S3FileStorage) Store(ctx context.Context, data []byte, ext string) (string, error) {
	name := generateFileName(ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         s.key(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return name, nil
}

func (s *S3FileStorage) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := checkFileName(name); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(name),
	})
	if isS3NotFound(err) {
		return nil, notFound("file", "name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return out.Body, nil
}

func (s *S3FileStorage) Delete(ctx context.Context, name string) (bool, error) {
	if err := checkFileName(name); err != nil {
		return false, err
	}

	// DeleteObject succeeds for missing keys, so check existence first
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(name),
	})
	if isS3NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat S3 object: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(name),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return true, nil
}

func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
