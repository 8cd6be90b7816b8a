// Package s3 stores photos in an S3-compatible bucket such as Cloudflare R2 or
// MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/closet/internal/photostore"
)

type Config struct {
	Bucket string
	// Endpoint is the bucket host URL; empty uses AWS itself.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type S3PhotoStore struct {
	client *awss3.Client
	bucket string
}

func NewS3PhotoStore(ctx context.Context, cfg Config) (*S3PhotoStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: cfg.Endpoint, HostnameImmutable: true}, nil
		})
		opts = append(opts, config.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return &S3PhotoStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3PhotoStore) Save(ctx context.Context, name, mimeType string, r io.Reader) (string, error) {
	// Signing needs a seekable body; photos are small enough to buffer.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	key := name + photostore.MimeTypeToExt(mimeType)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to fetch photo: %w", err)
	}
	mimeType := aws.ToString(out.ContentType)
	if mimeType == "" {
		mimeType = photostore.ExtToMimeType(storageKey)
	}
	return out.Body, mimeType, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, storageKey string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

var _ photostore.PhotoStore = (*S3PhotoStore)(nil)
