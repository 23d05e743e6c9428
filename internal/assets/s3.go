// Package assets provides the external image storage backing the catalog,
// implemented on S3-compatible object stores (AWS S3, MinIO, Cloudflare R2,
// DigitalOcean Spaces).
package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-faster/errors"

	"github.com/storefront-go/storefront/internal/domain/catalog"
)

// Config holds the object storage settings.
type Config struct {
	Bucket    string `usage:"S3 bucket for product images"`
	Region    string `default:"us-east-1" usage:"S3 region"`
	Endpoint  string `usage:"Custom S3 endpoint (MinIO, R2); empty for AWS"`
	AccessKey string `usage:"Static access key; empty to use the default chain" flag:"access-key"`
	SecretKey string `usage:"Static secret key" flag:"secret-key"`
	BaseURL   string `usage:"Public base URL for stored objects" flag:"base-url"`
}

var _ catalog.AssetStore = (*S3Store)(nil)

// S3Store implements catalog.AssetStore on an S3-compatible bucket.
// Object keys double as asset IDs.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// New builds an S3Store from cfg.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("assets: bucket is required")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	// Static credentials are required for MinIO / R2 / Spaces.
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg, clientOpts...),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores one image under key and returns its asset reference.
func (s *S3Store) Upload(ctx context.Context, key string, img catalog.ImageData) (catalog.Asset, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(img.Data),
	}
	if img.ContentType != "" {
		input.ContentType = aws.String(img.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return catalog.Asset{}, errors.Wrapf(err, "put %s", key)
	}
	return catalog.Asset{ID: key, URL: s.URL(key)}, nil
}

// Delete removes one stored object.
func (s *S3Store) Delete(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return errors.Wrapf(err, "delete %s", assetID)
	}
	return nil
}

// URL returns the public URL for an asset ID.
func (s *S3Store) URL(assetID string) string {
	return s.baseURL + "/" + strings.TrimLeft(assetID, "/")
}
