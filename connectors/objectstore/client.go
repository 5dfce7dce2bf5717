// Package objectstore reads input tables from delimited text objects in an
// S3 compatible bucket
package objectstore

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// objectAPI is the subset of the S3 client the source uses
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Client struct {
	s3Client  objectAPI
	bucket    string
	prefix    string
	delimiter rune
	logger    *zap.Logger
}

func NewClient(ctx context.Context, cfg map[string]string, delimiter rune, logger *zap.Logger) (*Client, error) {
	// Parse SSL setting
	useSSL := true
	if sslStr := cfg["use_ssl"]; sslStr != "" {
		if parsed, err := strconv.ParseBool(sslStr); err == nil {
			useSSL = parsed
		}
	}

	region := cfg["region"]
	if region == "" {
		region = "us-east-1"
	}

	// Load AWS config with static credentials
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg["access_key_id"],
			cfg["secret_access_key"],
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// A custom endpoint means a MinIO style deployment with path-style addressing
	endpoint := cfg["endpoint"]
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(endpointURL(endpoint, useSSL))
		o.UsePathStyle = true
	})

	return newClient(s3Client, cfg["bucket"], cfg["prefix"], delimiter, logger), nil
}

func newClient(api objectAPI, bucket, prefix string, delimiter rune, logger *zap.Logger) *Client {
	return &Client{
		s3Client:  api,
		bucket:    bucket,
		prefix:    prefix,
		delimiter: delimiter,
		logger:    logger,
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (c *Client) Close() error {
	// S3 client doesn't require explicit closing
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	// Try to list objects with max 1 result to verify connectivity
	_, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(c.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to S3: %w", err)
	}
	return nil
}

// Key returns the object key of a table
func (c *Client) Key(name string) string {
	return path.Join(c.prefix, name)
}

// ReadTable downloads and parses the object name under the configured prefix
func (c *Client) ReadTable(ctx context.Context, name string) (*tables.Table, error) {
	key := c.Key(name)

	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", c.bucket, key, err)
	}
	defer result.Body.Close()

	t, err := tables.ReadCSV(name, result.Body, c.delimiter)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Read table",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.Int("rows", t.Len()))
	return t, nil
}
