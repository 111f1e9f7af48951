// Package upload copies finished captures to S3-compatible storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// Timeout bounds a single upload.
const Timeout = 5 * time.Minute

// ErrNotConfigured is returned when an upload is requested without S3 settings.
var ErrNotConfigured = errors.New("upload target is not configured")

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint        string `toml:"endpoint" validate:"omitempty,url"`                      // Custom S3 endpoint (empty for AWS)
	Region          string `toml:"region"`                                                 // Region (empty = "auto")
	Bucket          string `toml:"bucket" validate:"required_with=AccessKeyID"`            // S3 bucket name
	Prefix          string `toml:"prefix"`                                                 // Key prefix, e.g. "screengrabs"
	AccessKeyID     string `toml:"access_key_id" validate:"required_with=Bucket"`          // Access key ID
	SecretAccessKey string `toml:"secret_access_key" validate:"required_with=AccessKeyID"` // Secret access key
}

// IsConfigured returns true if S3 settings are configured.
func (c *Config) IsConfigured() bool {
	return util.IsConfigured(c.Bucket, c.AccessKeyID, c.SecretAccessKey)
}

// ObjectKey returns the key a file captured at t is stored under: <prefix>/YYYY/MM/DD/<name>.
func (c *Config) ObjectKey(localPath string, t time.Time) string {
	parts := []string{t.Format("2006"), t.Format("01"), t.Format("02"), filepath.Base(localPath)}
	if prefix := strings.Trim(c.Prefix, "/"); prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return path.Join(parts...)
}

// Uploader puts objects into a bucket.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient creates an S3 client with the given configuration.
func NewClient(cfg *Config) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = region
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

// Result describes a completed upload.
type Result struct {
	Bucket string
	Key    string
	Size   int64
}

// File uploads localPath using client and returns where it was stored.
func File(ctx context.Context, client Uploader, cfg *Config, localPath string, now time.Time) (Result, error) {
	if !cfg.IsConfigured() {
		return Result{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeoutCause(ctx, Timeout, errors.New("s3 upload timeout"))
	defer cancel()

	file, err := os.Open(localPath)
	if err != nil {
		return Result{}, util.WrapError("open capture for upload", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "path", localPath, "error", err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return Result{}, util.WrapError("stat capture", err)
	}

	key := cfg.ObjectKey(localPath, now)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(localPath)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload %s to s3://%s/%s: %w", filepath.Base(localPath), cfg.Bucket, key, err)
	}

	return Result{Bucket: cfg.Bucket, Key: key, Size: info.Size()}, nil
}

// contentType guesses the MIME type from the capture's extension.
func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
