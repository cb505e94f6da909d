// Package avatar uploads profile pictures to S3-compatible object storage
// and hands back the public URL the profile record points at.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxSize is the upload cap enforced before any byte leaves the machine.
const MaxSize = 10 * 1024 * 1024

// allowedTypes maps the accepted image content types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Config locates the storage service. Endpoint and credentials are
// MinIO-style; Bucket defaults to "avatars" at the config layer.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type Uploader struct {
	cfg Config
}

func NewUploader(cfg Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Upload validates the image and stores it under a fresh key, returning the
// public URL. The content type is sniffed from the bytes, not taken from the
// file name.
func (u *Uploader) Upload(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no image data")
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("file size exceeds 10MB limit")
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("invalid file type %q: only JPEG, PNG, GIF and WebP images are allowed", contentType)
	}

	key := storageKey(userID, ext)

	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(u.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKey,
			u.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return "", fmt.Errorf("failed to load storage config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.cfg.Endpoint)
		o.UsePathStyle = true
	})

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return u.PublicURL(key), nil
}

// PublicURL builds the path-style URL under which an uploaded object is served.
func (u *Uploader) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.Endpoint, "/"), u.cfg.Bucket, key)
}

func storageKey(userID, ext string) string {
	id := uuid.NewString()
	if userID == "" {
		return fmt.Sprintf("profile_pictures/%s%s", id, ext)
	}
	return fmt.Sprintf("profile_pictures/%s-%s%s", userID, id, ext)
}
