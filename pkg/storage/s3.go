package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/awsclient"
)

// S3API is the subset of the S3 client the disk uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Disk is the S3-compatible object storage driver.
type s3Disk struct {
	client  S3API
	presign *s3.PresignClient // nil when built from a bare S3API
	bucket  string
	baseURL string
}

// NewS3Disk builds an S3 disk for bucket using the shared AWS config.
func NewS3Disk(ctx context.Context, bucket string) (Disk, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage/s3: BUCKET_NAME is not configured")
	}

	cfg, err := awsclient.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := awsclient.Endpoint(); ep != nil {
			o.BaseEndpoint = ep
			o.UsePathStyle = true // LocalStack / MinIO
		}
	})

	baseURL := strings.TrimRight(config.Get("S3_URL", ""), "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, client.Options().Region)
	}
	d := NewS3DiskWithClient(client, bucket, baseURL).(*s3Disk)
	d.presign = s3.NewPresignClient(client)
	return d, nil
}

// NewS3DiskWithClient builds an S3 disk over any S3API. PresignPut is not
// available on such a disk.
func NewS3DiskWithClient(client S3API, bucket, baseURL string) Disk {
	return &s3Disk{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// copySource is the URL-encoded "bucket/key" form CopyObject requires.
// S3 decodes "+" in CopySource as a space, so it is escaped too.
func copySource(bucket, key string) string {
	escaped := (&url.URL{Path: bucket + "/" + key}).EscapedPath()
	return strings.ReplaceAll(escaped, "+", "%2B")
}

func (d *s3Disk) Put(ctx context.Context, path string, content []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, fmt.Errorf("storage/s3: get %s: %w", path, err)
	}
	return out.Body, nil
}

func (d *s3Disk) Exists(ctx context.Context, path string) bool {
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	return err == nil
}

func (d *s3Disk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *s3Disk) Delete(ctx context.Context, path string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) Copy(ctx context.Context, src, dst string) error {
	_, err := d.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		CopySource: aws.String(copySource(d.bucket, src)),
		Key:        aws.String(dst),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: copy %s to %s: %w", src, dst, err)
	}
	return nil
}

func (d *s3Disk) Move(ctx context.Context, src, dst string) error {
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	return d.Delete(ctx, src)
}

func (d *s3Disk) PresignPut(ctx context.Context, path, contentType string, ttl time.Duration) (string, error) {
	if d.presign == nil {
		return "", fmt.Errorf("storage/s3: presign %s: no presign client", path)
	}
	req, err := d.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(path),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("storage/s3: presign %s: %w", path, err)
	}
	return req.URL, nil
}
