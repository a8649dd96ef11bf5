package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// backupContentType marks backup objects as newline-delimited JSON.
const backupContentType = "application/x-ndjson"

// S3Destination uploads each backup snapshot to a fixed object key in an
// S3-compatible bucket. Every Write replaces the previous snapshot; the
// export is self-contained, so only the latest object matters.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination builds a destination from the backup settings. A
// non-empty endpoint switches to path-style addressing so MinIO and other
// S3 clones work without a custom DNS setup.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	if bucket == "" {
		return nil, fmt.Errorf("backup bucket is required")
	}
	if key == "" {
		return nil, fmt.Errorf("backup object key is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		key:    key,
	}, nil
}

// Write uploads one snapshot, overwriting the object at the configured key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(backupContentType),
	})
	if err != nil {
		return fmt.Errorf("uploading backup to s3://%s/%s: %w", d.bucket, d.key, err)
	}
	return nil
}
