package nutrition

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source reads a tabular nutrition file stored in an S3 bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Open returns a reader over the object body. The caller closes it.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s/%s: %w", s.bucket, s.key, err)
	}
	return out.Body, nil
}

// Rows downloads and parses the object.
func (s *S3Source) Rows(ctx context.Context) ([]Row, error) {
	body, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return Parse(body)
}
