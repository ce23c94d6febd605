package s3_store

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/storage"
)

type Filer struct {
	client *s3.Client
}

func NewClient(client *s3.Client) *Filer {
	return &Filer{
		client: client,
	}
}

// GetStore builds an S3 client against the configured R2 account. R2 is
// S3-compatible but needs the account endpoint and path-style addressing.
func GetStore(cfg config.Config) *Filer {
	options := s3.Options{
		Region:       "auto",
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		BaseEndpoint: aws.String(cfg.Endpoint()),
		UsePathStyle: true,
	}

	return NewClient(s3.New(options))
}

func (s *Filer) Put(ctx context.Context, bucket string, key string, r io.Reader, opts storage.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(opts.ContentType),
	}
	if opts.ContentLength > 0 {
		input.ContentLength = &opts.ContentLength
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}
