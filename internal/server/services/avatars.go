package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/userkeeper/internal/server/config"
)

// AvatarStore persists uploaded avatar images and returns the reference
// stored on the identity record. Replaced objects are not cleaned up.
type AvatarStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore writes avatars to an S3-compatible bucket (MinIO in dev).
type S3AvatarStore struct {
	config *sc.Config

	// newClient is overridable in tests.
	newClient func(ctx context.Context) (objectPutter, error)
}

func NewS3AvatarStore(cfg *sc.Config) *S3AvatarStore {
	s := &S3AvatarStore{config: cfg}
	s.newClient = s.getClient
	return s
}

func (s *S3AvatarStore) getClient(ctx context.Context) (objectPutter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// storageKey buckets objects by upload date and keeps the original file
// extension so the bucket can serve them with a sensible content type.
func storageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("avatars/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(filename))
}

func (s *S3AvatarStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := storageKey(filename)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   content,
	})
	if err != nil {
		return "", err
	}

	return key, nil
}
