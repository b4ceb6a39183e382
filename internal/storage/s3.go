package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicBaseURL  string
	ForcePathStyle bool
}

// S3Storage работает с любым S3-совместимым хранилищем.
type S3Storage struct {
	client        s3iface.S3API
	uploader      s3manageriface.UploaderAPI
	bucket        string
	publicBaseURL string
}

// NewS3Storage создаёт клиента по стандартной цепочке учётных данных AWS.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.ForcePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать сессию S3: %w", err)
	}

	client := s3.New(sess)
	return NewS3StorageWithClient(client, s3manager.NewUploaderWithClient(client), cfg), nil
}

func NewS3StorageWithClient(client s3iface.S3API, uploader s3manageriface.UploaderAPI, cfg S3Config) *S3Storage {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Storage{
		client:        client,
		uploader:      uploader,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
	}
}

func (s *S3Storage) Upload(ctx context.Context, objectPath string, r io.Reader, _ int64, contentType string) error {
	key, err := CleanPath(objectPath)
	if err != nil {
		return err
	}

	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("storage: не удалось загрузить %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Copy(ctx context.Context, srcPath, dstPath string) error {
	src, err := CleanPath(srcPath)
	if err != nil {
		return err
	}
	dst, err := CleanPath(dstPath)
	if err != nil {
		return err
	}

	_, err = s.client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(copySource(s.bucket, src)),
		Key:        aws.String(dst),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("storage: не удалось скопировать %s в %s: %w", src, dst, err)
	}
	return nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Path:    aws.StringValue(obj.Key),
				Size:    aws.Int64Value(obj.Size),
				ModTime: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось получить список %s: %w", prefix, err)
	}
	return objects, nil
}

func (s *S3Storage) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/" + escapeKey(strings.TrimLeft(objectPath, "/"))
}

func (s *S3Storage) Delete(ctx context.Context, objectPath string) error {
	key, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil && !isNotFound(err) {
		return fmt.Errorf("storage: не удалось удалить %s: %w", key, err)
	}
	return nil
}

func copySource(bucket, key string) string {
	return bucket + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
