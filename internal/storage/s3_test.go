package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API

	copyInput *s3.CopyObjectInput
	copyErr   error
	pages     []*s3.ListObjectsV2Output
	deleted   []string
}

func (f *fakeS3) CopyObjectWithContext(_ aws.Context, in *s3.CopyObjectInput, _ ...request.Option) (*s3.CopyObjectOutput, error) {
	f.copyInput = in
	return &s3.CopyObjectOutput{}, f.copyErr
}

func (f *fakeS3) ListObjectsV2PagesWithContext(_ aws.Context, _ *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	for i, p := range f.pages {
		if !fn(p, i == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakeUploader struct {
	input *s3manager.UploadInput
	body  []byte
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = in
	body, err := io.ReadAll(in.Body)
	f.body = body
	return &s3manager.UploadOutput{}, err
}

func newTestS3() (*S3Storage, *fakeS3, *fakeUploader) {
	client := &fakeS3{}
	up := &fakeUploader{}
	s := NewS3StorageWithClient(client, up, S3Config{Bucket: "reports", Region: "eu-central-2", PublicBaseURL: "https://cdn.example.com/"})
	return s, client, up
}

func TestS3Storage_Upload(t *testing.T) {
	s, _, up := newTestS3()

	require.NoError(t, s.Upload(context.Background(), "temp/a.jpg", strings.NewReader("data"), 4, "image/jpeg"))
	assert.Equal(t, "reports", aws.StringValue(up.input.Bucket))
	assert.Equal(t, "temp/a.jpg", aws.StringValue(up.input.Key))
	assert.Equal(t, "image/jpeg", aws.StringValue(up.input.ContentType))
	assert.Equal(t, []byte("data"), up.body)
}

func TestS3Storage_CopyMapsNoSuchKey(t *testing.T) {
	s, client, _ := newTestS3()

	require.NoError(t, s.Copy(context.Background(), "temp/Foto 1.jpg", "r1/Foto 1.jpg"))
	assert.Equal(t, "reports/temp/Foto%201.jpg", aws.StringValue(client.copyInput.CopySource))
	assert.Equal(t, "r1/Foto 1.jpg", aws.StringValue(client.copyInput.Key))

	client.copyErr = awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	err := s.Copy(context.Background(), "temp/x.jpg", "r1/x.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Storage_ListAndPublicURL(t *testing.T) {
	s, client, _ := newTestS3()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client.pages = []*s3.ListObjectsV2Output{
		{Contents: []*s3.Object{{Key: aws.String("r1/a.jpg"), Size: aws.Int64(10), LastModified: aws.Time(ts)}}},
		{Contents: []*s3.Object{{Key: aws.String("r1/a_preview.jpg"), Size: aws.Int64(5)}}},
	}

	objs, err := s.List(context.Background(), "r1/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, ts, objs[0].ModTime)
	assert.Equal(t, "https://cdn.example.com/r1/a_preview.jpg", s.PublicURL(objs[1].Path))
}

func TestS3Storage_DefaultPublicURL(t *testing.T) {
	s := NewS3StorageWithClient(&fakeS3{}, &fakeUploader{}, S3Config{Bucket: "b", Region: "eu-central-2"})
	assert.Equal(t, "https://b.s3.eu-central-2.amazonaws.com/temp/a%20b.jpg", s.PublicURL("temp/a b.jpg"))
}
