package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	path, err := s.Save(context.Background(), []byte("jpeg-bytes"), ".jpg", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalStoreNamesAreUnique(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	a, err := s.Save(context.Background(), []byte("a"), ".jpg", "image/jpeg")
	require.NoError(t, err)
	b, err := s.Save(context.Background(), []byte("b"), ".jpg", "image/jpeg")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreSave(t *testing.T) {
	putter := &fakePutter{}
	s := &S3Store{client: putter, bucket: "sharebite-img", region: "ap-south-1", prefix: "donations/"}

	url, err := s.Save(context.Background(), []byte("img"), ".jpg", "image/jpeg")
	require.NoError(t, err)

	key := aws.ToString(putter.input.Key)
	assert.Equal(t, "sharebite-img", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
	assert.True(t, strings.HasPrefix(key, "donations/"))
	assert.Equal(t, "img", string(putter.body))
	assert.Equal(t, "https://sharebite-img.s3.ap-south-1.amazonaws.com/"+key, url)
}

func TestS3StoreSaveError(t *testing.T) {
	s := &S3Store{client: &fakePutter{err: errors.New("denied")}, bucket: "b", region: "r"}

	_, err := s.Save(context.Background(), []byte("img"), ".jpg", "image/jpeg")
	assert.Error(t, err)
}
