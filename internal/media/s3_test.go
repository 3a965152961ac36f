package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePut struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePut) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.ToString(in.Key)}, nil
}

func TestUpload_BaseURL(t *testing.T) {
	api := &fakePut{}
	u := NewUploader(api, "media", "https://cdn.example.com/")

	url, err := u.Upload(context.Background(), "products/p1/a.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/p1/a.png", url)
	assert.Equal(t, "media", aws.ToString(api.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(api.input.ContentType))
	assert.Equal(t, "data", api.body)
}

func TestUpload_LocationFallbackAndError(t *testing.T) {
	api := &fakePut{}
	u := NewUploader(api, "media", "")
	url, err := u.Upload(context.Background(), "k.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/k.png", url)

	api.err = errors.New("denied")
	_, err = u.Upload(context.Background(), "k.png", "image/png", strings.NewReader("x"))
	assert.ErrorContains(t, err, "denied")
}
