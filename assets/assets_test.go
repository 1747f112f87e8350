package assets

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func newFakeStore(t *testing.T) (*fakeS3, *S3Store) {
	t.Helper()

	client := &fakeS3{}
	store, err := newS3Store(client, "avatars-bucket", "https://assets.example.com/")
	require.NoError(t, err)
	return client, store
}

func TestDefaultAvatarURLIsDeterministic(t *testing.T) {
	_, store := newFakeStore(t)

	first := store.DefaultAvatarURL("alice@example.com")
	second := store.DefaultAvatarURL("ALICE@Example.COM")

	assert.Equal(t, first, second, "URL must not depend on email casing")
	assert.True(t, strings.HasPrefix(first, "https://assets.example.com/avatars/"))
	assert.True(t, strings.HasSuffix(first, ".png"))

	other := store.DefaultAvatarURL("bob@example.com")
	assert.NotEqual(t, first, other, "distinct emails must map to distinct objects")
}

func TestPutDefaultAvatarUploadsPNG(t *testing.T) {
	client, store := newFakeStore(t)

	require.NoError(t, store.PutDefaultAvatar(context.Background(), "alice@example.com"))
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "avatars-bucket", *put.Bucket)
	assert.Equal(t, "image/png", *put.ContentType)
	assert.Equal(t, "https://assets.example.com/"+*put.Key, store.DefaultAvatarURL("alice@example.com"))

	data, err := io.ReadAll(put.Body)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "uploaded object must be a valid PNG")
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy(), "avatar must be square")
}

func TestIdenticonIsDeterministicAndMirrored(t *testing.T) {
	first, err := renderIdenticon("alice@example.com")
	require.NoError(t, err)
	second, err := renderIdenticon("Alice@Example.Com")
	require.NoError(t, err)
	assert.Equal(t, first, second, "identicon must not depend on email casing")

	other, err := renderIdenticon("bob@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	img, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mirrored := bounds.Max.X - 1 - (x - bounds.Min.X)
			assert.Equal(t, img.At(x, y), img.At(mirrored, y), "identicon must be horizontally symmetric")
		}
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	client := &fakeS3{}

	_, err := newS3Store(nil, "bucket", "https://assets.example.com")
	assert.Error(t, err)

	_, err = newS3Store(client, "", "https://assets.example.com")
	assert.Error(t, err)

	_, err = newS3Store(client, "bucket", "")
	assert.Error(t, err)
}
