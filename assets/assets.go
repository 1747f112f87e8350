// Package assets stores account avatars in an S3-compatible object
// store. New accounts get a deterministic identicon derived from the
// email address, so the avatar URL can be computed before the upload
// completes and the upload itself can run off the request path.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes avatars to a bucket and serves them from a public base
// URL (typically a CDN in front of the bucket).
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Store returns a store writing to bucket and addressing objects
// under baseURL.
func NewS3Store(client *s3.Client, bucket, baseURL string) (*S3Store, error) {
	return newS3Store(client, bucket, baseURL)
}

func newS3Store(client s3API, bucket, baseURL string) (*S3Store, error) {
	if client == nil {
		return nil, fmt.Errorf("assets: s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("assets: bucket is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("assets: base URL is required")
	}
	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func avatarKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return "avatars/" + hex.EncodeToString(sum[:])[:32] + ".png"
}

// DefaultAvatarURL returns the public URL of the default avatar for
// email. The URL is a pure function of the email address.
func (s *S3Store) DefaultAvatarURL(email string) string {
	return s.baseURL + "/" + avatarKey(email)
}

// PutDefaultAvatar renders the identicon for email and uploads it. The
// upload is idempotent: the same email always produces the same object
// under the same key.
func (s *S3Store) PutDefaultAvatar(ctx context.Context, email string) error {
	img, err := renderIdenticon(email)
	if err != nil {
		return fmt.Errorf("assets: render identicon: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(avatarKey(email)),
		Body:        bytes.NewReader(img),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return fmt.Errorf("assets: put avatar: %w", err)
	}
	return nil
}
