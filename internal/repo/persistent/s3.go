package persistent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/awsclient"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObjectTagging(ctx context.Context, in *s3.PutObjectTaggingInput, optFns ...func(*s3.Options)) (*s3.PutObjectTaggingOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ObjectRepo struct {
	api    s3API
	bucket string
}

func NewObjectRepo(c *awsclient.Client, bucket string) *ObjectRepo {
	return &ObjectRepo{c.S3, bucket}
}

func (r *ObjectRepo) Head(ctx context.Context, key string) (entity.ObjectMeta, error) {
	out, err := r.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return entity.ObjectMeta{}, fmt.Errorf("ObjectRepo - Head - r.api.HeadObject: %w", mapNotFound(err))
	}

	return entity.ObjectMeta{
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

func (r *ObjectRepo) Fetch(ctx context.Context, key string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return []byte{}, nil
	}

	result, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", limit-1)),
	})
	if err != nil {
		// empty objects cannot satisfy a range
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			return []byte{}, nil
		}

		return nil, fmt.Errorf("ObjectRepo - Fetch - r.api.GetObject: %w", mapNotFound(err))
	}
	defer result.Body.Close()

	b, err := io.ReadAll(io.LimitReader(result.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("ObjectRepo - Fetch - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *ObjectRepo) Download(ctx context.Context, key string, limit int64) ([]byte, error) {
	result, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ObjectRepo - Download - r.api.GetObject: %w", mapNotFound(err))
	}
	defer result.Body.Close()

	b, err := io.ReadAll(io.LimitReader(result.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("ObjectRepo - Download - io.ReadAll: %w", err)
	}

	if int64(len(b)) > limit {
		return nil, fmt.Errorf("ObjectRepo - Download - key=%s limit=%d: %w", key, limit, errs.ErrObjectTooLarge)
	}

	return b, nil
}

// PutTag replaces the object's tag set with a single tag.
func (r *ObjectRepo) PutTag(ctx context.Context, key, tagKey, tagValue string) error {
	_, err := r.api.PutObjectTagging(ctx, &s3.PutObjectTaggingInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{
				{Key: aws.String(tagKey), Value: aws.String(tagValue)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - PutTag - r.api.PutObjectTagging: %w", mapNotFound(err))
	}

	return nil
}

func (r *ObjectRepo) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := r.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(r.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource(r.bucket, srcKey)),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Copy - r.api.CopyObject: %w", mapNotFound(err))
	}

	return nil
}

func (r *ObjectRepo) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Put - r.api.PutObject: %w", err)
	}

	return nil
}

func copySource(bucket, key string) string {
	return bucket + "/" + url.PathEscape(key)
}

func mapNotFound(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", errs.ErrRecordNotFound, err)
	}

	return err
}
