package s3store

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dogmatiq/filekit/driver/aws/internal/awsx"
	"github.com/dogmatiq/filekit/driver/aws/internal/s3x"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xsync"
)

// store is an implementation of [filestore.BinaryStore] that persists each
// entry as an object in an S3 bucket.
type store struct {
	Client    *s3.Client
	Bucket    string
	Prefix    string
	OnRequest func(any) []func(*s3.Options)

	createBucketOnce xsync.SucceedOnce
}

// New returns a [filestore.BinaryStore] that uses the given S3 client to
// persist each entry as an object in the given bucket, using the entry's key
// as the object key.
//
// The bucket is created when the store is first used.
func New(
	client *s3.Client,
	bucket string,
	options ...Option,
) filestore.BinaryStore {
	if bucket == "" {
		panic("bucket name must not be empty")
	}

	s := &store{
		Client: client,
		Bucket: bucket,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [New].
type Option func(*store)

// WithPrefix is an [Option] that adds the given prefix to the key of every
// object used by the store, allowing multiple stores to share a bucket.
func WithPrefix(prefix string) Option {
	return func(s *store) {
		s.Prefix = prefix
	}
}

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each S3 API request, fn is passed a pointer to the input struct, e.g.
// [s3.GetObjectInput], which it may modify in-place. It may be called with any
// S3 request type. The types of requests used may change in any version without
// notice.
//
// Any functions returned by fn will be applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*s3.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// List returns the keys of the entries in the store, in no particular order.
func (s *store) List(ctx context.Context) ([]string, error) {
	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return nil, err
	}

	in := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.Bucket),
		Delimiter: aws.String("/"),
	}
	if s.Prefix != "" {
		in.Prefix = aws.String(s.Prefix)
	}

	var keys []string

	for {
		out, err := awsx.Do(
			ctx,
			s.Client.ListObjectsV2,
			s.OnRequest,
			in,
		)
		if err != nil {
			return nil, err
		}

		for _, obj := range out.Contents {
			k, ok := strings.CutPrefix(aws.ToString(obj.Key), s.Prefix)
			if !ok || k == "" {
				continue
			}

			keys = append(keys, k)
		}

		if out.NextContinuationToken == nil {
			return keys, nil
		}

		in.ContinuationToken = out.NextContinuationToken
	}
}

// Load returns the value associated with the given key.
func (s *store) Load(ctx context.Context, k string) ([]byte, error) {
	if err := filestore.ValidateKey(k); err != nil {
		return nil, err
	}

	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return nil, err
	}

	return s.load(ctx, k)
}

// Store associates a value with the given key, replacing any existing value.
func (s *store) Store(ctx context.Context, k string, v []byte) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return err
	}

	_, err := awsx.Do(
		ctx,
		s.Client.PutObject,
		s.OnRequest,
		&s3.PutObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.Prefix + k),
			Body:   s3x.NewReadSeeker(v),
		},
	)

	return err
}

// LoadAll returns every entry in the store, in no particular order.
func (s *store) LoadAll(ctx context.Context) ([]filestore.BinaryEntry, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]filestore.BinaryEntry, 0, len(keys))

	for _, k := range keys {
		v, err := s.load(ctx, k)
		if err != nil {
			return nil, err
		}

		entries = append(
			entries,
			filestore.BinaryEntry{
				Key:   k,
				Value: v,
			},
		)
	}

	return entries, nil
}

// StoreAll stores each of the given entries, in order.
func (s *store) StoreAll(ctx context.Context, entries []filestore.BinaryEntry) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

// Remove removes the entry associated with the given key.
func (s *store) Remove(ctx context.Context, k string) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return err
	}

	if _, err := awsx.Do(
		ctx,
		s.Client.HeadObject,
		s.OnRequest,
		&s3.HeadObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.Prefix + k),
		},
	); err != nil {
		if s3x.IsNotExists(err) {
			return filestore.KeyNotFoundError{Key: k, Cause: err}
		}
		return err
	}

	// An object removed by a concurrent writer between these two requests
	// goes undetected.
	_, err := awsx.Do(
		ctx,
		s.Client.DeleteObject,
		s.OnRequest,
		&s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.Prefix + k),
		},
	)

	return err
}

// load fetches the object that holds the value associated with the given key.
func (s *store) load(ctx context.Context, k string) ([]byte, error) {
	out, err := awsx.Do(
		ctx,
		s.Client.GetObject,
		s.OnRequest,
		&s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.Prefix + k),
		},
	)
	if err != nil {
		if s3x.IsNotExists(err) {
			return nil, filestore.KeyNotFoundError{Key: k, Cause: err}
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// createBucket creates the S3 bucket if it does not already exist.
func (s *store) createBucket(ctx context.Context) error {
	return s3x.CreateBucketIfNotExists(
		ctx,
		s.Client,
		s.Bucket,
		s.OnRequest,
	)
}
