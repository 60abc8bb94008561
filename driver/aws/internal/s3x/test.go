package s3x

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewTestClient returns a new S3 client for use in a test.
//
// It connects to the MinIO server described by the DOGMATIQ_TEST_MINIO_*
// environment variables.
func NewTestClient(t testing.TB) *s3.Client {
	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				envOr("DOGMATIQ_TEST_MINIO_ACCESS_KEY", "minio"),
				envOr("DOGMATIQ_TEST_MINIO_SECRET_KEY", "password"),
				"",
			),
		),
		config.WithRetryer(
			func() aws.Retryer {
				return aws.NopRetryer{}
			},
		),
	)
	if err != nil {
		t.Fatal(err)
	}

	return s3.NewFromConfig(
		cfg,
		func(opts *s3.Options) {
			opts.BaseEndpoint = aws.String(
				envOr("DOGMATIQ_TEST_MINIO_ENDPOINT", "http://localhost:29000"),
			)
			opts.UsePathStyle = true
		},
	)
}

// envOr returns the value of the environment variable with the given name, or
// def if it is not set.
func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
