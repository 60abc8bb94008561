package s3store_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dogmatiq/filekit/driver/aws/internal/s3x"
	. "github.com/dogmatiq/filekit/driver/aws/s3store"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xtesting"
)

func TestStore(t *testing.T) {
	client, bucket := setup(t)

	filestore.RunTests(
		t,
		func(t testing.TB) filestore.BinaryStore {
			return New(
				client,
				bucket,
				WithPrefix(xtesting.UniqueName("store")+"/"),
			)
		},
	)
}

func BenchmarkStore(b *testing.B) {
	client, bucket := setup(b)

	filestore.RunBenchmarks(
		b,
		func(b testing.TB) filestore.BinaryStore {
			return New(
				client,
				bucket,
				WithPrefix(xtesting.UniqueName("store")+"/"),
			)
		},
	)
}

func setup(t testing.TB) (*s3.Client, string) {
	client := s3x.NewTestClient(t)
	bucket := xtesting.UniqueName("bucket")

	t.Cleanup(func() {
		ctx := xtesting.ContextForCleanup(t)

		if err := s3x.DeleteBucketIfExists(ctx, client, bucket, nil); err != nil {
			t.Error(err)
		}
	})

	return client, bucket
}
