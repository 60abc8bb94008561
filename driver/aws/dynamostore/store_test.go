package dynamostore_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	. "github.com/dogmatiq/filekit/driver/aws/dynamostore"
	"github.com/dogmatiq/filekit/driver/aws/internal/dynamox"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xtesting"
)

func TestStore(t *testing.T) {
	client := dynamox.NewTestClient(t)

	filestore.RunTests(
		t,
		func(t testing.TB) filestore.BinaryStore {
			return New(client, newTable(t, client))
		},
	)
}

func BenchmarkStore(b *testing.B) {
	client := dynamox.NewTestClient(b)

	filestore.RunBenchmarks(
		b,
		func(b testing.TB) filestore.BinaryStore {
			return New(client, newTable(b, client))
		},
	)
}

// newTable returns the name of a table that is deleted when the test ends.
func newTable(t testing.TB, client *dynamodb.Client) string {
	table := xtesting.UniqueName("filestore")

	t.Cleanup(func() {
		ctx := xtesting.ContextForCleanup(t)

		if err := dynamox.DeleteTableIfExists(ctx, client, table, nil); err != nil {
			t.Error(err)
		}
	})

	return table
}
