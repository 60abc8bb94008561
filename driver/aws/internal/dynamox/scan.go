package dynamox

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/filekit/driver/aws/internal/awsx"
)

// ScanFunc is a function that is called for each item in a result set.
type ScanFunc func(context.Context, map[string]types.AttributeValue) (bool, error)

// Scan executes a table scan and calls fn for each item in the result set.
func Scan(
	ctx context.Context,
	client *dynamodb.Client,
	m func(any) []func(*dynamodb.Options),
	in *dynamodb.ScanInput,
	fn ScanFunc,
) error {
	in.ExclusiveStartKey = nil

	for {
		out, err := awsx.Do(ctx, client.Scan, m, in)
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			if ok, err := fn(ctx, item); err != nil || !ok {
				return err
			}
		}

		if out.LastEvaluatedKey == nil {
			return nil
		}

		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
