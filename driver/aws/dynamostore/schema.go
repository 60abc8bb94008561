package dynamostore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/filekit/driver/aws/internal/dynamox"
)

var (
	// keyAttr is the name of the attribute that stores the entry's key on
	// each item. It forms the primary key of the table.
	keyAttr = "K"

	// valueAttr is the name of the attribute that stores the entry's value on
	// each item.
	valueAttr = "V"
)

// createTable creates the DynamoDB table if it does not already exist.
func (s *store) createTable(ctx context.Context) error {
	return dynamox.CreateTableIfNotExists(
		ctx,
		s.Client,
		s.Table,
		s.OnRequest,
		dynamox.KeyAttr{
			Name:    &keyAttr,
			Type:    types.ScalarAttributeTypeS,
			KeyType: types.KeyTypeHash,
		},
	)
}
