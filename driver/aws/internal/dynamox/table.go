package dynamox

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/filekit/driver/aws/internal/awsx"
)

// KeyAttr describes an attribute that forms part of a table's primary key.
type KeyAttr struct {
	Name    *string
	Type    types.ScalarAttributeType
	KeyType types.KeyType
}

// CreateTableIfNotExists creates a DynamoDB table with the given primary key,
// if it does not already exist.
func CreateTableIfNotExists(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	onRequest func(any) []func(*dynamodb.Options),
	keys ...KeyAttr,
) error {
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
	}

	for _, k := range keys {
		in.AttributeDefinitions = append(
			in.AttributeDefinitions,
			types.AttributeDefinition{
				AttributeName: k.Name,
				AttributeType: k.Type,
			},
		)

		in.KeySchema = append(
			in.KeySchema,
			types.KeySchemaElement{
				AttributeName: k.Name,
				KeyType:       k.KeyType,
			},
		)
	}

	_, err := awsx.Do(
		ctx,
		client.CreateTable,
		onRequest,
		in,
	)

	if errors.As(err, new(*types.ResourceInUseException)) {
		return nil
	}

	return err
}

// DeleteTableIfExists deletes a DynamoDB table if it exists.
func DeleteTableIfExists(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	onRequest func(any) []func(*dynamodb.Options),
) error {
	_, err := awsx.Do(
		ctx,
		client.DeleteTable,
		onRequest,
		&dynamodb.DeleteTableInput{
			TableName: aws.String(table),
		},
	)

	if errors.As(err, new(*types.ResourceNotFoundException)) {
		return nil
	}

	return err
}
