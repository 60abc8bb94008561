package dynamostore

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dogmatiq/filekit/driver/aws/internal/awsx"
	"github.com/dogmatiq/filekit/driver/aws/internal/dynamox"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xsync"
)

// store is an implementation of [filestore.BinaryStore] that persists each
// entry as an item in a DynamoDB table.
type store struct {
	Client    *dynamodb.Client
	Table     string
	OnRequest func(any) []func(*dynamodb.Options)

	createTableOnce xsync.SucceedOnce
}

// New returns a [filestore.BinaryStore] that uses the given DynamoDB client
// to persist each entry as an item in the given table.
//
// The table is created when the store is first used.
func New(
	client *dynamodb.Client,
	table string,
	options ...Option,
) filestore.BinaryStore {
	if table == "" {
		panic("table name must not be empty")
	}

	s := &store{
		Client: client,
		Table:  table,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [New].
type Option func(*store)

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each DynamoDB API request, fn is passed a pointer to the input struct,
// e.g. [dynamodb.GetItemInput], which it may modify in-place. It may be called
// with any DynamoDB request type. The types of requests used may change in any
// version without notice.
//
// Any functions returned by fn will be applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*dynamodb.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// List returns the keys of the entries in the store, in no particular order.
func (s *store) List(ctx context.Context) ([]string, error) {
	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return nil, err
	}

	var keys []string

	if err := dynamox.Scan(
		ctx,
		s.Client,
		s.OnRequest,
		&dynamodb.ScanInput{
			TableName:            aws.String(s.Table),
			ProjectionExpression: aws.String(`#K`),
			ExpressionAttributeNames: map[string]string{
				"#K": keyAttr,
			},
		},
		func(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
			k, err := dynamox.AttrAs[*types.AttributeValueMemberS](item, keyAttr)
			if err != nil {
				return false, err
			}

			keys = append(keys, k.Value)

			return true, nil
		},
	); err != nil {
		return nil, err
	}

	return keys, nil
}

// Load returns the value associated with the given key.
func (s *store) Load(ctx context.Context, k string) ([]byte, error) {
	if err := filestore.ValidateKey(k); err != nil {
		return nil, err
	}

	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return nil, err
	}

	out, err := awsx.Do(
		ctx,
		s.Client.GetItem,
		s.OnRequest,
		&dynamodb.GetItemInput{
			TableName: aws.String(s.Table),
			Key: map[string]types.AttributeValue{
				keyAttr: &types.AttributeValueMemberS{Value: k},
			},
			ProjectionExpression: aws.String(`#V`),
			ExpressionAttributeNames: map[string]string{
				"#V": valueAttr,
			},
		},
	)
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, filestore.KeyNotFoundError{Key: k}
	}

	v, err := dynamox.AttrAs[*types.AttributeValueMemberB](out.Item, valueAttr)
	if err != nil {
		return nil, err
	}

	return v.Value, nil
}

// Store associates a value with the given key, replacing any existing value.
func (s *store) Store(ctx context.Context, k string, v []byte) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return err
	}

	_, err := awsx.Do(
		ctx,
		s.Client.PutItem,
		s.OnRequest,
		&dynamodb.PutItemInput{
			TableName: aws.String(s.Table),
			Item: map[string]types.AttributeValue{
				keyAttr:   &types.AttributeValueMemberS{Value: k},
				valueAttr: &types.AttributeValueMemberB{Value: v},
			},
		},
	)

	return err
}

// LoadAll returns every entry in the store, in no particular order.
func (s *store) LoadAll(ctx context.Context) ([]filestore.BinaryEntry, error) {
	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return nil, err
	}

	var entries []filestore.BinaryEntry

	if err := dynamox.Scan(
		ctx,
		s.Client,
		s.OnRequest,
		&dynamodb.ScanInput{
			TableName:            aws.String(s.Table),
			ProjectionExpression: aws.String(`#K, #V`),
			ExpressionAttributeNames: map[string]string{
				"#K": keyAttr,
				"#V": valueAttr,
			},
		},
		func(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
			k, err := dynamox.AttrAs[*types.AttributeValueMemberS](item, keyAttr)
			if err != nil {
				return false, err
			}

			v, err := dynamox.AttrAs[*types.AttributeValueMemberB](item, valueAttr)
			if err != nil {
				return false, err
			}

			entries = append(
				entries,
				filestore.BinaryEntry{
					Key:   k.Value,
					Value: v.Value,
				},
			)

			return true, nil
		},
	); err != nil {
		return nil, err
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

	if err := s.createTableOnce.Do(ctx, s.createTable); err != nil {
		return err
	}

	if _, err := awsx.Do(
		ctx,
		s.Client.DeleteItem,
		s.OnRequest,
		&dynamodb.DeleteItemInput{
			TableName: aws.String(s.Table),
			Key: map[string]types.AttributeValue{
				keyAttr: &types.AttributeValueMemberS{Value: k},
			},
			ConditionExpression: aws.String(`attribute_exists(#K)`),
			ExpressionAttributeNames: map[string]string{
				"#K": keyAttr,
			},
		},
	); err != nil {
		if errors.As(err, new(*types.ConditionalCheckFailedException)) {
			return filestore.KeyNotFoundError{Key: k, Cause: err}
		}
		return err
	}

	return nil
}
