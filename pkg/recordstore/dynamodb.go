package recordstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/shashiranjanraj/shopfront/pkg/awsclient"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// DynamoAPI is the subset of *dynamodb.Client the driver calls.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps items in DynamoDB tables.
type DynamoStore struct {
	client DynamoAPI
	schema Schema
}

// NewDynamoStore builds a client from the shared AWS config.
func NewDynamoStore(ctx context.Context, schema Schema) (*DynamoStore, error) {
	cfg, err := awsclient.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("recordstore/dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if ep := awsclient.Endpoint(); ep != nil {
			o.BaseEndpoint = ep
		}
	})
	return NewDynamoStoreWithClient(client, schema), nil
}

func NewDynamoStoreWithClient(client DynamoAPI, schema Schema) *DynamoStore {
	return &DynamoStore{client: client, schema: schema}
}

func (d *DynamoStore) Get(ctx context.Context, table, key string, dest any) (found bool, err error) {
	defer metrics.ObserveStore("dynamodb", "get", table, time.Now(), &err)

	attr, err := d.schema.KeyAttr(table)
	if err != nil {
		return false, err
	}

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			attr: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return false, fmt.Errorf("recordstore/dynamodb: get %s: %w", table, err)
	}
	if len(out.Item) == 0 {
		return false, nil
	}

	if err = attributevalue.UnmarshalMap(out.Item, dest); err != nil {
		return false, fmt.Errorf("recordstore/dynamodb: get %s: %w", table, err)
	}
	return true, nil
}

func (d *DynamoStore) Put(ctx context.Context, table string, item any) (err error) {
	defer metrics.ObserveStore("dynamodb", "put", table, time.Now(), &err)

	attr, err := d.schema.KeyAttr(table)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("recordstore/dynamodb: encode item for %s: %w", table, err)
	}
	if _, ok := av[attr]; !ok {
		return fmt.Errorf("recordstore/dynamodb: item for %s has no %q", table, attr)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("recordstore/dynamodb: put %s: %w", table, err)
	}
	return nil
}

// Scan follows LastEvaluatedKey until the table is exhausted.
func (d *DynamoStore) Scan(ctx context.Context, table string, dest any) (err error) {
	defer metrics.ObserveStore("dynamodb", "scan", table, time.Now(), &err)

	if _, err = d.schema.KeyAttr(table); err != nil {
		return err
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("recordstore/dynamodb: scan %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}

	if err = attributevalue.UnmarshalListOfMaps(items, dest); err != nil {
		return fmt.Errorf("recordstore/dynamodb: scan %s: %w", table, err)
	}
	return nil
}
