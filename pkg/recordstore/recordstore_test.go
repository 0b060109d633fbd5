package recordstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

type item struct {
	ID    string  `json:"id" dynamodbav:"id"`
	Name  string  `json:"name" dynamodbav:"name"`
	Price float64 `json:"price" dynamodbav:"price"`
}

var schema = recordstore.Schema{"items": "id"}

func newSQLStore(t *testing.T) *recordstore.SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	s := recordstore.NewSQLStore(db, schema)
	require.NoError(t, s.Migrate())
	return s
}

func stores(t *testing.T) map[string]recordstore.Store {
	return map[string]recordstore.Store{
		"memory": recordstore.NewMemoryStore(schema),
		"sql":    newSQLStore(t),
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "items", item{ID: "a", Name: "Apple", Price: 1.5}))

			var got item
			found, err := s.Get(ctx, "items", "a", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, item{ID: "a", Name: "Apple", Price: 1.5}, got)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var got item
			found, err := s.Get(context.Background(), "items", "nope", &got)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Empty(t, got.ID)
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "items", item{ID: "a", Name: "first"}))
			require.NoError(t, s.Put(ctx, "items", item{ID: "a", Name: "second"}))

			var all []item
			require.NoError(t, s.Scan(ctx, "items", &all))
			require.Len(t, all, 1)
			assert.Equal(t, "second", all[0].Name)
		})
	}
}

func TestStore_ScanEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var all []item
			require.NoError(t, s.Scan(context.Background(), "items", &all))
			assert.Empty(t, all)
		})
	}
}

func TestStore_RejectsUnknownTableAndMissingKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, s.Put(ctx, "orders", item{ID: "a"}))
			assert.Error(t, s.Put(ctx, "items", item{Name: "no id"}))
		})
	}
}

func TestMemoryStore_ScanKeepsInsertionOrder(t *testing.T) {
	s := recordstore.NewMemoryStore(schema)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(ctx, "items", item{ID: id}))
	}

	var all []item
	require.NoError(t, s.Scan(ctx, "items", &all))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 3, s.Len("items"))
}

// fakeDynamo serves GetItem/PutItem/Scan from a map and pages scans two at a time.
type fakeDynamo struct {
	items   []map[string]types.AttributeValue
	scanErr error
	scans   int
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	want := in.Key["id"].(*types.AttributeValueMemberS).Value
	for _, it := range f.items {
		if it["id"].(*types.AttributeValueMemberS).Value == want {
			return &dynamodb.GetItemOutput{Item: it}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	start := 0
	if in.ExclusiveStartKey != nil {
		start = 2
	}
	end := start + 2
	if end >= len(f.items) {
		return &dynamodb.ScanOutput{Items: f.items[start:]}, nil
	}
	return &dynamodb.ScanOutput{
		Items:            f.items[start:end],
		LastEvaluatedKey: f.items[end-1],
	}, nil
}

func TestDynamoStore_PutGetScan(t *testing.T) {
	fake := &fakeDynamo{}
	s := recordstore.NewDynamoStoreWithClient(fake, schema)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, "items", item{ID: id, Name: "n-" + id, Price: 2}))
	}

	var got item
	found, err := s.Get(ctx, "items", "b", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "n-b", got.Name)

	found, err = s.Get(ctx, "items", "zzz", &got)
	require.NoError(t, err)
	assert.False(t, found)

	var all []item
	require.NoError(t, s.Scan(ctx, "items", &all))
	assert.Len(t, all, 3)
	assert.Equal(t, 2, fake.scans, "scan should follow LastEvaluatedKey")
}

func TestDynamoStore_ScanError(t *testing.T) {
	s := recordstore.NewDynamoStoreWithClient(&fakeDynamo{scanErr: errors.New("throttled")}, schema)

	var all []item
	err := s.Scan(context.Background(), "items", &all)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
