package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB API. It honours keys,
// conditional deletes and scan pagination but ignores filter expressions, so
// tests that need filtering assert on the request instead.
type fakeDynamo struct {
	mu        sync.Mutex
	keyAttr   string
	items     map[string]map[string]types.AttributeValue
	pageSize  int
	noTable   bool
	failWith  error
	lastScan  *dynamodb.ScanInput
	scanCalls int
}

func newFakeDynamo(keyAttr string) *fakeDynamo {
	return &fakeDynamo{
		keyAttr:  keyAttr,
		items:    make(map[string]map[string]types.AttributeValue),
		pageSize: 2,
	}
}

func (f *fakeDynamo) check() error {
	if f.noTable {
		return &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return f.failWith
}

func (f *fakeDynamo) keyOf(key map[string]types.AttributeValue) string {
	if s, ok := key[f.keyAttr].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: f.items[f.keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	key := f.keyOf(in.Item)
	if _, ok := f.items[key]; ok && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	key := f.keyOf(in.Key)
	if _, ok := f.items[key]; !ok && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	f.lastScan = in
	f.scanCalls++

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		last := f.keyOf(in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, last) + 1
	}
	end := min(start+f.pageSize, len(keys))

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			f.keyAttr: &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func TestDynamoTable(t *testing.T) {
	runTableContract(t, false, func(t *testing.T) Table[models.Order] {
		return NewDynamoTable[models.Order](newFakeDynamo(OrdersKeyAttribute), OrdersTable, OrdersKeyAttribute)
	})
}

func TestDynamoTable_StoresUnderKeyAttribute(t *testing.T) {
	fake := newFakeDynamo(CatalogKeyAttribute)
	table := NewDynamoTable[models.CatalogItem](fake, CatalogTable, CatalogKeyAttribute)

	item := models.CatalogItem{ID: "abc", Name: "Margherita", Price: 9.5, Ingredients: []string{"basil"}}
	require.NoError(t, table.Put(context.Background(), item))

	stored := fake.items["abc"]
	require.NotNil(t, stored)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "abc"}, stored[CatalogKeyAttribute])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Margherita"}, stored["name"])

	got, err := table.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestDynamoTable_ScanPaginatesAndSendsFilter(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo(OrdersKeyAttribute)
	fake.pageSize = 1
	table := NewDynamoTable[models.Order](fake, OrdersTable, OrdersKeyAttribute)
	for _, o := range testOrders() {
		require.NoError(t, table.Put(ctx, o))
	}

	f, err := query.Compile("", map[query.Field]string{query.FieldAddress: "Khreshchatyk"})
	require.NoError(t, err)

	got, err := table.Scan(ctx, f)
	require.NoError(t, err)
	// The fake ignores the filter, so every page comes back.
	assert.Equal(t, []string{"100", "200", "300"}, keys(got))
	assert.Equal(t, 3, fake.scanCalls)

	require.NotNil(t, fake.lastScan.FilterExpression)
	assert.Contains(t, *fake.lastScan.FilterExpression, "contains")
	assert.Contains(t, nameValues(fake.lastScan.ExpressionAttributeNames), models.AttrAddress)
}

func TestDynamoTable_ScanWithoutConditionsHasNoFilter(t *testing.T) {
	fake := newFakeDynamo(OrdersKeyAttribute)
	table := NewDynamoTable[models.Order](fake, OrdersTable, OrdersKeyAttribute)

	got, err := table.Scan(context.Background(), query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, fake.lastScan.FilterExpression)
	assert.Nil(t, fake.lastScan.ExpressionAttributeValues)
}

func TestDynamoTable_MissingTable(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo(OrdersKeyAttribute)
	fake.noTable = true
	table := NewDynamoTable[models.Order](fake, OrdersTable, OrdersKeyAttribute)

	_, err := table.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = table.Scan(ctx, query.Filter{})
	assert.ErrorIs(t, err, ErrTableNotFound)

	assert.ErrorIs(t, table.Put(ctx, testOrders()[0]), ErrTableNotFound)
	assert.ErrorIs(t, table.Delete(ctx, "1"), ErrTableNotFound)
	assert.ErrorIs(t, table.Ping(ctx), ErrTableNotFound)

	var rnf *types.ResourceNotFoundException
	assert.True(t, errors.As(err, &rnf), "the SDK error must stay reachable")
}

func TestDynamoTable_OtherFailuresAreNotTableErrors(t *testing.T) {
	fake := newFakeDynamo(OrdersKeyAttribute)
	fake.failWith = errors.New("throttled")
	table := NewDynamoTable[models.Order](fake, OrdersTable, OrdersKeyAttribute)

	_, err := table.Get(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTableNotFound)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBuildFilterExpression(t *testing.T) {
	f, err := query.Compile("", map[query.Field]string{
		query.FieldDate:          "2026-01-19",
		query.FieldCustomerName:  "Ivan",
		query.FieldCatalogItemID: "3",
		query.FieldStatus:        "pending",
	})
	require.NoError(t, err)

	expr, err := BuildFilterExpression(f)
	require.NoError(t, err)

	filter := *expr.Filter()
	assert.Contains(t, filter, "begins_with")
	assert.Contains(t, filter, "contains")
	assert.Equal(t, 3, strings.Count(filter, "AND"))

	assert.ElementsMatch(t,
		[]string{models.AttrCreatedAt, models.AttrCustomerName, models.AttrCatalogItemID, models.AttrStatus},
		nameValues(expr.Names()))

	var strs, nums []string
	for _, v := range expr.Values() {
		switch av := v.(type) {
		case *types.AttributeValueMemberS:
			strs = append(strs, av.Value)
		case *types.AttributeValueMemberN:
			nums = append(nums, av.Value)
		}
	}
	assert.ElementsMatch(t, []string{"2026-01-19", "Ivan", "pending"}, strs)
	assert.Equal(t, []string{"3"}, nums)
}

func TestBuildFilterExpression_Empty(t *testing.T) {
	_, err := BuildFilterExpression(query.Filter{})
	assert.Error(t, err)
}

func nameValues(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, v := range names {
		out = append(out, v)
	}
	return out
}
