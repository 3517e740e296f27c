package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
)

// Key attribute names of the DynamoDB tables.
const (
	CatalogKeyAttribute = "pizzaId"
	OrdersKeyAttribute  = "orderId"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoTable
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// NewDynamoClient builds a DynamoDB client from the default AWS credential chain.
// A non-empty endpoint points the client at DynamoDB Local or LocalStack.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// DynamoTable implements Table on a DynamoDB table with a single string hash key.
type DynamoTable[T Record] struct {
	client  DynamoAPI
	table   string
	keyAttr string
}

// NewDynamoTable creates a table backed by DynamoDB
func NewDynamoTable[T Record](client DynamoAPI, table, keyAttr string) *DynamoTable[T] {
	return &DynamoTable[T]{
		client:  client,
		table:   table,
		keyAttr: keyAttr,
	}
}

func (t *DynamoTable[T]) key(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.keyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

// Get returns a record by its key
func (t *DynamoTable[T]) Get(ctx context.Context, key string) (T, error) {
	var rec T

	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key:       t.key(key),
	})
	if err != nil {
		return rec, t.wrap("get item", err)
	}
	if out.Item == nil {
		return rec, ErrNotFound
	}

	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return rec, fmt.Errorf("decode %s item: %w", t.table, err)
	}
	return rec, nil
}

// Put stores rec under its key, replacing any previous version
func (t *DynamoTable[T]) Put(ctx context.Context, rec T) error {
	return t.put(ctx, rec, false)
}

// Insert stores rec with an attribute_not_exists condition on the key
func (t *DynamoTable[T]) Insert(ctx context.Context, rec T) error {
	return t.put(ctx, rec, true)
}

func (t *DynamoTable[T]) put(ctx context.Context, rec T, createOnly bool) error {
	if rec.Key() == "" {
		return ErrMissingKey
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("encode %s item: %w", t.table, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.table),
		Item:      item,
	}
	if createOnly {
		cond := expression.AttributeNotExists(expression.Name(t.keyAttr))
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return fmt.Errorf("build insert condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := t.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if createOnly && errors.As(err, &ccf) {
			return ErrAlreadyExists
		}
		return t.wrap("put item", err)
	}
	return nil
}

// Delete removes the record under key. The delete is conditional so a missing
// record surfaces as ErrNotFound instead of a silent no-op.
func (t *DynamoTable[T]) Delete(ctx context.Context, key string) error {
	cond := expression.AttributeExists(expression.Name(t.keyAttr))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build delete condition: %w", err)
	}

	_, err = t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(t.table),
		Key:                       t.key(key),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return t.wrap("delete item", err)
	}
	return nil
}

// Scan reads every page of the table with f applied server-side
func (t *DynamoTable[T]) Scan(ctx context.Context, f query.Filter) ([]T, error) {
	if f.IsKeyLookup() {
		return scanByKey[T](ctx, t, f.Key)
	}

	input := &dynamodb.ScanInput{TableName: aws.String(t.table)}
	if len(f.Conditions) > 0 {
		expr, err := BuildFilterExpression(f)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	result := make([]T, 0)
	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, t.wrap("scan", err)
		}

		var recs []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, fmt.Errorf("decode %s items: %w", t.table, err)
		}
		result = append(result, recs...)
	}

	sortByKey(result)
	return result, nil
}

// Ping checks that the table exists and is reachable
func (t *DynamoTable[T]) Ping(ctx context.Context) error {
	_, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(t.table),
	})
	if err != nil {
		return t.wrap("describe table", err)
	}
	return nil
}

// wrap tags a missing table with ErrTableNotFound while keeping the SDK error.
func (t *DynamoTable[T]) wrap(op string, err error) error {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return fmt.Errorf("%s %s: %w: %w", op, t.table, ErrTableNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, t.table, err)
}

// BuildFilterExpression translates a scan filter into a DynamoDB filter expression.
func BuildFilterExpression(f query.Filter) (expression.Expression, error) {
	if len(f.Conditions) == 0 {
		return expression.Expression{}, errors.New("filter has no conditions")
	}

	conds := make([]expression.ConditionBuilder, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		cond, err := conditionFor(c)
		if err != nil {
			return expression.Expression{}, err
		}
		conds = append(conds, cond)
	}

	filter := conds[0]
	if len(conds) > 1 {
		filter = expression.And(conds[0], conds[1], conds[2:]...)
	}

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build filter expression: %w", err)
	}
	return expr, nil
}

func conditionFor(c query.Condition) (expression.ConditionBuilder, error) {
	name := expression.Name(c.Attribute)

	switch c.Op {
	case query.OpEquals:
		return name.Equal(expression.Value(c.Value)), nil
	case query.OpBeginsWith, query.OpContains:
		s, ok := c.Value.(string)
		if !ok {
			return expression.ConditionBuilder{}, fmt.Errorf("%s on %s needs a string, got %T", c.Op, c.Attribute, c.Value)
		}
		if c.Op == query.OpBeginsWith {
			return name.BeginsWith(s), nil
		}
		return name.Contains(s), nil
	}
	return expression.ConditionBuilder{}, fmt.Errorf("unsupported operator %s", c.Op)
}

var (
	_ Table[models.CatalogItem] = (*DynamoTable[models.CatalogItem])(nil)
	_ Table[models.Order]       = (*DynamoTable[models.Order])(nil)
)
