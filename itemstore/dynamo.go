package itemstore

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

// DynamoStore is a Store backed by a single dynamodb table whose hash key is
// the string attribute "id".
type DynamoStore struct {
	Table string

	svc dynamodbiface.DynamoDBAPI
}

// NewDynamoStore returns a store for table using the given dynamodb client.
func NewDynamoStore(svc dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{Table: table, svc: svc}
}

// NewDynamoStoreFromSession builds the dynamodb client from session s. An
// empty endpoint keeps the default regional endpoint; any other value points
// the client at it, e.g. a dynamodb-local container.
func NewDynamoStoreFromSession(s *session.Session, table string, endpoint string) *DynamoStore {
	cfg := aws.NewConfig()
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}

	return NewDynamoStore(dynamodb.New(s, cfg), table)
}

func (store *DynamoStore) key(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		KeyAttribute: {
			S: aws.String(id),
		},
	}
}

// ScanAll walks every page of the table and projects each item to {id, name}.
func (store *DynamoStore) ScanAll(ctx context.Context) ([]Item, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(store.Table),
	}

	items := []Item{}
	var projectErr error

	err := store.svc.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, av := range page.Items {
			item, err := projectAttributes(av)
			if err != nil {
				projectErr = err
				return false
			}
			items = append(items, item)
		}
		return true
	})

	if err != nil {
		return nil, errors.Wrapf(err, "failed scanning %v", store.Table)
	}

	if projectErr != nil {
		return nil, projectErr
	}

	return items, nil
}

// Get fetches a single item by id.
func (store *DynamoStore) Get(ctx context.Context, id string) (Item, error) {
	out, err := store.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(store.Table),
		Key:       store.key(id),
	})

	if err != nil {
		return Item{}, errors.Wrapf(err, "failed get %v from %v", id, store.Table)
	}

	if len(out.Item) == 0 {
		return Item{}, errors.Wrapf(ErrMissingKey, "item %v not found in %v", id, store.Table)
	}

	return projectAttributes(out.Item)
}

// Put writes the item unconditionally.
func (store *DynamoStore) Put(ctx context.Context, item Item) error {
	av, err := marshal(item)
	if err != nil {
		return errors.Wrapf(err, "failed marshalling item %v", item.ID)
	}

	_, err = store.svc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(store.Table),
		Item:      av.M,
	})

	if err != nil {
		return errors.Wrapf(err, "failed put %v to %v", item.ID, store.Table)
	}

	return nil
}

// Update issues a single UpdateItem restricted to the given fields.
func (store *DynamoStore) Update(ctx context.Context, id string, fields Fields) (Fields, error) {
	expr, err := BuildUpdateExpression(fields)
	if err != nil {
		return nil, err
	}

	out, err := store.svc.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(store.Table),
		Key:                       store.key(id),
		UpdateExpression:          aws.String(expr.Expression),
		ExpressionAttributeNames:  expr.Names,
		ExpressionAttributeValues: expr.Values,
		ReturnValues:              aws.String(dynamodb.ReturnValueUpdatedNew),
	})

	if err != nil {
		return nil, errors.Wrapf(err, "failed update %v in %v", id, store.Table)
	}

	updated := Fields{}
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &updated); err != nil {
		return nil, errors.Wrapf(err, "failed unmarshalling updated attributes of %v", id)
	}

	return updated, nil
}

// Delete removes the item unconditionally.
func (store *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := store.svc.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(store.Table),
		Key:       store.key(id),
	})

	if err != nil {
		return errors.Wrapf(err, "failed delete %v from %v", id, store.Table)
	}

	return nil
}

// projectAttributes unmarshals a raw dynamodb item and reduces it to {id, name}.
func projectAttributes(av map[string]*dynamodb.AttributeValue) (Item, error) {
	doc := Fields{}
	if err := dynamodbattribute.UnmarshalMap(av, &doc); err != nil {
		return Item{}, errors.Wrap(err, "failed unmarshalling item")
	}

	return doc.Project()
}
