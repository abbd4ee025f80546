package itemstore

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMockDynamoDBClient struct {
	dynamodbiface.DynamoDBAPI

	pages [][]map[string]*dynamodb.AttributeValue
	item  map[string]*dynamodb.AttributeValue
	attrs map[string]*dynamodb.AttributeValue
	err   error

	scanInput   *dynamodb.ScanInput
	getInput    *dynamodb.GetItemInput
	putInput    *dynamodb.PutItemInput
	updateInput *dynamodb.UpdateItemInput
	deleteInput *dynamodb.DeleteItemInput
}

func (m *recordingMockDynamoDBClient) ScanPagesWithContext(ctx aws.Context, input *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, opts ...request.Option) error {
	m.scanInput = input
	if m.err != nil {
		return m.err
	}

	for i, page := range m.pages {
		if !fn(&dynamodb.ScanOutput{Items: page}, i == len(m.pages)-1) {
			break
		}
	}

	return nil
}

func (m *recordingMockDynamoDBClient) GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	m.getInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &dynamodb.GetItemOutput{Item: m.item}, nil
}

func (m *recordingMockDynamoDBClient) PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *recordingMockDynamoDBClient) UpdateItemWithContext(ctx aws.Context, input *dynamodb.UpdateItemInput, opts ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	m.updateInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &dynamodb.UpdateItemOutput{Attributes: m.attrs}, nil
}

func (m *recordingMockDynamoDBClient) DeleteItemWithContext(ctx aws.Context, input *dynamodb.DeleteItemInput, opts ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	m.deleteInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func stored(id, name string, extra ...string) map[string]*dynamodb.AttributeValue {
	av := map[string]*dynamodb.AttributeValue{
		"id":   {S: aws.String(id)},
		"name": {S: aws.String(name)},
	}
	for i := 0; i+1 < len(extra); i += 2 {
		av[extra[i]] = &dynamodb.AttributeValue{S: aws.String(extra[i+1])}
	}
	return av
}

func TestDynamoStore_ScanAll(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		pages: [][]map[string]*dynamodb.AttributeValue{
			{stored("a1", "widget", "color", "red"), stored("a2", "gadget")},
			{stored("a3", "doohickey")},
		},
	}
	s := NewDynamoStore(m, "t1")

	items, err := s.ScanAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "t1", *m.scanInput.TableName)
	assert.Equal(t, []Item{
		{ID: "a1", Name: "widget"},
		{ID: "a2", Name: "gadget"},
		{ID: "a3", Name: "doohickey"},
	}, items)
}

func TestDynamoStore_ScanAll_empty(t *testing.T) {
	s := NewDynamoStore(&recordingMockDynamoDBClient{}, "t1")

	items, err := s.ScanAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDynamoStore_ScanAll_missingName(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		pages: [][]map[string]*dynamodb.AttributeValue{
			{{"id": {S: aws.String("a1")}}},
		},
	}
	s := NewDynamoStore(m, "t1")

	_, err := s.ScanAll(context.Background())

	assert.True(t, IsMissingKey(err))
}

func TestDynamoStore_ScanAll_untypedName(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		pages: [][]map[string]*dynamodb.AttributeValue{
			{
				{"id": {S: aws.String("a1")}, "name": {N: aws.String("5")}},
				stored("a2", "gadget"),
			},
		},
	}
	s := NewDynamoStore(m, "t1")

	items, err := s.ScanAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Item{
		{ID: "a1", Name: 5.0},
		{ID: "a2", Name: "gadget"},
	}, items)
}

func TestDynamoStore_ScanAll_error(t *testing.T) {
	m := &recordingMockDynamoDBClient{err: errors.New("test fail")}
	s := NewDynamoStore(m, "t1")

	_, err := s.ScanAll(context.Background())

	assert.Error(t, err)
	assert.False(t, IsMissingKey(err))
	assert.Contains(t, err.Error(), "failed scanning t1")
}

func TestDynamoStore_Get(t *testing.T) {
	m := &recordingMockDynamoDBClient{item: stored("a1", "widget", "color", "red")}
	s := NewDynamoStore(m, "t1")

	item, err := s.Get(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, Item{ID: "a1", Name: "widget"}, item)
	assert.Equal(t, "t1", *m.getInput.TableName)
	assert.Equal(t, "a1", *m.getInput.Key["id"].S)
}

func TestDynamoStore_Get_untypedName(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		item: map[string]*dynamodb.AttributeValue{
			"id":   {S: aws.String("a1")},
			"name": {N: aws.String("5")},
		},
	}
	s := NewDynamoStore(m, "t1")

	item, err := s.Get(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, Item{ID: "a1", Name: 5.0}, item)
}

func TestDynamoStore_Get_notFound(t *testing.T) {
	s := NewDynamoStore(&recordingMockDynamoDBClient{}, "t1")

	_, err := s.Get(context.Background(), "nope")

	assert.True(t, IsMissingKey(err))
}

func TestDynamoStore_Get_error(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		err: awserr.New(dynamodb.ErrCodeResourceNotFoundException, "no table", errors.New("test fail")),
	}
	s := NewDynamoStore(m, "t1")

	_, err := s.Get(context.Background(), "a1")

	assert.Error(t, err)
	assert.False(t, IsMissingKey(err))

	aerr, ok := errors.Cause(err).(awserr.Error)
	require.True(t, ok)
	assert.Equal(t, dynamodb.ErrCodeResourceNotFoundException, aerr.Code())
}

func TestDynamoStore_Put(t *testing.T) {
	m := &recordingMockDynamoDBClient{}
	s := NewDynamoStore(m, "t1")

	err := s.Put(context.Background(), Item{ID: "a1", Name: "widget"})

	require.NoError(t, err)
	assert.Equal(t, "t1", *m.putInput.TableName)
	assert.Nil(t, m.putInput.ConditionExpression)
	assert.Len(t, m.putInput.Item, 2)
	assert.Equal(t, "a1", *m.putInput.Item["id"].S)
	assert.Equal(t, "widget", *m.putInput.Item["name"].S)
}

func TestDynamoStore_Put_emptyName(t *testing.T) {
	m := &recordingMockDynamoDBClient{}
	s := NewDynamoStore(m, "t1")

	err := s.Put(context.Background(), Item{ID: "a1", Name: ""})

	require.NoError(t, err)
	require.NotNil(t, m.putInput.Item["name"].S)
	assert.Equal(t, "", *m.putInput.Item["name"].S)
}

func TestDynamoStore_Update(t *testing.T) {
	m := &recordingMockDynamoDBClient{
		attrs: map[string]*dynamodb.AttributeValue{"name": {S: aws.String("gadget")}},
	}
	s := NewDynamoStore(m, "t1")

	updated, err := s.Update(context.Background(), "a1", Fields{"id": "zz", "name": "gadget"})

	require.NoError(t, err)
	assert.Equal(t, Fields{"name": "gadget"}, updated)

	input := m.updateInput
	assert.Equal(t, "t1", *input.TableName)
	assert.Equal(t, "a1", *input.Key["id"].S)
	assert.Equal(t, "SET #f0 = :f0", *input.UpdateExpression)
	assert.Equal(t, "name", *input.ExpressionAttributeNames["#f0"])
	assert.Equal(t, "gadget", *input.ExpressionAttributeValues[":f0"].S)
	assert.Equal(t, dynamodb.ReturnValueUpdatedNew, *input.ReturnValues)
}

func TestDynamoStore_Update_noValidFields(t *testing.T) {
	m := &recordingMockDynamoDBClient{}
	s := NewDynamoStore(m, "t1")

	_, err := s.Update(context.Background(), "a1", Fields{"id": "a1"})

	assert.ErrorIs(t, err, ErrNoValidFields)
	assert.Nil(t, m.updateInput)
}

func TestDynamoStore_Delete(t *testing.T) {
	m := &recordingMockDynamoDBClient{}
	s := NewDynamoStore(m, "t1")

	err := s.Delete(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "t1", *m.deleteInput.TableName)
	assert.Equal(t, "a1", *m.deleteInput.Key["id"].S)
	assert.Nil(t, m.deleteInput.ConditionExpression)
}

func TestDynamoStore_Delete_error(t *testing.T) {
	m := &recordingMockDynamoDBClient{err: errors.New("test fail")}
	s := NewDynamoStore(m, "t1")

	err := s.Delete(context.Background(), "a1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed delete a1 from t1")
}
