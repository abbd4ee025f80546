package itemstore

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/pkg/errors"
)

// KeyAttribute is the name of the table's primary key.
const KeyAttribute = "id"

// NameAttribute is the only non-key attribute exposed by reads and creates.
const NameAttribute = "name"

// Item is the projection of a stored document returned by reads. Name holds
// whatever value is stored, since updates may write any type to it.
type Item struct {
	ID   string      `json:"id" dynamodbav:"id"`
	Name interface{} `json:"name" dynamodbav:"name"`
}

// Fields is a schema-less document: field name to decoded JSON value. Values
// may be strings, json.Number, bools, nil, nested Fields-like maps or slices.
type Fields map[string]interface{}

// DecodeFields parses body as a JSON object. Numbers are kept as json.Number
// so they reach the store without losing precision.
func DecodeFields(body string) (Fields, error) {
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()

	fields := Fields{}
	if err := dec.Decode(&fields); err != nil {
		return nil, errors.Wrap(err, "failed decoding request body")
	}

	if fields == nil {
		return nil, errors.New("failed decoding request body: not a JSON object")
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("failed decoding request body: trailing data after object")
	}

	return fields, nil
}

// Updates returns a copy of the fields without the primary key. It fails with
// ErrNoValidFields when nothing is left to update.
func (f Fields) Updates() (Fields, error) {
	updates := Fields{}
	for name, value := range f {
		if name == KeyAttribute {
			continue
		}
		updates[name] = value
	}

	if len(updates) == 0 {
		return nil, ErrNoValidFields
	}

	return updates, nil
}

// Project reduces a stored document to its {id, name} pair. Only an absent
// attribute fails, with ErrMissingKey. The name is passed through as stored.
func (f Fields) Project() (Item, error) {
	id, err := f.attribute(KeyAttribute)
	if err != nil {
		return Item{}, err
	}

	name, err := f.attribute(NameAttribute)
	if err != nil {
		return Item{}, err
	}

	key, ok := id.(string)
	if !ok {
		return Item{}, errors.Errorf("item key %q is %T, expected a string", KeyAttribute, id)
	}

	return Item{ID: key, Name: name}, nil
}

func (f Fields) attribute(attr string) (interface{}, error) {
	v, ok := f[attr]
	if !ok {
		return nil, errors.Wrapf(ErrMissingKey, "item has no %q attribute", attr)
	}

	return v, nil
}

// marshal encodes v keeping empty strings as strings; the default encoder
// turns them into NULL.
func marshal(v interface{}) (*dynamodb.AttributeValue, error) {
	enc := dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
		e.NullEmptyString = false
	})

	return enc.Encode(v)
}

// toStorable converts decoded JSON values into values dynamodbattribute
// encodes faithfully. json.Number would otherwise be written as a string.
func toStorable(v interface{}) interface{} {
	switch tv := v.(type) {
	case json.Number:
		return dynamodbattribute.Number(tv.String())
	case map[string]interface{}:
		out := make(map[string]interface{}, len(tv))
		for k, inner := range tv {
			out[k] = toStorable(inner)
		}
		return out
	case Fields:
		return toStorable(map[string]interface{}(tv))
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, inner := range tv {
			out[i] = toStorable(inner)
		}
		return out
	default:
		return v
	}
}
