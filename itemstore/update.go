package itemstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"
)

// UpdateExpression is a dynamodb SET expression with every attribute name and
// value aliased, so field names that collide with reserved words are safe.
type UpdateExpression struct {
	Expression string
	Names      map[string]*string
	Values     map[string]*dynamodb.AttributeValue
}

// BuildUpdateExpression builds "SET #f0 = :f0, #f1 = :f1, ..." from fields.
// The primary key is skipped and the remaining names are visited in sorted
// order so the same input always yields the same expression.
func BuildUpdateExpression(fields Fields) (*UpdateExpression, error) {
	updates, err := fields.Updates()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	expr := &UpdateExpression{
		Names:  make(map[string]*string, len(names)),
		Values: make(map[string]*dynamodb.AttributeValue, len(names)),
	}

	assignments := make([]string, 0, len(names))
	for i, name := range names {
		namePlaceholder := fmt.Sprintf("#f%d", i)
		valuePlaceholder := fmt.Sprintf(":f%d", i)

		av, err := marshal(toStorable(updates[name]))
		if err != nil {
			return nil, errors.Wrapf(err, "failed marshalling value of field %q", name)
		}

		expr.Names[namePlaceholder] = aws.String(name)
		expr.Values[valuePlaceholder] = av
		assignments = append(assignments, namePlaceholder+" = "+valuePlaceholder)
	}

	expr.Expression = "SET " + strings.Join(assignments, ", ")

	return expr, nil
}
