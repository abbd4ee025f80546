package proxy

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// ContentTypeJSON is the content type of every response built by JSON.
const ContentTypeJSON = "application/json"

// JSON serializes body and wraps it in a response with the given status code
// and a json content type header.
func JSON(statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed marshalling response body")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": ContentTypeJSON,
		},
		Body:            string(b),
		IsBase64Encoded: false,
	}, nil
}
