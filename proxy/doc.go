// Package proxy provides utilities for writing aws lambda functions that act as
// aws api gateway v2 (http) integrations. Requests are dispatched on their
// route key ("METHOD /path/{template}") exactly as api gateway reports it and
// the entire request/response is processed through the lambda via
// events.APIGatewayV2HTTPRequest and events.APIGatewayProxyResponse.
//
// The router is designed to be as simplistic as possible and is not feature
// rich.
package proxy
