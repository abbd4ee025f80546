package proxy

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteHandler defines the function interface the route uses to execute a
// request when the route is matched.
type RouteHandler func(*RouteContext) (events.APIGatewayProxyResponse, error)

// Route defines a HttpMethod and path template that together form the route
// key matched against an incoming request. When a match occurs the configured
// handler is called.
type Route struct {
	Method  HttpMethod
	Path    string
	Handler RouteHandler
}

// NewRoute returns a Route for the specified method, path template and
// handler. The template is kept verbatim, e.g. "/items/{id}".
func NewRoute(method HttpMethod, path string, handler RouteHandler) (*Route, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path template '%s' must start with '/'", path)
	}

	if strings.ContainsAny(path, " \t\n") {
		return nil, fmt.Errorf("path template '%s' must not contain whitespace", path)
	}

	if handler == nil {
		return nil, fmt.Errorf("route '%s %s' has no handler", method, path)
	}

	route := &Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	}

	return route, nil
}

// Key returns the route key api gateway reports for this route.
func (route *Route) Key() string {
	return fmt.Sprintf("%s %s", route.Method, route.Path)
}

// String returns a string representation of this route.
func (route *Route) String() string {
	return route.Key()
}

// IsMatch returns true if the request's route key is exactly this route's key.
// No normalization is applied: case, trailing slashes and whitespace all
// count.
func (route *Route) IsMatch(request events.APIGatewayV2HTTPRequest) bool {
	return request.RouteKey == route.Key()
}

// Context constructs a RouteContext for the route for passing to the handler.
func (route *Route) Context(ctx context.Context, request events.APIGatewayV2HTTPRequest) (*RouteContext, error) {
	if !route.IsMatch(request) {
		return nil, fmt.Errorf("route key '%s' does not match route %v", request.RouteKey, route)
	}

	params := make(map[string]string, len(request.PathParameters))
	for k, v := range request.PathParameters {
		params[k] = v
	}

	return &RouteContext{
		Context: ctx,
		Request: request,
		Params:  params,
	}, nil
}

// Follow extracts the route context for the given request and executes the
// route's handler function.
func (route *Route) Follow(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	rctx, err := route.Context(ctx, request)

	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrapf(err, "failed getting context for route %v", route)
	}

	return route.Handler(rctx)
}
