// Package devserver serves a lambda api gateway v2 handler over plain http so
// it can be exercised locally. Each request is translated into the event api
// gateway would deliver, including the route key of the matched template.
package devserver

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in and out of the server.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Invoker is anything that handles api gateway v2 events, e.g. handler.Handler.
type Invoker interface {
	Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error)
}

// Route is a method and api gateway style path template such as "/items/{id}".
type Route struct {
	Method string
	Path   string
}

// NewEngine returns a gin engine serving routes through invoker. Requests
// that match no route are still forwarded, with the raw path as template, so
// the invoker decides how unknown routes are answered.
func NewEngine(invoker Invoker, routes []Route, logger logrus.FieldLogger) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	engine.Use(gin.Recovery(), requestID(), requestLogger(logger))

	forward := forwarder(invoker, logger)
	for _, route := range routes {
		engine.Handle(route.Method, ginPath(route.Path), forward)
	}
	engine.NoRoute(forward)

	return engine
}

// ginPath converts "/items/{id}" into gin's "/items/:id".
func ginPath(template string) string {
	segments := strings.Split(template, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segments[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		}
	}
	return strings.Join(segments, "/")
}

// templatePath converts gin's "/items/:id" back into "/items/{id}".
func templatePath(full string) string {
	segments := strings.Split(full, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = "{" + strings.TrimPrefix(s, ":") + "}"
		}
	}
	return strings.Join(segments, "/")
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	}
}

func forwarder(invoker Invoker, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := Event(c)
		if err != nil {
			logger.WithError(err).Error("failed building event")
			c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request"})
			return
		}

		response, err := invoker.Handle(c.Request.Context(), event)
		if err != nil {
			logger.WithError(err).WithField("route_key", event.RouteKey).Error("handler failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}

		if err := writeResponse(c, response); err != nil {
			logger.WithError(err).Error("failed writing response")
			c.JSON(http.StatusBadGateway, gin.H{"message": "Bad Gateway"})
		}
	}
}

// Event builds the api gateway v2 event for the request in c.
func Event(c *gin.Context) (events.APIGatewayV2HTTPRequest, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return events.APIGatewayV2HTTPRequest{}, errors.Wrap(err, "failed reading request body")
	}

	template := c.Request.URL.Path
	if full := c.FullPath(); full != "" {
		template = templatePath(full)
	}

	var params map[string]string
	if len(c.Params) > 0 {
		params = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	var query map[string]string
	if q := c.Request.URL.Query(); len(q) > 0 {
		query = make(map[string]string, len(q))
		for k, v := range q {
			query[k] = strings.Join(v, ",")
		}
	}

	event := events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              c.Request.Method + " " + template,
		RawPath:               c.Request.URL.Path,
		RawQueryString:        c.Request.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: query,
		PathParameters:        params,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:  c.Request.Method + " " + template,
			RequestID: c.GetString(requestIDKey),
			TimeEpoch: time.Now().UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    c.Request.Method,
				Path:      c.Request.URL.Path,
				Protocol:  c.Request.Proto,
				SourceIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			},
		},
	}

	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	return event, nil
}

func writeResponse(c *gin.Context, response events.APIGatewayProxyResponse) error {
	for k, v := range response.Headers {
		c.Header(k, v)
	}
	for k, values := range response.MultiValueHeaders {
		for _, v := range values {
			c.Writer.Header().Add(k, v)
		}
	}

	body := []byte(response.Body)
	if response.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			return errors.Wrap(err, "failed decoding response body")
		}
		body = decoded
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	c.Status(status)
	_, err := c.Writer.Write(body)

	return err
}
