// Package handler implements the items api: five routes under /items that
// map onto an itemstore.Store, with every response serialized as json.
//
// Failures in the itemstore.ErrMissingKey class become a 400 response naming
// the route key. Any other failure is returned to the lambda runtime.
package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/itemcrud/itemstore"
	"github.com/prognoshealth/itemcrud/lambdautils"
	"github.com/prognoshealth/itemcrud/proxy"
)

// BasePath is the collection path every route hangs off.
const BasePath = "/items"

// Handler dispatches api gateway v2 requests to item operations. It holds no
// per-request state and is safe to reuse across invocations.
type Handler struct {
	store    itemstore.Store
	logger   logrus.FieldLogger
	router   *proxy.Router
	validate *validator.Validate
}

// New builds a Handler on top of store. A nil logger discards log output.
func New(store itemstore.Store, logger logrus.FieldLogger) (*Handler, error) {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}

	h := &Handler{
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}

	router := &proxy.Router{}
	router.DELETE(BasePath+"/{id}", h.deleteItem)
	router.GET(BasePath+"/{id}", h.getItem)
	router.GET(BasePath, h.listItems)
	router.PUT(BasePath, h.createItem)
	router.PUT(BasePath+"/{id}", h.updateItem)
	router.AddCatchAllHandler(h.routeNotFound)
	router.AddErrorHandler(h.catchError)

	if !router.Valid() {
		return nil, router.BuildErrors()
	}

	h.router = router

	return h, nil
}

// Handle is the lambda entry point. The returned error is non-nil only for
// failures outside the missing key class.
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	log := h.requestLogger(ctx, request)
	log.Debug("handling request")

	response, err := h.router.Route(ctx, request)
	if err != nil {
		log.WithError(err).Error("request failed")
		return response, err
	}

	log.WithField("status", response.StatusCode).Debug("request handled")

	return response, nil
}

// routeNotFound answers route keys no route is registered for.
func (h *Handler) routeNotFound(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	h.requestLogger(ctx, request).Info("route not found")

	return proxy.JSON(http.StatusNotFound, fmt.Sprintf("Route not found: %s", request.RouteKey))
}

// catchError turns missing key failures into a 400 and passes everything
// else through untouched.
func (h *Handler) catchError(ctx context.Context, request events.APIGatewayV2HTTPRequest, err error) (events.APIGatewayProxyResponse, error) {
	if !itemstore.IsMissingKey(err) {
		return events.APIGatewayProxyResponse{}, err
	}

	h.requestLogger(ctx, request).WithError(err).Info("missing key")

	return proxy.JSON(http.StatusBadRequest, fmt.Sprintf("Unsupported route: %s", request.RouteKey))
}

func (h *Handler) requestLogger(ctx context.Context, request events.APIGatewayV2HTTPRequest) *logrus.Entry {
	return lambdautils.Logger(ctx, h.logger).WithField("route_key", request.RouteKey)
}

// Routes returns the registered routes in registration order.
func (h *Handler) Routes() []*proxy.Route {
	return h.router.Routes
}
