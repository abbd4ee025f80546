package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/itemcrud/itemstore"
	"github.com/prognoshealth/itemcrud/proxy"
)

// createRequest is the body of PUT /items. Pointer fields let "required"
// accept empty strings while still rejecting absent keys.
type createRequest struct {
	ID   *string `json:"id" validate:"required"`
	Name *string `json:"name" validate:"required"`
}

func itemID(rctx *proxy.RouteContext) (string, error) {
	id, ok := rctx.Param(itemstore.KeyAttribute)
	if !ok {
		return "", errors.Wrap(itemstore.ErrMissingKey, "path parameter id")
	}
	return id, nil
}

// requestBody returns the decoded body. An absent body is a missing key.
func requestBody(rctx *proxy.RouteContext) (string, error) {
	body, err := rctx.Body()
	if err != nil {
		return "", err
	}

	if body == "" {
		return "", errors.Wrap(itemstore.ErrMissingKey, "request body")
	}

	return body, nil
}

func (h *Handler) listItems(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	items, err := h.store.ScanAll(rctx.Context)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return proxy.JSON(http.StatusOK, items)
}

func (h *Handler) getItem(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	id, err := itemID(rctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	item, err := h.store.Get(rctx.Context, id)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return proxy.JSON(http.StatusOK, item)
}

func (h *Handler) createItem(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	body, err := requestBody(rctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	req := createRequest{}
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed decoding request body")
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, strings.ToLower(fe.Field()))
			}
			return events.APIGatewayProxyResponse{}, errors.Wrapf(itemstore.ErrMissingKey, "body field %s", strings.Join(missing, ", "))
		}
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed validating request body")
	}

	item := itemstore.Item{ID: *req.ID, Name: *req.Name}
	if err := h.store.Put(rctx.Context, item); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return proxy.JSON(http.StatusOK, fmt.Sprintf("Put item %s", item.ID))
}

func (h *Handler) updateItem(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	id, err := itemID(rctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	body, err := requestBody(rctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	fields, err := itemstore.DecodeFields(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	updates, err := fields.Updates()
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	updated, err := h.store.Update(rctx.Context, id, updates)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	h.requestLogger(rctx.Context, rctx.Request).WithFields(logrus.Fields{
		"id":      id,
		"updated": len(updated),
	}).Debug("item updated")

	return proxy.JSON(http.StatusOK, fmt.Sprintf("Updated item %s", id))
}

func (h *Handler) deleteItem(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	id, err := itemID(rctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	if err := h.store.Delete(rctx.Context, id); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return proxy.JSON(http.StatusOK, fmt.Sprintf("Deleted item %s", id))
}
