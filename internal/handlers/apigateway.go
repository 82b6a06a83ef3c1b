package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

type HandlerFunc func(ctx context.Context, req *Request) *Response

// APIGatewayRouter dispatches API Gateway proxy events by method and resource
// template, e.g. "PUT /todos/{taskId}/{status}".
type APIGatewayRouter struct {
	routes map[string]HandlerFunc
}

func NewAPIGatewayRouter(h *TodoHandler) *APIGatewayRouter {
	return &APIGatewayRouter{
		routes: map[string]HandlerFunc{
			"GET /todos":                   h.List,
			"POST /todos":                  h.Submit,
			"PUT /todos/{taskId}/{status}": h.Update,
			"POST /todos/clear-completed":  h.ClearCompleted,
		},
	}
}

func (r *APIGatewayRouter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var resp *Response
	if event.HTTPMethod == http.MethodOptions {
		resp = Preflight()
	} else if handle, ok := r.routes[event.HTTPMethod+" "+event.Resource]; ok {
		resp = handle(ctx, RequestFromAPIGateway(event))
	} else {
		resp = notFound("Route not found")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

// RequestFromAPIGateway reads the Cognito-style claims the authorizer places
// under requestContext.authorizer.claims.
func RequestFromAPIGateway(event events.APIGatewayProxyRequest) *Request {
	req := &Request{
		Body:                  event.Body,
		PathParameters:        event.PathParameters,
		QueryStringParameters: event.QueryStringParameters,
	}

	if claims, ok := event.RequestContext.Authorizer["claims"].(map[string]interface{}); ok {
		req.Claims = claims
	}

	return req
}
