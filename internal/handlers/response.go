package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"serverless-todo/backend/internal/models"
)

// Request is the transport-neutral shape of an incoming call. Field names
// follow the API Gateway proxy event so schemas apply to either transport.
type Request struct {
	Body                  string                 `json:"body"`
	PathParameters        map[string]string      `json:"pathParameters"`
	QueryStringParameters map[string]string      `json:"queryStringParameters"`
	Claims                map[string]interface{} `json:"-"`
}

type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Methods":     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	"Content-Type":                     "application/json",
}

func respond(statusCode int, body interface{}) *Response {
	headers := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		headers[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to encode response body", "error", err)
		statusCode = http.StatusInternalServerError
		data = []byte(`{"message":"Something went wrong at server"}`)
	}

	return &Response{StatusCode: statusCode, Headers: headers, Body: string(data)}
}

func successTodos(todos []models.Task) *Response {
	return respond(http.StatusOK, map[string]interface{}{
		"message": "Success",
		"todos":   todos,
	})
}

func successTodo(todo *models.Task) *Response {
	return respond(http.StatusOK, map[string]interface{}{
		"message": "Success",
		"data":    todo,
	})
}

func successCleared(cleared int) *Response {
	return respond(http.StatusOK, map[string]interface{}{
		"message": "Success",
		"cleared": cleared,
	})
}

func partiallyCleared(cleared int, failed []string) *Response {
	return respond(http.StatusMultiStatus, map[string]interface{}{
		"message": "Partially cleared",
		"cleared": cleared,
		"failed":  failed,
	})
}

func clientError(schemaID, detail string) *Response {
	return respond(http.StatusBadRequest, map[string]interface{}{
		"message": "Validation error",
		"schema":  schemaID,
		"errors":  detail,
	})
}

func unauthorized() *Response {
	return respond(http.StatusUnauthorized, map[string]interface{}{"message": "Unauthorized"})
}

func notFound(message string) *Response {
	return respond(http.StatusNotFound, map[string]interface{}{"message": message})
}

func serverError() *Response {
	return respond(http.StatusInternalServerError, map[string]interface{}{"message": "Something went wrong at server"})
}

// Preflight answers CORS OPTIONS requests.
func Preflight() *Response {
	return respond(http.StatusOK, map[string]interface{}{"message": "OK"})
}
