package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"
	"serverless-todo/backend/internal/schema"
)

type TaskRepository interface {
	Store(ctx context.Context, user models.User, taskName string) (*models.Task, error)
	List(ctx context.Context, user models.User, status string) ([]models.Task, error)
	UpdateStatus(ctx context.Context, taskID string, user models.User, status int) (*models.Task, error)
	ClearCompleted(ctx context.Context, user models.User) (*repositories.ClearResult, error)
}

type TodoHandler struct {
	repo      TaskRepository
	validator *schema.Validator
	logger    *slog.Logger
}

func NewTodoHandler(repo TaskRepository, validator *schema.Validator, logger *slog.Logger) *TodoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoHandler{repo: repo, validator: validator, logger: logger}
}

func (h *TodoHandler) List(ctx context.Context, req *Request) *Response {
	const method = "LIST_TODO"

	if err := h.validator.Validate(schema.ListRequest, req); err != nil {
		return h.rejected(method, schema.ListRequest, err)
	}

	user, err := h.resolveUser(method, req)
	if err != nil {
		return unauthorized()
	}

	todos, err := h.repo.List(ctx, user, req.QueryStringParameters["status"])
	if err != nil {
		return h.failure(method, user, err)
	}

	return successTodos(todos)
}

func (h *TodoHandler) Submit(ctx context.Context, req *Request) *Response {
	const method = "SUBMIT_TODO"

	if err := h.validator.Validate(schema.StoreRequest, req); err != nil {
		return h.rejected(method, schema.StoreRequest, err)
	}
	if err := h.validator.ValidateJSON(schema.StoreBody, []byte(req.Body)); err != nil {
		return h.rejected(method, schema.StoreBody, err)
	}

	var body struct {
		TaskName string `json:"taskName"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return h.rejected(method, schema.StoreBody, err)
	}

	user, err := h.resolveUser(method, req)
	if err != nil {
		return unauthorized()
	}

	todo, err := h.repo.Store(ctx, user, body.TaskName)
	if err != nil {
		return h.failure(method, user, err)
	}

	return successTodo(todo)
}

func (h *TodoHandler) Update(ctx context.Context, req *Request) *Response {
	const method = "UPDATE_TODO"

	if err := h.validator.Validate(schema.UpdateRequest, req); err != nil {
		return h.rejected(method, schema.UpdateRequest, err)
	}

	status, err := strconv.Atoi(req.PathParameters["status"])
	if err != nil {
		return h.rejected(method, schema.UpdateRequest, err)
	}

	user, err := h.resolveUser(method, req)
	if err != nil {
		return unauthorized()
	}

	todo, err := h.repo.UpdateStatus(ctx, req.PathParameters["taskId"], user, status)
	if err != nil {
		return h.failure(method, user, err)
	}

	return successTodo(todo)
}

func (h *TodoHandler) ClearCompleted(ctx context.Context, req *Request) *Response {
	const method = "CLEAR_COMPLETED"

	user, err := h.resolveUser(method, req)
	if err != nil {
		return unauthorized()
	}

	result, err := h.repo.ClearCompleted(ctx, user)
	if err != nil {
		var batchErr *repositories.PartialBatchFailure
		if errors.As(err, &batchErr) && result != nil {
			h.logger.Warn("clear completed partially failed",
				"method", method,
				"user_id", user.ID,
				"cleared", len(result.Cleared),
				"failed", batchErr.FailedIDs())
			return partiallyCleared(len(result.Cleared), batchErr.FailedIDs())
		}
		return h.failure(method, user, err)
	}

	return successCleared(len(result.Cleared))
}

func (h *TodoHandler) resolveUser(method string, req *Request) (models.User, error) {
	user, err := models.ResolveUser(models.ClaimFromMap(req.Claims))
	if err != nil {
		h.logger.Warn("rejected request without valid claim", "method", method, "error", err)
	}
	return user, err
}

func (h *TodoHandler) rejected(method, schemaID string, err error) *Response {
	h.logger.Debug("invalid request", "method", method, "schema", schemaID, "error", err)
	return clientError(schemaID, err.Error())
}

func (h *TodoHandler) failure(method string, user models.User, err error) *Response {
	var validationErr *repositories.ValidationError
	switch {
	case errors.Is(err, repositories.ErrOwnershipViolation):
		h.logger.Info("task not owned by caller", "method", method, "user_id", user.ID)
		return notFound("Task not found")
	case errors.As(err, &validationErr):
		return clientError("", validationErr.Error())
	default:
		h.logger.Error("storage error", "method", method, "user_id", user.ID, "error", err)
		return serverError()
	}
}
