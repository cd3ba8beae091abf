package handlers

import (
	"net/http"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// TaskHandlers handles HTTP requests for tasks
type TaskHandlers struct {
	taskService services.TaskServiceInterface
}

// NewTaskHandlers creates a new task handlers instance
func NewTaskHandlers(taskService services.TaskServiceInterface) *TaskHandlers {
	return &TaskHandlers{taskService: taskService}
}

// CreateTask handles POST /tasks
func (h *TaskHandlers) CreateTask(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PropertyID  *string `json:"property_id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"due_date"`
		AssigneeID  *string `json:"assignee_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	task := &models.Task{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}

	if req.PropertyID != nil && *req.PropertyID != "" {
		propertyID, err := common.ValidateUUID(*req.PropertyID, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		task.PropertyID = &propertyID
	}
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		assigneeID, err := common.ValidateUUID(*req.AssigneeID, "assignee_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		task.AssigneeID = &assigneeID
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return common.SendClientError(c, "due_date must be in YYYY-MM-DD format")
		}
		task.DueDate = &dueDate
	}

	if err := h.taskService.CreateTask(ctx, task); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, task)
}

// GetTask handles GET /tasks/:id
func (h *TaskHandlers) GetTask(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	taskID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	task, err := h.taskService.GetTaskByID(ctx, tenantID, taskID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve task")
	}
	if task == nil {
		return common.SendNotFoundError(c, "task")
	}
	return c.JSON(http.StatusOK, task)
}

// ListTasks handles GET /tasks with optional status and property filters
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)

	if status := c.QueryParam("status"); status != "" {
		tasks, err := h.taskService.ListTasksByStatus(ctx, tenantID, status, limit, offset)
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		return c.JSON(http.StatusOK, tasks)
	}

	if propertyParam := c.QueryParam("property_id"); propertyParam != "" {
		propertyID, err := common.ValidateUUID(propertyParam, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		tasks, err := h.taskService.ListTasksByProperty(ctx, tenantID, propertyID, limit, offset)
		if err != nil {
			return common.SendServerError(c, "Failed to list tasks")
		}
		return c.JSON(http.StatusOK, tasks)
	}

	tasks, err := h.taskService.ListTasks(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

// ListOverdueTasks handles GET /tasks/overdue
func (h *TaskHandlers) ListOverdueTasks(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tasks, err := h.taskService.ListOverdueTasks(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to list overdue tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

// UpdateTask handles PUT /tasks/:id
func (h *TaskHandlers) UpdateTask(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	taskID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.taskService.GetTaskByID(ctx, tenantID, taskID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve task")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "task")
	}

	var task models.Task
	if err := c.Bind(&task); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	task.ID = taskID
	task.TenantID = tenantID
	task.CreatedAt = existing.CreatedAt
	task.CompletedAt = existing.CompletedAt

	if err := h.taskService.UpdateTask(ctx, &task); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PUT /tasks/:id/status
func (h *TaskHandlers) UpdateTaskStatus(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	taskID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.taskService.UpdateTaskStatus(ctx, tenantID, taskID, req.Status); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// DeleteTask handles DELETE /tasks/:id
func (h *TaskHandlers) DeleteTask(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	taskID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.taskService.DeleteTask(ctx, tenantID, taskID); err != nil {
		return common.SendServerError(c, "Failed to delete task")
	}
	return c.NoContent(http.StatusNoContent)
}
