package services

import (
	"context"
	"fmt"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// TaskServiceInterface defines the interface for task service
type TaskServiceInterface interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, tenantID, taskID uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListTasksByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Task, error)
	ListTasksByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListOverdueTasks(ctx context.Context, tenantID uuid.UUID) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	UpdateTaskStatus(ctx context.Context, tenantID, taskID uuid.UUID, status string) error
	DeleteTask(ctx context.Context, tenantID, taskID uuid.UUID) error
}

type taskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repositories.TaskRepository) TaskServiceInterface {
	return &taskService{taskRepo: taskRepo}
}

func (s *taskService) validateTask(task *models.Task) error {
	if err := common.ValidateRequiredString(task.Title, "title"); err != nil {
		return err
	}
	if task.Status != "" {
		if err := common.ValidateTaskStatus(task.Status); err != nil {
			return err
		}
	}
	if task.Priority != "" {
		if err := common.ValidateTaskPriority(task.Priority); err != nil {
			return err
		}
	}
	return nil
}

// CreateTask creates a new task
func (s *taskService) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.validateTask(task); err != nil {
		return err
	}

	now := time.Now()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = "open"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return common.SecureErrorMessage("create task", err)
	}
	return nil
}

// GetTaskByID retrieves a task by ID
func (s *taskService) GetTaskByID(ctx context.Context, tenantID, taskID uuid.UUID) (*models.Task, error) {
	return s.taskRepo.GetByID(ctx, tenantID, taskID)
}

// ListTasks retrieves tasks with pagination
func (s *taskService) ListTasks(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	return s.taskRepo.List(ctx, tenantID, limit, offset)
}

// ListTasksByStatus retrieves tasks filtered by status
func (s *taskService) ListTasksByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Task, error) {
	if err := common.ValidateTaskStatus(status); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByStatus(ctx, tenantID, status, limit, offset)
}

// ListTasksByProperty retrieves tasks for a property
func (s *taskService) ListTasksByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	return s.taskRepo.ListByProperty(ctx, tenantID, propertyID, limit, offset)
}

// ListOverdueTasks retrieves open tasks past their due date
func (s *taskService) ListOverdueTasks(ctx context.Context, tenantID uuid.UUID) ([]*models.Task, error) {
	return s.taskRepo.ListOverdue(ctx, tenantID, time.Now())
}

// UpdateTask updates a task
func (s *taskService) UpdateTask(ctx context.Context, task *models.Task) error {
	if err := s.validateTask(task); err != nil {
		return err
	}
	task.UpdatedAt = time.Now()
	return s.taskRepo.Update(ctx, task)
}

// UpdateTaskStatus moves a task through its lifecycle. Completing a
// task stamps completed_at; reopening clears it.
func (s *taskService) UpdateTaskStatus(ctx context.Context, tenantID, taskID uuid.UUID, status string) error {
	if err := common.ValidateTaskStatus(status); err != nil {
		return err
	}

	task, err := s.taskRepo.GetByID(ctx, tenantID, taskID)
	if err != nil {
		return common.SecureErrorMessage("get task for status update", err)
	}
	if task == nil {
		return fmt.Errorf("task not found")
	}

	var completedAt *time.Time
	if status == "done" {
		now := time.Now()
		completedAt = &now
	}
	return s.taskRepo.UpdateStatus(ctx, tenantID, taskID, status, completedAt)
}

// DeleteTask removes a task
func (s *taskService) DeleteTask(ctx context.Context, tenantID, taskID uuid.UUID) error {
	return s.taskRepo.Delete(ctx, tenantID, taskID)
}
