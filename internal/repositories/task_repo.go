package repositories

import (
	"context"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Task, error)
	ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, tenantID, taskID uuid.UUID, status string, completedAt *time.Time) error
}

type taskRepo struct {
	db Database
}

func NewTaskRepository(db Database) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = `id, tenant_id, property_id, title, description, status, priority, due_date, assignee_id, completed_at, created_at, updated_at`

func (r *taskRepo) scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(&task.ID, &task.TenantID, &task.PropertyID, &task.Title, &task.Description, &task.Status, &task.Priority, &task.DueDate, &task.AssigneeID, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, tenant_id, property_id, title, description, status, priority, due_date, assignee_id, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, task.ID, task.TenantID, task.PropertyID, task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.AssigneeID, task.CompletedAt)
	return err
}

func (r *taskRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanTask(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *taskRepo) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET property_id = $1, title = $2, description = $3, status = $4, priority = $5, due_date = $6, assignee_id = $7, completed_at = $8, updated_at = NOW()
		WHERE tenant_id = $9 AND id = $10
	`
	_, err := r.db.Exec(ctx, query, task.PropertyID, task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.AssigneeID, task.CompletedAt, task.TenantID, task.ID)
	return err
}

func (r *taskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *taskRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryTasks(ctx, query, tenantID, limit, offset)
}

func (r *taskRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1 AND status = $2
		ORDER BY due_date ASC NULLS LAST
		LIMIT $3 OFFSET $4
	`
	return r.queryTasks(ctx, query, tenantID, status, limit, offset)
}

func (r *taskRepo) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1 AND property_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryTasks(ctx, query, tenantID, propertyID, limit, offset)
}

func (r *taskRepo) ListOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1 AND status IN ('open', 'in_progress') AND due_date IS NOT NULL AND due_date < $2
		ORDER BY due_date ASC
	`
	return r.queryTasks(ctx, query, tenantID, asOf)
}

func (r *taskRepo) UpdateStatus(ctx context.Context, tenantID, taskID uuid.UUID, status string, completedAt *time.Time) error {
	query := `
		UPDATE tasks
		SET status = $1, completed_at = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`
	_, err := r.db.Exec(ctx, query, status, completedAt, tenantID, taskID)
	return err
}

func (r *taskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
