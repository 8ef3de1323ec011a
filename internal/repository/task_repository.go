package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresTaskRepository implements domain.TaskRepository using PostgreSQL
type PostgresTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskRepository creates a new task repository
func NewPostgresTaskRepository(db *sql.DB, logger *slog.Logger) *PostgresTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskRepository{
		db:     db,
		logger: logger,
	}
}

const taskColumns = "id, title, description, due_date, priority, status, assigned_to, created_by, manager_id, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	task := &domain.Task{}
	var assignedTo, managerID sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&assignedTo,
		&task.CreatedBy,
		&managerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = assignedTo.String
	task.ManagerID = managerID.String
	return task, nil
}

// Insert creates a new task
func (r *PostgresTaskRepository) Insert(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, due_date, priority, status, assigned_to, created_by, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Status,
		nullable(task.AssignedTo),
		task.CreatedBy,
		nullable(task.ManagerID),
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to insert task",
			slog.String("title", task.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Save persists the full state of an existing task. Last write wins; there
// is no optimistic-concurrency check on concurrent updates.
func (r *PostgresTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4, status = $5,
		    assigned_to = $6, manager_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Status,
		nullable(task.AssignedTo),
		nullable(task.ManagerID),
		task.ID,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}

// DeleteByID removes a task permanently
func (r *PostgresTaskRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Find lists tasks matching the filter in the given order
func (r *PostgresTaskRepository) Find(ctx context.Context, filter domain.TaskFilter, sort domain.TaskSort) ([]*domain.Task, error) {
	where, args := buildTaskWhere(filter)

	query := fmt.Sprintf("SELECT %s FROM tasks", taskColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if sort.Desc {
		query += " ORDER BY due_date DESC"
	} else {
		query += " ORDER BY due_date ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to find tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Count returns the number of tasks matching the filter
func (r *PostgresTaskRepository) Count(ctx context.Context, filter domain.TaskFilter) (int, error) {
	where, args := buildTaskWhere(filter)

	query := "SELECT COUNT(*) FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func buildTaskWhere(filter domain.TaskFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssignedTo != "" {
		where = append(where, "assigned_to = "+arg(filter.AssignedTo))
	}
	if filter.ManagerScope != "" {
		where = append(where, "(manager_id = "+arg(filter.ManagerScope)+" OR assigned_to IS NULL)")
	}
	if filter.Unassigned {
		where = append(where, "assigned_to IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = arg(string(status))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Priority != "" {
		where = append(where, "priority = "+arg(string(filter.Priority)))
	}
	if filter.DueFrom != nil {
		where = append(where, "due_date >= "+arg(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		where = append(where, "due_date < "+arg(*filter.DueTo))
	}
	if filter.NotStatus != "" {
		where = append(where, "status <> "+arg(string(filter.NotStatus)))
	}
	if filter.DueBefore != nil {
		where = append(where, "due_date < "+arg(*filter.DueBefore))
	}

	return where, args
}
