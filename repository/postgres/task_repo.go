package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/repository"
)

type taskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore returns a Postgres-backed TaskStore. The table mirrors the
// collection; a position column preserves its order.
func NewTaskStore(pool *pgxpool.Pool) repository.TaskStore {
	return &taskStore{pool: pool}
}

func (r *taskStore) Save(ctx context.Context, tasks []domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	const insert = `
	INSERT INTO tasks (id, position, title, description, due_date, importance, subject, completed, created_at, rank)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	batch := &pgx.Batch{}
	for i, task := range tasks {
		batch.Queue(insert,
			task.ID,
			i,
			task.Title,
			nullString(task.Description),
			nullTimePtr(task.DueDate),
			string(task.Importance),
			nullString(task.Subject),
			task.Completed,
			dbTime(task.CreatedAt),
			task.Rank,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *taskStore) Load(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, due_date, importance, subject, completed, created_at, rank
	FROM tasks
	ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task        domain.Task
		description *string
		subject     *string
		due         *time.Time
		importance  string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&due,
		&importance,
		&subject,
		&task.Completed,
		&task.CreatedAt,
		&task.Rank,
	); err != nil {
		return nil, err
	}

	if description != nil {
		task.Description = *description
	}
	if subject != nil {
		task.Subject = *subject
	}
	task.CreatedAt = task.CreatedAt.UTC()
	if due != nil {
		d := due.UTC()
		task.DueDate = &d
	}
	task.Importance = domain.Importance(importance)
	return &task, nil
}
