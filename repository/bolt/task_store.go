package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/internal/infrastructure/boltdb"
	"github.com/fastygo/taskwise/repository"
)

// TasksKey is the key under which the serialized collection is stored.
const TasksKey = "task-wise-ranker-tasks"

type taskStore struct {
	db     *bbolt.DB
	bucket []byte
	key    []byte
}

// NewTaskStore returns a TaskStore that keeps the collection as a single JSON blob.
func NewTaskStore(db *bbolt.DB) repository.TaskStore {
	return &taskStore{
		db:     db,
		bucket: []byte(boltdb.BucketTasks),
		key:    []byte(TasksKey),
	}
}

func (s *taskStore) Save(ctx context.Context, tasks []domain.Task) error {
	if s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put(s.key, payload)
	})
}

func (s *taskStore) Load(ctx context.Context) ([]domain.Task, error) {
	if s.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(s.key); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	tasks := []domain.Task{}
	if len(payload) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}
