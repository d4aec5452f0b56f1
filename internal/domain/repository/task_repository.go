package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entity.Task, error)
	FindByAssignedWorker(ctx context.Context, workerID uuid.UUID, statuses ...valueobject.TaskStatus) ([]*entity.Task, error)

	// Modify работает как WorkerRepository.Modify: строка задачи блокируется до конца транзакции.
	Modify(ctx context.Context, id uuid.UUID, fn func(task *entity.Task) error) (*entity.Task, error)
}

type TaskFilter struct {
	Statuses []valueobject.TaskStatus
	Skill    string
	Limit    int
	Offset   int
}
