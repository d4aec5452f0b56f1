package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

// WorkerRepository хранит работников вместе с навыками и историей смен.
type WorkerRepository interface {
	Create(ctx context.Context, worker *entity.Worker) error
	Update(ctx context.Context, worker *entity.Worker) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error)
	FindByUsername(ctx context.Context, username string) (*entity.Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]*entity.Worker, error)

	// Modify загружает работника под блокировкой, применяет fn и сохраняет результат
	// в одной транзакции. Ошибка fn откатывает изменения и возвращается как есть.
	Modify(ctx context.Context, id uuid.UUID, fn func(worker *entity.Worker) error) (*entity.Worker, error)
}

type WorkerFilter struct {
	Status *valueobject.WorkerStatus
}
