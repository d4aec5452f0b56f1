package worker

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

type GetWorkerUseCase struct {
	workerRepo repository.WorkerRepository
}

func NewGetWorkerUseCase(workerRepo repository.WorkerRepository) *GetWorkerUseCase {
	return &GetWorkerUseCase{workerRepo: workerRepo}
}

func (uc *GetWorkerUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	return uc.workerRepo.FindByID(ctx, id)
}

type ListWorkersUseCase struct {
	workerRepo repository.WorkerRepository
}

func NewListWorkersUseCase(workerRepo repository.WorkerRepository) *ListWorkersUseCase {
	return &ListWorkersUseCase{workerRepo: workerRepo}
}

// Execute возвращает работников; пустой status означает всех.
func (uc *ListWorkersUseCase) Execute(ctx context.Context, status string) ([]*entity.Worker, error) {
	var filter repository.WorkerFilter
	if status != "" {
		s, err := valueobject.NewWorkerStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &s
	}
	return uc.workerRepo.List(ctx, filter)
}
