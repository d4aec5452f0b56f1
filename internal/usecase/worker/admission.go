package worker

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

// ChangeStatusUseCase одобряет или отклоняет анкету работника.
type ChangeStatusUseCase struct {
	workerRepo repository.WorkerRepository
	cache      repository.MatchCache
	events     repository.EventPublisher
}

func NewChangeStatusUseCase(workerRepo repository.WorkerRepository, cache repository.MatchCache, events repository.EventPublisher) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{workerRepo: workerRepo, cache: cache, events: events}
}

func (uc *ChangeStatusUseCase) Approve(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	return uc.apply(ctx, id, (*entity.Worker).Accept)
}

func (uc *ChangeStatusUseCase) Reject(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	return uc.apply(ctx, id, (*entity.Worker).Reject)
}

func (uc *ChangeStatusUseCase) apply(ctx context.Context, id uuid.UUID, change func(*entity.Worker) error) (*entity.Worker, error) {
	worker, err := uc.workerRepo.Modify(ctx, id, change)
	if err != nil {
		return nil, err
	}

	invalidateRecommendations(ctx, uc.cache, worker.ID)
	if uc.events != nil {
		uc.events.Publish(worker.ID, repository.EventWorkerStatusChanged, map[string]interface{}{
			"workerId": worker.ID,
			"status":   worker.Status,
		})
	}
	return worker, nil
}

func invalidateRecommendations(ctx context.Context, cache repository.MatchCache, workerID uuid.UUID) {
	if cache == nil {
		return
	}
	cache.Delete(ctx, repository.RecommendationsCacheKey(workerID))
}

