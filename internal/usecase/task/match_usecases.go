package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type Recommendation struct {
	Task    *entity.Task
	Score   float64
	Details matching.Details
}

// RecommendTasksUseCase подбирает открытые задачи для работника.
// Результат кэшируется на ttl и сбрасывается при изменении задач или истории смен.
type RecommendTasksUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	engine     *matching.Engine
	cache      repository.MatchCache
	ttl        time.Duration
}

func NewRecommendTasksUseCase(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	engine *matching.Engine,
	cache repository.MatchCache,
	ttl time.Duration,
) *RecommendTasksUseCase {
	return &RecommendTasksUseCase{taskRepo: taskRepo, workerRepo: workerRepo, engine: engine, cache: cache, ttl: ttl}
}

func (uc *RecommendTasksUseCase) Execute(ctx context.Context, workerID uuid.UUID) ([]Recommendation, error) {
	key := repository.RecommendationsCacheKey(workerID)
	if cached, ok := uc.fromCache(ctx, key); ok {
		return cached, nil
	}
	// версия фиксируется до чтения из базы: если задачи изменятся во время подбора,
	// устаревший результат не попадёт в кэш
	version := uc.cacheVersion(ctx)

	worker, err := uc.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	tasks, err := uc.taskRepo.List(ctx, repository.TaskFilter{Statuses: []valueobject.TaskStatus{valueobject.TaskStatusAvailable}})
	if err != nil {
		return nil, err
	}

	results := uc.engine.RecommendTasks(worker, matching.FilterRecommendable(worker, tasks))
	recommendations := make([]Recommendation, 0, len(results))
	for _, r := range results {
		recommendations = append(recommendations, Recommendation{Task: r.Task, Score: r.Score, Details: r.Details})
	}

	uc.toCache(ctx, key, version, recommendations)
	return recommendations, nil
}

func (uc *RecommendTasksUseCase) fromCache(ctx context.Context, key string) ([]Recommendation, bool) {
	if uc.cache == nil || uc.ttl <= 0 {
		return nil, false
	}
	raw, ok := uc.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var recommendations []Recommendation
	if err := json.Unmarshal(raw, &recommendations); err != nil {
		logger.Log.WithField("key", key).WithError(err).Warn("recommendations: битая запись в кэше")
		uc.cache.Delete(ctx, key)
		return nil, false
	}
	return recommendations, true
}

func (uc *RecommendTasksUseCase) cacheVersion(ctx context.Context) int64 {
	if uc.cache == nil || uc.ttl <= 0 {
		return 0
	}
	return uc.cache.Version(ctx)
}

func (uc *RecommendTasksUseCase) toCache(ctx context.Context, key string, version int64, recommendations []Recommendation) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(recommendations)
	if err != nil {
		logger.Log.WithError(err).Warn("recommendations: не удалось сериализовать результат")
		return
	}
	if !uc.cache.SetIfVersion(ctx, key, raw, uc.ttl, version) {
		logger.Log.WithField("key", key).Debug("recommendations: кэш сброшен во время подбора, результат не сохранён")
	}
}

// CandidatesUseCase ранжирует допущенных работников для задачи.
type CandidatesUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	engine     *matching.Engine
}

func NewCandidatesUseCase(taskRepo repository.TaskRepository, workerRepo repository.WorkerRepository, engine *matching.Engine) *CandidatesUseCase {
	return &CandidatesUseCase{taskRepo: taskRepo, workerRepo: workerRepo, engine: engine}
}

// Ranked возвращает не более limit кандидатов по убыванию оценки (limit <= 0 означает всех).
func (uc *CandidatesUseCase) Ranked(ctx context.Context, taskID uuid.UUID, limit int) ([]matching.Result, error) {
	task, err := uc.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	workers, err := eligibleWorkers(ctx, uc.workerRepo)
	if err != nil {
		return nil, err
	}

	ranked := uc.engine.RankWorkers(task, workers)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (uc *CandidatesUseCase) Best(ctx context.Context, taskID uuid.UUID) (matching.Result, error) {
	task, err := uc.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return matching.Result{}, err
	}
	return bestWorker(ctx, uc.workerRepo, uc.engine, task)
}

func bestWorker(ctx context.Context, workerRepo repository.WorkerRepository, engine *matching.Engine, task *entity.Task) (matching.Result, error) {
	workers, err := eligibleWorkers(ctx, workerRepo)
	if err != nil {
		return matching.Result{}, err
	}
	best, ok := engine.BestWorkerForTask(task, workers)
	if !ok {
		return matching.Result{}, apperror.ErrNoCandidates
	}
	return best, nil
}

func eligibleWorkers(ctx context.Context, workerRepo repository.WorkerRepository) ([]*entity.Worker, error) {
	accepted := valueobject.WorkerStatusAccepted
	workers, err := workerRepo.List(ctx, repository.WorkerFilter{Status: &accepted})
	if err != nil {
		return nil, err
	}
	return matching.FilterEligibleWorkers(workers), nil
}
